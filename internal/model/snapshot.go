package model

// RemoteFile is one entry of a remote tree listing. Content is not included;
// the fetcher downloads blobs lazily for files that actually differ.
type RemoteFile struct {
	Hash string
	Size int64
}

// RemoteSnapshot is the remote repository's content at one revision. Fetched
// fresh each cycle, discarded after reconciliation.
type RemoteSnapshot struct {
	Revision string
	Files    map[string]RemoteFile
}
