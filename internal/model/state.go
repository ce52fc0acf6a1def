package model

import "time"

type ConflictPolicy string

const (
	PolicyPrompt ConflictPolicy = "prompt"
	PolicyRemote ConflictPolicy = "remote"
	PolicyLocal  ConflictPolicy = "local"
	PolicyBackup ConflictPolicy = "backup"
)

func (p ConflictPolicy) IsValid() bool {
	switch p {
	case PolicyPrompt, PolicyRemote, PolicyLocal, PolicyBackup:
		return true
	default:
		return false
	}
}

// FileRecord is the base version of a tracked file: the fingerprint recorded
// at the last successful sync.
type FileRecord struct {
	Hash     string    `json:"hash"`
	Size     int64     `json:"size"`
	LastSync time.Time `json:"lastSync"`
}

// SyncState is the persisted per-project sync state. It is read once at cycle
// start and written once (atomically) at cycle end.
type SyncState struct {
	LastSync        time.Time             `json:"lastSync"`
	RemoteRevision  string                `json:"remoteCommitSha"`
	TrackedFiles    map[string]FileRecord `json:"syncedFiles"`
	Policy          ConflictPolicy        `json:"conflictResolution"`
	AutoSync        bool                  `json:"autoSync"`
	SyncIntervalMs  int64                 `json:"syncInterval"`
	ExcludePatterns []string              `json:"excludePatterns"`
	IncludePatterns []string              `json:"includePatterns"`
}

func DefaultState() *SyncState {
	return &SyncState{
		TrackedFiles:    make(map[string]FileRecord),
		Policy:          PolicyPrompt,
		AutoSync:        false,
		SyncIntervalMs:  (6 * time.Hour).Milliseconds(),
		IncludePatterns: []string{"*.mdc", "*.md"},
		ExcludePatterns: []string{".git", "*.backup.*"},
	}
}

func (s *SyncState) RecordFile(path, hash string, size int64) {
	if s.TrackedFiles == nil {
		s.TrackedFiles = make(map[string]FileRecord)
	}

	s.TrackedFiles[path] = FileRecord{
		Hash:     hash,
		Size:     size,
		LastSync: time.Now(),
	}
}

func (s *SyncState) ForgetFile(path string) {
	delete(s.TrackedFiles, path)
}

func (s *SyncState) Interval() time.Duration {
	return time.Duration(s.SyncIntervalMs) * time.Millisecond
}

// Due reports whether an unattended sync should run now.
func (s *SyncState) Due(now time.Time) bool {
	if !s.AutoSync {
		return false
	}

	return now.Sub(s.LastSync) >= s.Interval()
}
