package engine

import (
	"sort"

	"rulesync/internal/model"
)

// Classify runs the three-way comparison for every path known to the base
// state, the remote snapshot, or the local disk. Pure and deterministic;
// results are ordered by path.
func Classify(st *model.SyncState, snapshot *model.RemoteSnapshot, local map[string]LocalFile) []model.Classification {
	paths := make(map[string]struct{})
	for path := range st.TrackedFiles {
		paths[path] = struct{}{}
	}
	for path := range snapshot.Files {
		paths[path] = struct{}{}
	}
	for path := range local {
		paths[path] = struct{}{}
	}

	ordered := make([]string, 0, len(paths))
	for path := range paths {
		ordered = append(ordered, path)
	}
	sort.Strings(ordered)

	classifications := make([]model.Classification, 0, len(ordered))
	for _, path := range ordered {
		base := model.HashAbsent
		if record, ok := st.TrackedFiles[path]; ok {
			base = record.Hash
		}

		localHash := model.HashAbsent
		var localSize int64
		if lf, ok := local[path]; ok {
			localHash = lf.Hash
			localSize = lf.Size
		}

		remoteHash := model.HashAbsent
		var remoteSize int64
		if rf, ok := snapshot.Files[path]; ok {
			remoteHash = rf.Hash
			remoteSize = rf.Size
		}

		classifications = append(classifications, model.Classification{
			Path:       path,
			Class:      model.Classify(base, localHash, remoteHash),
			Base:       base,
			Local:      localHash,
			Remote:     remoteHash,
			LocalSize:  localSize,
			RemoteSize: remoteSize,
		})
	}

	return classifications
}
