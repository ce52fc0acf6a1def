// Package state persists the per-project sync fingerprints: the base version
// of every tracked file plus the remote revision observed at the last
// successful cycle.
package state

import (
	"encoding/json"
	"fmt"
	"os"

	"rulesync/internal/model"
	"rulesync/internal/util"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file is not an error and yields the
// default state. A file that fails to parse also yields the default state,
// with model.ErrStateCorrupt returned alongside so the caller can log it;
// availability wins over strict history.
func (s *Store) Load() (*model.SyncState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultState(), nil
		}

		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st model.SyncState
	if err := json.Unmarshal(data, &st); err != nil {
		return model.DefaultState(), fmt.Errorf("%w: %v", model.ErrStateCorrupt, err)
	}

	if st.TrackedFiles == nil {
		st.TrackedFiles = make(map[string]model.FileRecord)
	}

	return &st, nil
}

// Save writes the state atomically: temp file then rename, so a crash
// mid-write never leaves a corrupt or partially updated state file.
func (s *Store) Save(st *model.SyncState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return util.AtomicWrite(s.path, data)
}

// Exists reports whether a state file has been initialized.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
