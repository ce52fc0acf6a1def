package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rulesync/internal/model"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "sync-state.json"))

	st, err := store.Load()
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}

	if st.Policy != model.PolicyPrompt {
		t.Errorf("default policy = %s", st.Policy)
	}
	if len(st.TrackedFiles) != 0 {
		t.Errorf("default state must track no files")
	}
	if store.Exists() {
		t.Error("Exists must be false before first save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "sync-state.json"))

	st := model.DefaultState()
	st.RemoteRevision = "abc123"
	st.LastSync = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	st.Policy = model.PolicyBackup
	st.RecordFile("a.mdc", "deadbeef", 42)

	if err := store.Save(st); err != nil {
		t.Fatal(err)
	}
	if !store.Exists() {
		t.Error("Exists must be true after save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}

	if loaded.RemoteRevision != "abc123" {
		t.Errorf("revision = %s", loaded.RemoteRevision)
	}
	if loaded.Policy != model.PolicyBackup {
		t.Errorf("policy = %s", loaded.Policy)
	}

	rec, ok := loaded.TrackedFiles["a.mdc"]
	if !ok {
		t.Fatal("a.mdc not tracked after round trip")
	}
	if rec.Hash != "deadbeef" || rec.Size != 42 {
		t.Errorf("record = %+v", rec)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync-state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := NewStore(path).Load()
	if !errors.Is(err, model.ErrStateCorrupt) {
		t.Fatalf("err = %v, want ErrStateCorrupt", err)
	}

	// Corrupt state degrades to the default so a sync can still run.
	if st == nil || st.Policy != model.PolicyPrompt {
		t.Errorf("corrupt load must yield the default state, got %+v", st)
	}
}

func TestLoadLegacyStateWithoutFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync-state.json")
	if err := os.WriteFile(path, []byte(`{"conflictResolution":"remote"}`), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := NewStore(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	if st.Policy != model.PolicyRemote {
		t.Errorf("policy = %s", st.Policy)
	}
	if st.TrackedFiles == nil {
		t.Error("TrackedFiles must never be nil after load")
	}
}
