package lock

import (
	"errors"
	"path/filepath"
	"testing"

	"rulesync/internal/model"
)

func TestMemoryLock(t *testing.T) {
	l := NewMemoryLock()

	if err := l.Acquire(); err != nil {
		t.Fatal(err)
	}

	if err := l.Acquire(); !errors.Is(err, model.ErrCycleInProgress) {
		t.Fatalf("second acquire: err = %v, want ErrCycleInProgress", err)
	}

	if err := l.Release(); err != nil {
		t.Fatal(err)
	}

	if err := l.Acquire(); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json.lock")

	a := NewFileLock(path)
	if err := a.Acquire(); err != nil {
		t.Fatal(err)
	}
	defer func(l *FileLock) {
		_ = l.Release()
	}(a)

	if err := a.Release(); err != nil {
		t.Fatal(err)
	}

	b := NewFileLock(path)
	if err := b.Acquire(); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	_ = b.Release()
}
