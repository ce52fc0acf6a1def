package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}

	// A burst of writes collapses into one signal.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "a.mdc"), []byte("v"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-w.Dirty():
	case <-time.After(2 * time.Second):
		t.Fatal("no dirty signal after writes")
	}

	select {
	case <-w.Dirty():
		t.Error("burst produced a second dirty signal")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherSeesNewSubdirectory(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(20 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Dirty():
	case <-time.After(2 * time.Second):
		t.Fatal("no dirty signal after mkdir")
	}

	// Give the event loop a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "b.mdc"), []byte("v"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Dirty():
	case <-time.After(2 * time.Second):
		t.Fatal("no dirty signal for write in new subdirectory")
	}
}

// Stopping right after an event must not let the pending debounce callback
// fire into a torn-down watcher.
func TestWatcherStopDuringDebounce(t *testing.T) {
	for i := 0; i < 50; i++ {
		dir := t.TempDir()

		w, err := NewWatcher(time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Watch(dir); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(filepath.Join(dir, "a.mdc"), []byte("v"), 0644); err != nil {
			t.Fatal(err)
		}

		w.Stop()
	}

	// Let any straggling callbacks run; a bad send would panic the binary.
	time.Sleep(50 * time.Millisecond)
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := NewWatcher(20 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("watching a missing directory must fail")
	}
}
