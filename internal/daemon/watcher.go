package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rulesync/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher turns filesystem activity under the rules directory into a single
// debounced dirty signal, so the daemon syncs soon after a local edit instead
// of waiting out the full interval. Purely an optimization; interval ticks
// remain the correctness path.
type Watcher struct {
	fw      *fsnotify.Watcher
	dirtyCh chan struct{}
	doneCh  chan struct{}
	delay   time.Duration
}

func NewWatcher(delay time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		fw:      fw,
		dirtyCh: make(chan struct{}, 1),
		doneCh:  make(chan struct{}),
		delay:   delay,
	}, nil
}

func (w *Watcher) Watch(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(absDir); err != nil {
		return fmt.Errorf("rules directory not found: %w", err)
	}

	if err := w.addRecursive(absDir); err != nil {
		return err
	}

	go w.run()

	logger.Log.Info("watcher started",
		zap.String("dir", absDir))
	return nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if err := w.fw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}

		return nil
	})
}

// run never closes dirtyCh: a debounce callback may still be in flight when
// the loop exits, and a send on a closed channel would panic. The channel is
// simply abandoned on stop.
func (w *Watcher) run() {
	var timer *time.Timer

	for {
		select {
		case <-w.doneCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case fsEvent, ok := <-w.fw.Events:
			if !ok {
				return
			}

			if fsEvent.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if err := w.fw.Add(fsEvent.Name); err != nil {
						logger.Log.Warn("failed to watch new directory",
							zap.String("path", fsEvent.Name),
							zap.Error(err))
					}
				}
			}

			// Debounce: a burst of writes collapses into one signal.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.delay, func() {
				select {
				case <-w.doneCh:
				case w.dirtyCh <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			logger.Log.Error("watcher error",
				zap.Error(err))
		}
	}
}

// Dirty signals at most once per debounce window that something under the
// rules directory changed.
func (w *Watcher) Dirty() <-chan struct{} {
	return w.dirtyCh
}

func (w *Watcher) Stop() {
	close(w.doneCh)
	_ = w.fw.Close()
}
