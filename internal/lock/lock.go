// Package lock guards the at-most-one-cycle rule. The daemon and a manual
// invocation may race from different processes, so the real implementation is
// an advisory file lock; tests inject the in-memory one.
package lock

import (
	"fmt"
	"sync/atomic"

	"github.com/gofrs/flock"

	"rulesync/internal/model"
)

type Lock interface {
	// Acquire takes the lock without blocking. Contention is reported as
	// model.ErrCycleInProgress; callers may retry later.
	Acquire() error
	Release() error
}

type FileLock struct {
	fl *flock.Flock
}

func NewFileLock(path string) *FileLock {
	return &FileLock{fl: flock.New(path)}
}

func (l *FileLock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.fl.Path(), err)
	}

	if !ok {
		return model.ErrCycleInProgress
	}

	return nil
}

func (l *FileLock) Release() error {
	return l.fl.Unlock()
}

// MemoryLock is a process-local lock for tests and embedded use.
type MemoryLock struct {
	held atomic.Bool
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{}
}

func (l *MemoryLock) Acquire() error {
	if !l.held.CompareAndSwap(false, true) {
		return model.ErrCycleInProgress
	}

	return nil
}

func (l *MemoryLock) Release() error {
	l.held.Store(false)
	return nil
}
