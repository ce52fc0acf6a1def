// Package daemon drives unattended syncs: a periodic loop around the engine,
// a filesystem watcher that pulls the next cycle forward after local edits,
// and a small HTTP API for the client subcommands.
package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"rulesync/internal/engine"
	"rulesync/internal/logger"
	"rulesync/internal/model"
	"rulesync/internal/repository"

	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

type Daemon struct {
	mu       sync.RWMutex
	engine   *engine.Engine
	repo     *repository.HistoryRepository
	interval time.Duration
	rulesDir string
	started  time.Time
	lastRun  time.Time
	last     *model.CycleReport
	lastErr  error
	cycles   int
	stopCh   chan struct{}
}

func New(eng *engine.Engine, repo *repository.HistoryRepository, interval time.Duration, rulesDir string) *Daemon {
	return &Daemon{
		engine:   eng,
		repo:     repo,
		interval: interval,
		rulesDir: rulesDir,
		stopCh:   make(chan struct{}, 1),
	}
}

// StopCh is signalled when a stop was requested via the API.
func (d *Daemon) StopCh() <-chan struct{} {
	return d.stopCh
}

func (d *Daemon) RequestStop() {
	select {
	case d.stopCh <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled or a stop is requested: sleep until the
// earlier of the interval tick or a dirty signal from the watcher, run one
// cycle, log the outcome, repeat.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	d.started = time.Now()
	d.mu.Unlock()

	var dirtyCh <-chan struct{}
	w, err := NewWatcher(debounceDelay)
	if err == nil {
		if err := w.Watch(d.rulesDir); err != nil {
			w.Stop()
			logger.Log.Warn("local watcher unavailable, relying on interval only",
				zap.Error(err))
		} else {
			dirtyCh = w.Dirty()
			defer w.Stop()
		}
	} else {
		logger.Log.Warn("failed to create watcher",
			zap.Error(err))
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	logger.Log.Info("sync daemon started",
		zap.Duration("interval", d.interval),
		zap.String("rules_dir", d.rulesDir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-d.stopCh:
			logger.Log.Info("stop requested")
			return nil

		case <-ticker.C:
			d.cycle(ctx, false)

		case <-dirtyCh:
			logger.Log.Info("local change detected, syncing early")
			d.cycle(ctx, false)
		}
	}
}

// RunCycle runs one cycle on behalf of the HTTP API. The engine's lock keeps
// it mutually exclusive with the loop's own cycles.
func (d *Daemon) RunCycle(ctx context.Context, force bool) (*model.CycleReport, error) {
	return d.runOnce(ctx, force)
}

func (d *Daemon) cycle(ctx context.Context, force bool) {
	report, err := d.runOnce(ctx, force)

	switch {
	case err == nil:
		logger.Log.Info("cycle complete",
			zap.String("outcome", string(report.Outcome)),
			zap.Int("applied", report.Applied()),
			zap.Int("failed", len(report.Failed())))

	case errors.Is(err, model.ErrCycleInProgress):
		logger.Log.Warn("cycle skipped, another is in flight")

	default:
		logger.Log.Error("cycle failed",
			zap.Error(err))
	}
}

func (d *Daemon) runOnce(ctx context.Context, force bool) (*model.CycleReport, error) {
	report, err := d.engine.RunOnce(ctx, force)

	d.mu.Lock()
	if !errors.Is(err, model.ErrCycleInProgress) {
		d.lastRun = time.Now()
		d.last = report
		d.lastErr = err
		d.cycles++
	}
	d.mu.Unlock()

	if errors.Is(err, model.ErrCycleInProgress) {
		return nil, err
	}

	if report != nil && report.Outcome != model.OutcomeUpToDate || err != nil {
		if d.repo != nil {
			saved := report
			if saved == nil {
				saved = &model.CycleReport{StartedAt: time.Now()}
			}
			if dbErr := d.repo.SaveCycle(saved, err); dbErr != nil {
				logger.Log.Warn("failed to save history",
					zap.Error(dbErr))
			}
		}
	}

	return report, err
}

// StatusSnapshot is the daemon's state as exposed on GET /status.
type StatusSnapshot struct {
	StartedAt   time.Time     `json:"started_at"`
	Interval    time.Duration `json:"interval_ms"`
	Cycles      int           `json:"cycles"`
	LastRun     *time.Time    `json:"last_run,omitempty"`
	LastOutcome model.Outcome `json:"last_outcome,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	NextDue     *time.Time    `json:"next_due,omitempty"`
}

func (d *Daemon) Snapshot() StatusSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := StatusSnapshot{
		StartedAt: d.started,
		Interval:  d.interval / time.Millisecond,
		Cycles:    d.cycles,
	}

	if !d.lastRun.IsZero() {
		snap.LastRun = new(d.lastRun)
		snap.NextDue = new(d.lastRun.Add(d.interval))
	}
	if d.last != nil {
		snap.LastOutcome = d.last.Outcome
	}
	if d.lastErr != nil {
		snap.LastError = d.lastErr.Error()
	}

	return snap
}
