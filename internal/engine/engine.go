// Package engine runs reconciliation cycles: fetch the remote snapshot,
// classify every path three ways against the last synced fingerprints,
// resolve conflicts under the configured policy, apply the decisions, and
// commit the new base state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rulesync/internal/lock"
	"rulesync/internal/logger"
	"rulesync/internal/model"
	"rulesync/internal/remote"
	"rulesync/internal/state"

	"go.uber.org/zap"
)

type Engine struct {
	store    *state.Store
	fetcher  remote.Fetcher
	lock     lock.Lock
	rulesDir string
	prompter Prompter
}

// New wires an engine. prompter may be nil; the prompt policy then aborts
// with ErrInteractiveRequired as soon as a conflict needs an answer.
func New(store *state.Store, fetcher remote.Fetcher, lk lock.Lock, rulesDir string, prompter Prompter) *Engine {
	return &Engine{
		store:    store,
		fetcher:  fetcher,
		lock:     lk,
		rulesDir: rulesDir,
		prompter: prompter,
	}
}

// Due reports whether an unattended sync should run now, from the persisted
// interval and last sync time.
func (e *Engine) Due(now time.Time) (bool, error) {
	st, err := e.store.Load()
	if err != nil && !errors.Is(err, model.ErrStateCorrupt) {
		return false, err
	}

	return st.Due(now), nil
}

// RunOnce executes one reconciliation cycle. With force=false an unchanged
// remote revision plus a clean local tree short-circuits to UpToDate without
// fetching any content. At most one cycle runs at a time; contention
// surfaces as model.ErrCycleInProgress immediately.
//
// Cycle-level failures (remote unreachable, interactive required) leave the
// persisted state untouched. Per-file failures never abort the cycle; they
// are collected in the report and the affected records stay at their old
// base, so the next run re-classifies them.
func (e *Engine) RunOnce(ctx context.Context, force bool) (*model.CycleReport, error) {
	if err := e.lock.Acquire(); err != nil {
		return nil, err
	}
	defer func() {
		_ = e.lock.Release()
	}()

	started := time.Now()

	st, err := e.store.Load()
	if err != nil {
		if !errors.Is(err, model.ErrStateCorrupt) {
			return nil, err
		}

		logger.Log.Warn("state file corrupt, re-tracking from scratch",
			zap.String("path", e.store.Path()),
			zap.Error(err))
	}

	local, err := ScanLocal(e.rulesDir, st.IncludePatterns, st.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules dir: %w", err)
	}

	revision, err := e.fetcher.CurrentRevision(ctx)
	if err != nil {
		return nil, err
	}

	if !force && revision == st.RemoteRevision && localClean(st, local) {
		logger.Log.Info("up to date",
			zap.String("revision", revision))

		return &model.CycleReport{
			Outcome:   model.OutcomeUpToDate,
			Revision:  revision,
			StartedAt: started,
			Duration:  time.Since(started),
		}, nil
	}

	snapshot, err := e.fetcher.FetchTree(ctx, revision, st.IncludePatterns, st.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	classifications := Classify(st, snapshot, local)

	conflicted := 0
	for _, c := range classifications {
		if c.Class == model.ClassConflicted {
			conflicted++
		}
	}

	contents, err := e.prefetch(ctx, revision, classifications)
	if err != nil {
		return nil, err
	}

	decisions, err := Resolve(classifications, st.Policy, e.prompter, contents)
	if err != nil {
		return nil, err
	}

	applyReport := Apply(e.rulesDir, decisions, st, started)

	st.LastSync = started
	// The revision advances only on a fully clean apply. A partial failure
	// keeps the old revision so the short-circuit cannot hide the failed
	// paths; the next run re-classifies and retries them.
	if len(applyReport.Failed) == 0 {
		st.RemoteRevision = revision
	}
	if err := e.store.Save(st); err != nil {
		return nil, fmt.Errorf("failed to persist sync state: %w", err)
	}

	report := buildReport(revision, conflicted, decisions, applyReport, started)

	logger.Log.Info("cycle finished",
		zap.String("revision", revision),
		zap.String("outcome", string(report.Outcome)),
		zap.Int("applied", report.Applied()),
		zap.Int("conflicted", report.Conflicted),
		zap.Int("failed", len(report.Failed())))

	return report, nil
}

// prefetch downloads remote content for exactly the paths whose resolution
// may write remote bytes, before any file is touched. Network cost stays
// bounded to files that differ, and a mid-apply network failure is
// impossible: fetch errors abort here, with the filesystem untouched.
func (e *Engine) prefetch(ctx context.Context, revision string, classifications []model.Classification) (map[string][]byte, error) {
	contents := make(map[string][]byte)

	for _, c := range classifications {
		if c.Remote == model.HashAbsent {
			continue
		}

		if c.Class != model.ClassRemoteOnlyChanged && c.Class != model.ClassConflicted {
			continue
		}

		data, err := e.fetcher.FetchContent(ctx, revision, c.Path)
		if err != nil {
			return nil, err
		}

		contents[c.Path] = data
	}

	return contents, nil
}

// localClean reports whether every tracked file still matches its recorded
// fingerprint on disk. Part of the UpToDate short-circuit; an optimization,
// not a correctness requirement.
func localClean(st *model.SyncState, local map[string]LocalFile) bool {
	for path, record := range st.TrackedFiles {
		lf, ok := local[path]
		if !ok || lf.Hash != record.Hash {
			return false
		}
	}

	return true
}

func buildReport(revision string, conflicted int, decisions []model.ConflictDecision, applyReport model.ApplyReport, started time.Time) *model.CycleReport {
	actions := make(map[string]model.Action, len(decisions))
	for _, d := range decisions {
		actions[d.Path] = d.Action
	}

	report := &model.CycleReport{
		Outcome:    model.OutcomeSynced,
		Revision:   revision,
		Conflicted: conflicted,
		StartedAt:  started,
		Duration:   time.Since(started),
	}

	for _, path := range applyReport.Succeeded {
		report.Files = append(report.Files, model.FileOutcome{
			Path:   path,
			Action: actions[path],
		})
	}
	for _, fe := range applyReport.Failed {
		report.Files = append(report.Files, model.FileOutcome{
			Path:   fe.Path,
			Action: actions[fe.Path],
			Err:    fe.Err,
		})
	}

	if len(applyReport.Failed) > 0 {
		report.Outcome = model.OutcomePartial
	} else if len(report.Files) == 0 && conflicted == 0 {
		report.Outcome = model.OutcomeUpToDate
	}

	return report
}
