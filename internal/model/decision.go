package model

import "time"

type Action string

const (
	ActionOverwrite           Action = "OVERWRITE"
	ActionKeep                Action = "KEEP"
	ActionBackupThenOverwrite Action = "BACKUP_OVERWRITE"
	ActionDelete              Action = "DELETE"
	ActionForget              Action = "FORGET"
	ActionRecord              Action = "RECORD"
	ActionSkip                Action = "SKIP"
)

// ConflictDecision is the resolver's verdict for one path, consumed
// immediately by the applier. Content is filled in by the engine's prefetch
// pass for actions that write remote bytes.
type ConflictDecision struct {
	Path       string
	Action     Action
	Content    []byte
	RemoteHash string
	RemoteSize int64
}

// NeedsContent reports whether applying this decision writes remote bytes to
// disk, which is what bounds the network cost of a cycle.
func (d ConflictDecision) NeedsContent() bool {
	switch d.Action {
	case ActionOverwrite, ActionBackupThenOverwrite:
		return d.RemoteHash != HashAbsent
	default:
		return false
	}
}

type FileError struct {
	Path string
	Err  error
}

// ApplyReport collects per-file outcomes of one apply pass. A failure on one
// file never aborts the others.
type ApplyReport struct {
	Succeeded []string
	Failed    []FileError
	Backups   map[string]string
}

type Outcome string

const (
	OutcomeUpToDate Outcome = "UP_TO_DATE"
	OutcomeSynced   Outcome = "SYNCED"
	OutcomePartial  Outcome = "PARTIAL"
	OutcomeFailed   Outcome = "FAILED"
)

// FileOutcome is one path's result within a cycle.
type FileOutcome struct {
	Path   string
	Action Action
	Err    error
}

// CycleReport summarizes one reconciliation cycle.
type CycleReport struct {
	Outcome    Outcome
	Revision   string
	Conflicted int
	Files      []FileOutcome
	StartedAt  time.Time
	Duration   time.Duration
}

func (r *CycleReport) Applied() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}

	return n
}

func (r *CycleReport) Failed() []FileOutcome {
	var failed []FileOutcome
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}

	return failed
}
