package model

import "errors"

var (
	// ErrRemoteUnavailable aborts the whole cycle; persisted state is left
	// untouched and the cycle is safe to retry.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrCycleInProgress means another invocation holds the sync lock.
	ErrCycleInProgress = errors.New("sync cycle already in progress")

	// ErrInteractiveRequired means the prompt policy needs an operator but
	// none is attached (daemon or piped invocation).
	ErrInteractiveRequired = errors.New("interactive session required for prompt policy")

	// ErrStateCorrupt means the persisted state failed to parse. The engine
	// proceeds from a default state rather than crashing.
	ErrStateCorrupt = errors.New("sync state file corrupt")

	// ErrPartialFailure marks a cycle that completed with per-file errors.
	ErrPartialFailure = errors.New("sync completed with per-file failures")
)
