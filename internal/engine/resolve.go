package engine

import (
	"fmt"

	"rulesync/internal/logger"
	"rulesync/internal/model"

	"go.uber.org/zap"
)

// Prompter supplies the operator's answer for one conflicted file under the
// prompt policy. The engine stays deterministic; the CLI adapter owns the
// terminal interaction (including the show-diff loop).
type Prompter interface {
	Decide(c model.Classification, remoteContent []byte) (model.Action, error)
}

// Resolve turns classifications into apply decisions under the configured
// policy. contents holds prefetched remote bytes, keyed by path, for every
// classification whose resolution may write remote content.
//
// LocalOnlyChanged is never acted on: local edits (and untracked local
// files) are first-class and tracking stays remote-driven. Unchanged paths
// produce no decision at all.
func Resolve(classifications []model.Classification, policy model.ConflictPolicy, prompter Prompter, contents map[string][]byte) ([]model.ConflictDecision, error) {
	decisions := make([]model.ConflictDecision, 0, len(classifications))

	for _, c := range classifications {
		switch c.Class {
		case model.ClassUnchanged, model.ClassLocalOnlyChanged:
			continue

		case model.ClassConverged:
			// Both sides already agree; only the record moves. Agreement
			// on absence is the one path that unregisters a file.
			action := model.ActionRecord
			if c.Remote == model.HashAbsent {
				action = model.ActionForget
			}

			decisions = append(decisions, model.ConflictDecision{
				Path:       c.Path,
				Action:     action,
				RemoteHash: c.Remote,
				RemoteSize: c.RemoteSize,
			})

		case model.ClassRemoteOnlyChanged:
			decisions = append(decisions, remoteWinsDecision(c, contents))

		case model.ClassConflicted:
			decision, err := resolveConflict(c, policy, prompter, contents)
			if err != nil {
				return nil, err
			}

			decisions = append(decisions, decision)
		}
	}

	return decisions, nil
}

func resolveConflict(c model.Classification, policy model.ConflictPolicy, prompter Prompter, contents map[string][]byte) (model.ConflictDecision, error) {
	logger.Log.Warn("conflict detected",
		zap.String("path", c.Path),
		zap.String("policy", string(policy)))

	switch policy {
	case model.PolicyRemote:
		return remoteWinsDecision(c, contents), nil

	case model.PolicyLocal:
		// Keep local and leave the record at the base hash, so the path
		// surfaces as Conflicted again next cycle until resolved otherwise.
		return model.ConflictDecision{
			Path:       c.Path,
			Action:     model.ActionKeep,
			RemoteHash: c.Remote,
			RemoteSize: c.RemoteSize,
		}, nil

	case model.PolicyBackup:
		return model.ConflictDecision{
			Path:       c.Path,
			Action:     model.ActionBackupThenOverwrite,
			Content:    contents[c.Path],
			RemoteHash: c.Remote,
			RemoteSize: c.RemoteSize,
		}, nil

	case model.PolicyPrompt:
		if prompter == nil {
			return model.ConflictDecision{}, fmt.Errorf("%w: conflict on %s", model.ErrInteractiveRequired, c.Path)
		}

		action, err := prompter.Decide(c, contents[c.Path])
		if err != nil {
			return model.ConflictDecision{}, fmt.Errorf("prompt failed for %s: %w", c.Path, err)
		}

		decision := model.ConflictDecision{
			Path:       c.Path,
			Action:     action,
			Content:    contents[c.Path],
			RemoteHash: c.Remote,
			RemoteSize: c.RemoteSize,
		}
		if action == model.ActionOverwrite && c.Remote == model.HashAbsent {
			decision.Action = model.ActionDelete
		}

		return decision, nil

	default:
		return model.ConflictDecision{}, fmt.Errorf("unknown conflict policy: %s", policy)
	}
}

// remoteWinsDecision applies the remote side: overwrite with remote content,
// or delete when the remote side is a deletion.
func remoteWinsDecision(c model.Classification, contents map[string][]byte) model.ConflictDecision {
	if c.Remote == model.HashAbsent {
		return model.ConflictDecision{
			Path:   c.Path,
			Action: model.ActionDelete,
		}
	}

	return model.ConflictDecision{
		Path:       c.Path,
		Action:     model.ActionOverwrite,
		Content:    contents[c.Path],
		RemoteHash: c.Remote,
		RemoteSize: c.RemoteSize,
	}
}
