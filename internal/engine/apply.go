package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rulesync/internal/logger"
	"rulesync/internal/model"
	"rulesync/internal/util"

	"go.uber.org/zap"
)

// Apply materializes decisions onto the rules directory and mutates the
// in-memory state records for every path that succeeds. Each file is
// independent and best-effort; failed paths keep their old FileRecord so the
// next cycle re-classifies them instead of considering them synced. The
// caller persists the state afterwards.
func Apply(rulesDir string, decisions []model.ConflictDecision, st *model.SyncState, now time.Time) model.ApplyReport {
	report := model.ApplyReport{
		Backups: make(map[string]string),
	}

	for _, d := range decisions {
		abs := filepath.Join(rulesDir, filepath.FromSlash(d.Path))

		var err error
		switch d.Action {
		case model.ActionSkip, model.ActionKeep:
			// Local content stays; the record stays at the base hash so
			// persistent divergence keeps surfacing.

		case model.ActionRecord:
			st.RecordFile(d.Path, d.RemoteHash, d.RemoteSize)

		case model.ActionForget:
			st.ForgetFile(d.Path)

		case model.ActionOverwrite:
			if err = util.AtomicWrite(abs, d.Content); err == nil {
				st.RecordFile(d.Path, d.RemoteHash, d.RemoteSize)
			}

		case model.ActionDelete:
			if err = util.RemoveIfExists(abs); err == nil {
				st.ForgetFile(d.Path)
			}

		case model.ActionBackupThenOverwrite:
			var backup string
			backup, err = backupFile(abs, now)
			if err != nil {
				break
			}
			if backup != "" {
				report.Backups[d.Path] = backup
			}

			if d.RemoteHash == model.HashAbsent {
				if err = util.RemoveIfExists(abs); err == nil {
					st.ForgetFile(d.Path)
				}
			} else if err = util.AtomicWrite(abs, d.Content); err == nil {
				st.RecordFile(d.Path, d.RemoteHash, d.RemoteSize)
			}

		default:
			err = fmt.Errorf("unknown action: %s", d.Action)
		}

		if err != nil {
			logger.Log.Error("apply failed",
				zap.String("path", d.Path),
				zap.String("action", string(d.Action)),
				zap.Error(err))

			report.Failed = append(report.Failed, model.FileError{Path: d.Path, Err: err})
			continue
		}

		logger.Log.Info("applied",
			zap.String("path", d.Path),
			zap.String("action", string(d.Action)))

		report.Succeeded = append(report.Succeeded, d.Path)
	}

	return report
}

// backupFile copies the current local content to <path>.backup.<unix-millis>
// before it gets overwritten. Backups are never auto-deleted.
func backupFile(abs string, now time.Time) (string, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing local to preserve.
			return "", nil
		}

		return "", fmt.Errorf("failed to read for backup: %w", err)
	}

	backup := util.BackupPath(abs, now)
	if err := util.AtomicWrite(backup, data); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	logger.Log.Info("backup created",
		zap.String("original", abs),
		zap.String("backup", backup))

	return backup, nil
}
