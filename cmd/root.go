package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"rulesync/internal/config"
	"rulesync/internal/db"
	"rulesync/internal/engine"
	"rulesync/internal/lock"
	"rulesync/internal/logger"
	"rulesync/internal/model"
	"rulesync/internal/prompt"
	"rulesync/internal/remote"
	"rulesync/internal/repository"
	"rulesync/internal/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg   *config.Config
	debug bool
)

// Exit codes: 0 success or up-to-date, 1 unrecoverable, 3 completed with
// per-file failures so calling scripts can tell partial from total success.
const exitPartial = 3

var rootCmd = &cobra.Command{
	Use:   "rulesync",
	Short: "Keep local rule files in sync with a remote rule repository",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		clientCmds := map[string]bool{
			"sync-init": true, "status": true,
			"install-service": true, "stop": true,
		}
		if !clientCmds[cmd.Name()] {
			if err := db.Init(cfg.DBPath); err != nil {
				return err
			}
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, model.ErrPartialFailure) {
			os.Exit(exitPartial)
		}

		os.Exit(1)
	}
}

// newEngine assembles the sync engine from config. interactive attaches the
// terminal prompter; the daemon always runs headless.
func newEngine(interactive bool) *engine.Engine {
	store := state.NewStore(cfg.StatePath)
	fetcher := remote.NewClient(
		cfg.Remote.APIBase,
		cfg.Remote.Owner,
		cfg.Remote.Repo,
		cfg.Remote.Ref,
		cfg.Token(),
		cfg.Timeout(),
	)

	var prompter engine.Prompter
	if interactive && prompt.Interactive() {
		prompter = prompt.NewCLIPrompter(cfg.RulesDir)
	}

	return engine.New(store, fetcher, lock.NewFileLock(cfg.LockPath()), cfg.RulesDir, prompter)
}

// saveHistory records a cycle outcome, including cycle-level failures, so
// `rulesync history` tells the same story as the daemon's own runs. Lock
// contention is not a cycle and up-to-date runs are not worth a row.
func saveHistory(report *model.CycleReport, runErr error) {
	if errors.Is(runErr, model.ErrCycleInProgress) {
		return
	}
	if runErr == nil && (report == nil || report.Outcome == model.OutcomeUpToDate) {
		return
	}

	saved := report
	if saved == nil {
		saved = &model.CycleReport{StartedAt: time.Now()}
	}

	if err := repository.NewHistoryRepository().SaveCycle(saved, runErr); err != nil {
		logger.Log.Warn("failed to save history",
			zap.Error(err))
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.DaemonPort, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
}
