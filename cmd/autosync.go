package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rulesync/internal/autostart"
	"rulesync/internal/daemon"
	"rulesync/internal/logger"
	"rulesync/internal/model"
	"rulesync/internal/repository"
	"rulesync/internal/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var autoSyncCmd = &cobra.Command{
	Use:   "auto-sync",
	Short: "Unattended sync: scheduler check, daemon, status, service install",
}

var autoSyncCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a sync now if one is due",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng := newEngine(false)

		due, err := eng.Due(time.Now())
		if err != nil {
			return err
		}

		if !due {
			fmt.Println("no sync due")
			return nil
		}

		report, err := eng.RunOnce(cmd.Context(), false)
		saveHistory(report, err)
		if err != nil {
			return err
		}

		fmt.Printf("sync ran: %s (%d applied, %d failed)\n",
			report.Outcome, report.Applied(), len(report.Failed()))

		if report.Outcome == model.OutcomePartial {
			return model.ErrPartialFailure
		}

		return nil
	},
}

var autoSyncDaemonCmd = &cobra.Command{
	Use:   "daemon [intervalMinutes]",
	Short: "Run the sync daemon",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		interval, err := daemonInterval(args)
		if err != nil {
			return err
		}

		eng := newEngine(false)
		repo := repository.NewHistoryRepository()

		d := daemon.New(eng, repo, interval, cfg.RulesDir)
		srv := daemon.NewServer(d, repo, cfg.DaemonPort)
		srv.Start()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- d.Run(ctx)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Log.Info("shutting down",
				zap.String("signal", sig.String()))
			cancel()
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("daemon stopped", zap.Error(err))
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Stop(shutdownCtx)
	},
}

// daemonInterval takes the interval from the argument if given, otherwise
// from the persisted state.
func daemonInterval(args []string) (time.Duration, error) {
	if len(args) == 1 {
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes <= 0 {
			return 0, fmt.Errorf("invalid interval: %s", args[0])
		}

		return time.Duration(minutes) * time.Minute, nil
	}

	st, err := state.NewStore(cfg.StatePath).Load()
	if err != nil && !errors.Is(err, model.ErrStateCorrupt) {
		return 0, err
	}

	return st.Interval(), nil
}

var autoSyncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			fmt.Println("daemon not running")
			return nil
		}

		defer func(body io.ReadCloser) {
			_ = body.Close()
		}(resp.Body)

		var snap daemon.StatusSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		fmt.Printf("daemon running since %s (%d cycles)\n",
			snap.StartedAt.Format("2006-01-02 15:04:05"), snap.Cycles)

		if snap.LastRun != nil {
			fmt.Printf("last cycle:  %s (%s)\n",
				snap.LastRun.Format("2006-01-02 15:04:05"), snap.LastOutcome)
		}
		if snap.LastError != "" {
			fmt.Printf("last error:  %s\n", snap.LastError)
		}
		if snap.NextDue != nil {
			fmt.Printf("next due:    %s\n", snap.NextDue.Format("2006-01-02 15:04:05"))
		}

		return nil
	},
}

var autoSyncInstallCmd = &cobra.Command{
	Use:   "install-service",
	Short: "Register the sync daemon as a login service",
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		as := autostart.New()
		if err := as.Install(execPath); err != nil {
			return err
		}

		fmt.Println("rulesync daemon registered for autostart")
		return nil
	},
}

func init() {
	autoSyncCmd.AddCommand(autoSyncCheckCmd)
	autoSyncCmd.AddCommand(autoSyncDaemonCmd)
	autoSyncCmd.AddCommand(autoSyncStatusCmd)
	autoSyncCmd.AddCommand(autoSyncInstallCmd)
	rootCmd.AddCommand(autoSyncCmd)
}
