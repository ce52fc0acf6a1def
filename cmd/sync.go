package cmd

import (
	"fmt"

	"rulesync/internal/logger"
	"rulesync/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation cycle against the remote rule repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng := newEngine(true)

		logger.Log.Info("starting sync",
			zap.String("repo", cfg.Remote.Owner+"/"+cfg.Remote.Repo),
			zap.String("ref", cfg.Remote.Ref),
			zap.Bool("force", syncForce))

		report, err := eng.RunOnce(cmd.Context(), syncForce)
		saveHistory(report, err)
		if err != nil {
			return err
		}

		switch report.Outcome {
		case model.OutcomeUpToDate:
			fmt.Println("already up to date")

		case model.OutcomePartial:
			fmt.Printf("done: %d applied, %d failed, %d conflicted\n",
				report.Applied(), len(report.Failed()), report.Conflicted)
			for _, f := range report.Failed() {
				fmt.Printf("  failed: %s: %v\n", f.Path, f.Err)
			}
			return model.ErrPartialFailure

		default:
			fmt.Printf("done: %d applied, %d conflicted (revision %.8s)\n",
				report.Applied(), report.Conflicted, report.Revision)
		}

		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Run a full cycle even if the remote revision is unchanged")
	rootCmd.AddCommand(syncCmd)
}
