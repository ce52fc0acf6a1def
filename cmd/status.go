package cmd

import (
	"fmt"

	"rulesync/internal/repository"
	"rulesync/internal/state"

	"github.com/spf13/cobra"
)

var syncStatusCmd = &cobra.Command{
	Use:   "sync-status",
	Short: "Show the current sync state and history stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := state.NewStore(cfg.StatePath)
		if !store.Exists() {
			fmt.Println("not initialized, run 'rulesync sync-init' first")
			return nil
		}

		st, err := store.Load()
		if err != nil {
			return err
		}

		fmt.Printf("repo:            %s/%s@%s\n", cfg.Remote.Owner, cfg.Remote.Repo, cfg.Remote.Ref)
		fmt.Printf("rules dir:       %s\n", cfg.RulesDir)
		fmt.Printf("policy:          %s\n", st.Policy)
		fmt.Printf("auto-sync:       %v (every %s)\n", st.AutoSync, st.Interval())
		fmt.Printf("tracked files:   %d\n", len(st.TrackedFiles))

		if st.LastSync.IsZero() {
			fmt.Println("last sync:       never")
		} else {
			fmt.Printf("last sync:       %s\n", st.LastSync.Format("2006-01-02 15:04:05"))
			fmt.Printf("remote revision: %.8s\n", st.RemoteRevision)
		}

		repo := repository.NewHistoryRepository()
		stats, err := repo.GetStats()
		if err != nil {
			return err
		}

		fmt.Printf("history:         %d cycles, %d files applied, %d failures\n",
			stats.Cycles, stats.Applied, stats.Failed)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncStatusCmd)
}
