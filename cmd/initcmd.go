package cmd

import (
	"fmt"
	"time"

	"rulesync/internal/model"
	"rulesync/internal/state"

	"github.com/spf13/cobra"
)

var (
	initPolicy   string
	initInterval int
	initAuto     bool
	initForce    bool
)

var syncInitCmd = &cobra.Command{
	Use:   "sync-init",
	Short: "Initialize sync state for this project",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := state.NewStore(cfg.StatePath)
		if store.Exists() && !initForce {
			return fmt.Errorf("state file %s already exists, use --force to reset", cfg.StatePath)
		}

		st := model.DefaultState()

		policy := model.ConflictPolicy(initPolicy)
		if !policy.IsValid() {
			return fmt.Errorf("invalid policy %q (prompt, remote, local, backup)", initPolicy)
		}
		st.Policy = policy
		st.AutoSync = initAuto
		st.SyncIntervalMs = (time.Duration(initInterval) * time.Minute).Milliseconds()

		if err := store.Save(st); err != nil {
			return err
		}

		fmt.Printf("initialized %s (policy=%s, auto-sync=%v, interval=%dm)\n",
			cfg.StatePath, st.Policy, st.AutoSync, initInterval)
		fmt.Println("run 'rulesync sync' to fetch rules")

		return nil
	},
}

func init() {
	syncInitCmd.Flags().StringVar(&initPolicy, "policy", string(model.PolicyPrompt), "Conflict policy: prompt, remote, local, backup")
	syncInitCmd.Flags().IntVar(&initInterval, "interval", 360, "Auto-sync interval in minutes")
	syncInitCmd.Flags().BoolVar(&initAuto, "auto-sync", false, "Enable unattended syncs")
	syncInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing state file")
	rootCmd.AddCommand(syncInitCmd)
}
