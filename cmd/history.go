package cmd

import (
	"fmt"

	"rulesync/internal/repository"

	"github.com/spf13/cobra"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent sync cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repository.NewHistoryRepository()

		cycles, err := repo.GetRecent(historyN)
		if err != nil {
			return err
		}

		if len(cycles) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, c := range cycles {
			status := "✓"
			if c.Outcome == "PARTIAL" || c.Outcome == "FAILED" {
				status = "✗"
			}

			fmt.Printf("%s [%s] %-10s rev=%.8s applied=%d conflicted=%d failed=%d\n",
				status,
				c.StartedAt.Format("2006-01-02 15:04:05"),
				c.Outcome, c.Revision, c.Applied, c.Conflicted, c.Failed)

			if c.ErrMsg != "" {
				fmt.Printf("    %s\n", c.ErrMsg)
			}
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of cycles to show")
	rootCmd.AddCommand(historyCmd)
}
