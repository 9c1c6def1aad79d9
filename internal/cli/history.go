package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"portfolio-alerter/internal/config"
	"portfolio-alerter/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reconciliation runs",
		Example: `  portfolio-alerter history
  portfolio-alerter history --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			configDir, _ := cmd.Flags().GetString("config")
			if configDir == "" {
				configDir = config.DefaultConfigDir()
			}

			history, err := store.NewSQLiteStore(filepath.Join(configDir, "alerter.db"), app.Logger)
			if err != nil {
				return fmt.Errorf("opening run history: %w", err)
			}
			defer history.Close()

			records, err := history.RecentRuns(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No runs recorded yet.")
				return nil
			}

			cmd.Printf("%-5s %-20s %-6s %-11s %-10s %-8s %-7s %s\n",
				"ID", "STARTED", "WIPED", "PORTFOLIOS", "WARRANTED", "CREATED", "WIPE", "OUTCOME")
			for _, r := range records {
				outcome := "ok"
				if r.FatalError != "" {
					outcome = r.FatalError
				}
				wipe := "-"
				if r.WipePerformed {
					wipe = "yes"
				}
				cmd.Printf("%-5d %-20s %-6d %-11d %-10d %-8d %-7s %s\n",
					r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.AlertsWiped,
					r.PortfoliosScanned, r.AlertsWarranted, r.AlertsCreated, wipe, outcome)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of runs to show")
	return cmd
}
