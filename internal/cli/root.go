// Package cli provides the command-line interface for the portfolio alerter.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"portfolio-alerter/internal/config"
	"portfolio-alerter/internal/logging"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "portfolio-alerter",
		Short: "Portfolio Alerter - position-threshold price alert reconciliation",
		Long: `Portfolio Alerter rebuilds price alerts on a brokerage account from the
current state of its portfolios.

Every position whose absolute value exceeds a configured threshold gets
exactly one quote alert that fires if the price moves against the
position's start-of-day average price by a configured percentage.
Alerts created by this tool are tagged through their memo and can be
wiped and recreated on each run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/portfolio-alerter)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("portfolio-alerter %s\n", Version)
		},
	}
}
