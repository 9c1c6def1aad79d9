package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"portfolio-alerter/internal/alerter"
	"portfolio-alerter/internal/config"
	"portfolio-alerter/internal/iress"
	"portfolio-alerter/internal/notify"
	"portfolio-alerter/internal/store"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile price alerts against current portfolio positions",
		Long: `Run one reconciliation: optionally wipe every alert previously created
by this tool, then enumerate all portfolios and their positions and
create a quote alert for each position whose absolute value exceeds the
threshold.

Shorts get a >= alert at averagePriceStartOfDay * (1 + percent/100);
longs get a <= alert at averagePriceStartOfDay * (1 - percent/100).`,
		Example: `  portfolio-alerter run -u jsmith -c BROKERCO -i ios1 -e https://webservices.example.com/v4/wsdl -t 1000 --percent 5 -w
  portfolio-alerter run --threshold 2500 --percent 2.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunFlags(cmd, app.Config)

			if app.Config.Credentials.Password == "" {
				password, err := promptPassword(cmd)
				if err != nil {
					return err
				}
				app.Config.Credentials.Password = password
			}

			// Validation happens before any remote call; an invalid
			// threshold or percent terminates with no side effects.
			thresholds, err := app.Config.Validate()
			if err != nil {
				return err
			}

			ctx := context.Background()

			recorder, history := openHistory(cmd, app)
			if history != nil {
				defer history.Close()
			}

			client := iress.NewClient(iress.ClientConfig{
				WSDLBase:    app.Config.Endpoint.WSDLBase,
				Username:    app.Config.Credentials.Username,
				CompanyName: app.Config.Credentials.CompanyName,
				Password:    app.Config.Credentials.Password,
				ServerName:  app.Config.Endpoint.ServerName,
			}, app.Logger)
			defer client.Close()

			keys, err := client.StartSession(ctx)
			if err != nil {
				return fmt.Errorf("session start failed: %w", err)
			}

			if history != nil {
				if err := history.BeginRun(ctx, time.Now()); err != nil {
					app.Logger.Warn().Err(err).Msg("Run history unavailable")
					history = nil
					recorder = alerter.NopRecorder{}
				}
			}

			reconciler := alerter.NewReconciler(client, keys, alerter.Config{
				ThresholdValue:     thresholds.ThresholdValue,
				PercentChange:      thresholds.PercentChange,
				WipeExistingAlerts: app.Config.Alerter.WipeExistingAlerts,
			}, recorder, app.Logger)

			summary, runErr := reconciler.Run(ctx)

			if history != nil {
				if err := history.FinishRun(ctx, summary); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to persist run summary")
				}
			}

			notifier := notify.NewTerminalNotifier(cmd.OutOrStdout())
			if err := notifier.SendSummary(ctx, summary); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to print run summary")
			}

			return runErr
		},
	}

	cmd.Flags().StringP("username", "u", "", "platform username")
	cmd.Flags().StringP("company", "c", "", "company name")
	cmd.Flags().StringP("password", "p", "", "platform password (prompted when omitted)")
	cmd.Flags().StringP("server", "i", "", "IOS+ server name")
	cmd.Flags().StringP("endpoint", "e", "", "web services WSDL endpoint")
	cmd.Flags().StringP("threshold", "t", "", "absolute position value a position must exceed to get an alert")
	cmd.Flags().String("percent", "", "percentage move from the start-of-day average price to alert on")
	cmd.Flags().BoolP("wipe", "w", false, "wipe alerts previously created by this tool before creating new ones")

	return cmd
}

// applyRunFlags copies any provided run flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("username"); v != "" {
		cfg.Credentials.Username = v
	}
	if v, _ := cmd.Flags().GetString("company"); v != "" {
		cfg.Credentials.CompanyName = v
	}
	if v, _ := cmd.Flags().GetString("password"); v != "" {
		cfg.Credentials.Password = v
	}
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.Endpoint.ServerName = v
	}
	if v, _ := cmd.Flags().GetString("endpoint"); v != "" {
		cfg.Endpoint.WSDLBase = v
	}
	if v, _ := cmd.Flags().GetString("threshold"); v != "" {
		cfg.Alerter.ThresholdValue = v
	}
	if v, _ := cmd.Flags().GetString("percent"); v != "" {
		cfg.Alerter.PercentChange = v
	}
	if cmd.Flags().Changed("wipe") {
		wipe, _ := cmd.Flags().GetBool("wipe")
		cfg.Alerter.WipeExistingAlerts = wipe
	}
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// openHistory opens the sqlite run history. The history is optional: a
// failure degrades to a nop recorder instead of blocking the run.
func openHistory(cmd *cobra.Command, app *App) (alerter.Recorder, store.HistoryStore) {
	configDir, _ := cmd.Flags().GetString("config")
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		app.Logger.Warn().Err(err).Msg("Run history unavailable")
		return alerter.NopRecorder{}, nil
	}

	history, err := store.NewSQLiteStore(filepath.Join(configDir, "alerter.db"), app.Logger)
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Run history unavailable")
		return alerter.NopRecorder{}, nil
	}
	return history, history
}
