package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"portfolio-alerter/internal/models"
)

const summaryDurationPrecision = 10 * time.Millisecond

// TerminalNotifier prints the run summary to a writer, usually stdout.
type TerminalNotifier struct {
	writer io.Writer
}

// NewTerminalNotifier creates a terminal notifier writing to w.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{writer: w}
}

// Name implements Notifier.
func (t *TerminalNotifier) Name() string { return "terminal" }

// SendSummary implements Notifier.
func (t *TerminalNotifier) SendSummary(_ context.Context, summary models.RunSummary) error {
	fmt.Fprintln(t.writer)
	fmt.Fprintln(t.writer, "Run summary")
	fmt.Fprintln(t.writer, "-----------")
	if summary.WipePerformed {
		fmt.Fprintf(t.writer, "  Alerts wiped:              %d\n", summary.AlertsWiped)
	}
	fmt.Fprintf(t.writer, "  Portfolios scanned:        %d\n", summary.PortfoliosScanned)
	fmt.Fprintf(t.writer, "  Alerts warranted:          %d\n", summary.AlertsWarranted)
	fmt.Fprintf(t.writer, "  Alerts created:            %d\n", summary.AlertsCreated)
	fmt.Fprintf(t.writer, "  Duration:                  %s\n", summary.Duration().Round(summaryDurationPrecision))
	if summary.FatalError != "" {
		fmt.Fprintf(t.writer, "  Aborted:                   %s\n", summary.FatalError)
	}
	return nil
}
