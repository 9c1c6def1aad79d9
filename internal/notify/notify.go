// Package notify delivers run-summary notifications.
package notify

import (
	"context"

	"portfolio-alerter/internal/models"
)

// Notifier delivers the outcome of a reconciliation run.
type Notifier interface {
	Name() string
	SendSummary(ctx context.Context, summary models.RunSummary) error
}
