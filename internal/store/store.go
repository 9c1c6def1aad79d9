// Package store provides run-history persistence.
package store

import (
	"context"
	"time"

	"portfolio-alerter/internal/alerter"
	"portfolio-alerter/internal/models"
)

// RunRecord is one persisted reconciliation run.
type RunRecord struct {
	ID                int64
	StartedAt         time.Time
	FinishedAt        time.Time
	PortfoliosScanned int
	AlertsWarranted   int
	AlertsCreated     int
	AlertsWiped       int
	WipePerformed     bool
	FatalError        string
}

// HistoryStore persists run summaries and per-alert audit rows. It records
// outcomes for inspection only; no reconciliation decision ever reads it.
type HistoryStore interface {
	alerter.Recorder

	// BeginRun opens a run record and scopes subsequent audit events to it.
	BeginRun(ctx context.Context, startedAt time.Time) error
	// FinishRun completes the open run record with the final counters.
	FinishRun(ctx context.Context, summary models.RunSummary) error
	// RecentRuns returns the most recent runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)

	Close() error
}
