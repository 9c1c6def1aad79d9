// Package models provides domain models for the portfolio alerter.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertOperator is a comparison operator on an alert condition.
type AlertOperator string

const (
	OperatorEquals         AlertOperator = "=="
	OperatorGreaterOrEqual AlertOperator = ">="
	OperatorLessOrEqual    AlertOperator = "<="
)

// Portfolio identifies a single portfolio on the remote account.
// Portfolios are enumerated once per run and not retained afterwards.
type Portfolio struct {
	Code string
}

// Position is a single portfolio position as reported by the remote
// position-detail listing. VolumeStartOfDay is negative for shorts.
type Position struct {
	PortfolioCode          string
	SecurityCode           string
	Exchange               string
	AveragePriceStartOfDay decimal.Decimal
	VolumeStartOfDay       int64
	ActualValue            decimal.Decimal
}

// Short reports whether the position was short at the start of the day.
func (p Position) Short() bool {
	return p.VolumeStartOfDay < 0
}

// OwnedAlert is a remote alert that was created by this tool, identified
// by its memo marker and carrying the extracted Security/Last condition.
type OwnedAlert struct {
	AlertID           string
	SecurityCode      string
	SecurityOperator  AlertOperator
	LastPrice         decimal.Decimal
	LastPriceOperator AlertOperator
	Memo              string
}

// AlertRequest is a quote-alert creation request. Price carries exactly
// three fractional digits by the time the request is built.
type AlertRequest struct {
	SecurityCode  string
	Exchange      string
	Operator      AlertOperator
	Price         decimal.Decimal
	PortfolioCode string
	Memo          string
}

// Security returns the exchange-qualified security code, e.g. "BHP.ASX".
func (r AlertRequest) Security() string {
	return r.SecurityCode + "." + r.Exchange
}

// RunSummary aggregates the counters of one reconciliation run.
type RunSummary struct {
	StartedAt         time.Time
	FinishedAt        time.Time
	PortfoliosScanned int
	AlertsWarranted   int
	AlertsCreated     int
	AlertsWiped       int
	WipePerformed     bool
	FatalError        string
}

// Duration returns the elapsed wall time of the run.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
