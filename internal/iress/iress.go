// Package iress provides the remote web-services collaborator: the typed
// operation contract the reconciliation engine depends on, and a SOAP-style
// client implementing it against the vendor endpoint.
package iress

import (
	"context"

	"github.com/shopspring/decimal"
)

// SessionKeys are the opaque session handles produced by StartSession.
// The engine never inspects them, it only hands them back on each call.
type SessionKeys struct {
	IRESS   string
	Service string
}

// StatusMoreData is the response status code signalling that more pages
// are available for the same request identifier.
const StatusMoreData = 1

// AlertRow is one alert as returned by the alert listing. The three field
// attributes are the vendor's packed semicolon-delimited parallel arrays.
type AlertRow struct {
	AlertID        string
	Memo           string
	FieldNames     string
	FieldOperators string
	FieldValues    string
}

// ResultRow is the per-alert outcome row of a delete or create call.
// ErrorNumber 0 means the operation succeeded for that alert.
type ResultRow struct {
	AlertID          string
	ErrorNumber      int
	ErrorDescription string
}

// PortfolioRow is one portfolio as returned by the portfolio listing.
type PortfolioRow struct {
	PortfolioCode string
}

// PositionRow is one position as returned by the position-detail listing.
type PositionRow struct {
	PortfolioCode          string
	SecurityCode           string
	Exchange               string
	AveragePriceStartOfDay decimal.Decimal
	VolumeStartOfDay       int64
	ActualValue            decimal.Decimal
}

// AlertPage is one page of the alert listing.
type AlertPage struct {
	StatusCode int
	Rows       []AlertRow
}

// PortfolioPage is one page of the portfolio listing.
type PortfolioPage struct {
	StatusCode int
	Rows       []PortfolioRow
}

// PositionPage is one page of the position-detail listing.
type PositionPage struct {
	StatusCode int
	Rows       []PositionRow
}

// CreateAlertRequest is the wire-level quote-alert creation payload. The
// field attributes are packed semicolon-delimited strings, matching the
// vendor's encoding.
type CreateAlertRequest struct {
	Type           string
	FieldNames     string
	FieldOperators string
	FieldValues    string
	Memo           string
}

// Service is the remote operation contract consumed by the reconciliation
// engine. Listing operations are paged: the same requestID must be reused
// unchanged across all pages of one logical query, and a fresh requestID
// starts a new query.
type Service interface {
	ListAlerts(ctx context.Context, keys SessionKeys, requestID string) (AlertPage, error)
	DeleteAlert(ctx context.Context, keys SessionKeys, alertID string) ([]ResultRow, error)
	CreateAlert(ctx context.Context, keys SessionKeys, req CreateAlertRequest) ([]ResultRow, error)
	ListPortfolios(ctx context.Context, keys SessionKeys, requestID string) (PortfolioPage, error)
	ListPositions(ctx context.Context, keys SessionKeys, requestID, portfolioCode string) (PositionPage, error)
}
