package alerter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"portfolio-alerter/internal/iress"
	"portfolio-alerter/internal/models"
)

// Fatal run outcomes. Per-alert delete/create failures and per-portfolio
// position-listing failures are logged and isolated; only these two end
// the run.
var (
	// ErrWipeFailed: the alert listing faulted during the wipe phase.
	ErrWipeFailed = errors.New("alert wipe failed")
	// ErrPortfolioListFailed: the portfolio listing itself faulted.
	ErrPortfolioListFailed = errors.New("portfolio listing failed")
)

// AuditEvent is one recorded alert action for the run history.
type AuditEvent struct {
	Action           string // "create" or "delete"
	AlertID          string
	PortfolioCode    string
	Security         string
	Operator         models.AlertOperator
	Price            decimal.Decimal
	ErrorNumber      int
	ErrorDescription string
}

const (
	AuditActionCreate = "create"
	AuditActionDelete = "delete"
)

// Recorder receives audit events as the run progresses. Recording is
// best-effort: a recorder failure must not disturb the run, so the
// interface reports nothing back.
type Recorder interface {
	RecordAudit(ctx context.Context, event AuditEvent)
}

// NopRecorder discards all audit events.
type NopRecorder struct{}

// RecordAudit implements Recorder.
func (NopRecorder) RecordAudit(context.Context, AuditEvent) {}

// Config holds the validated run parameters for a Reconciler.
type Config struct {
	ThresholdValue     decimal.Decimal
	PercentChange      decimal.Decimal
	WipeExistingAlerts bool
}

// Reconciler rebuilds the account's tool-owned price alerts from the
// current portfolio positions: optionally wipe every owned alert, then
// enumerate portfolios and positions and create one alert per position
// whose absolute value exceeds the threshold. Strictly sequential; one
// request in flight at a time.
type Reconciler struct {
	svc      iress.Service
	keys     iress.SessionKeys
	cfg      Config
	recorder Recorder
	logger   zerolog.Logger
}

// NewReconciler creates a reconciler. A nil recorder is replaced with
// NopRecorder.
func NewReconciler(svc iress.Service, keys iress.SessionKeys, cfg Config, recorder Recorder, logger zerolog.Logger) *Reconciler {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Reconciler{
		svc:      svc,
		keys:     keys,
		cfg:      cfg,
		recorder: recorder,
		logger:   logger,
	}
}

// Run executes one reconciliation. The summary is always returned, with
// its counters reflecting whatever completed before a fatal fault; the
// error is non-nil only for the fatal cases.
func (r *Reconciler) Run(ctx context.Context) (models.RunSummary, error) {
	summary := models.RunSummary{
		StartedAt:     time.Now(),
		WipePerformed: r.cfg.WipeExistingAlerts,
	}

	if r.cfg.WipeExistingAlerts {
		if err := r.wipeOwnedAlerts(ctx, &summary); err != nil {
			return r.finish(summary, err)
		}
	}

	if err := r.reconcilePortfolios(ctx, &summary); err != nil {
		return r.finish(summary, err)
	}

	return r.finish(summary, nil)
}

func (r *Reconciler) finish(summary models.RunSummary, err error) (models.RunSummary, error) {
	summary.FinishedAt = time.Now()
	if err != nil {
		summary.FatalError = err.Error()
		r.logger.Error().Err(err).Msg("Run aborted")
		return summary, err
	}
	r.logger.Info().
		Int("portfolios_scanned", summary.PortfoliosScanned).
		Int("alerts_warranted", summary.AlertsWarranted).
		Int("alerts_created", summary.AlertsCreated).
		Int("alerts_wiped", summary.AlertsWiped).
		Msg("Finished creating alerts")
	return summary, nil
}

// wipeOwnedAlerts pages through every alert on the account and deletes
// the ones carrying the ownership marker. Per-alert delete outcomes are
// logged individually and never halt the loop; a listing fault aborts the
// entire run.
func (r *Reconciler) wipeOwnedAlerts(ctx context.Context, summary *models.RunSummary) error {
	r.logger.Info().Msg("Wiping existing alerts")

	err := EachPage(ctx, func(ctx context.Context, requestID string) (Page[iress.AlertRow], error) {
		page, err := r.svc.ListAlerts(ctx, r.keys, requestID)
		if err != nil {
			return Page[iress.AlertRow]{}, err
		}
		return Page[iress.AlertRow]{StatusCode: page.StatusCode, Rows: page.Rows}, nil
	}, func(rows []iress.AlertRow) error {
		for _, row := range rows {
			r.wipeOne(ctx, row, summary)
		}
		return nil
	})
	if err != nil {
		if summary.AlertsWiped > 0 {
			// Some deletes already landed; the remaining owned alerts are
			// now stale until the next successful wipe.
			r.logger.Warn().
				Int("alerts_wiped", summary.AlertsWiped).
				Msg("Alert listing failed mid-wipe; alerts wiped so far will not be recreated consistently")
		}
		return fmt.Errorf("%w: %v", ErrWipeFailed, err)
	}
	return nil
}

func (r *Reconciler) wipeOne(ctx context.Context, row iress.AlertRow, summary *models.RunSummary) {
	match := MatchOwnedAlert(row)
	switch match.Outcome {
	case MatchNotOwned:
		return
	case MatchMalformed:
		r.logger.Warn().
			Str("alert_id", row.AlertID).
			Str("memo", row.Memo).
			Str("reason", match.Reason).
			Msg("Skipping inconsistent owned alert")
		return
	}

	alert := match.Alert
	logger := r.logger.With().
		Str("alert_id", alert.AlertID).
		Str("security", alert.SecurityCode).
		Str("memo", alert.Memo).
		Logger()

	rows, err := r.svc.DeleteAlert(ctx, r.keys, alert.AlertID)
	if err != nil {
		logger.Error().Err(err).Msg("Alert deletion failed")
		return
	}

	for _, result := range rows {
		if result.ErrorNumber == 0 {
			summary.AlertsWiped++
			logger.Info().
				Str("price", alert.LastPrice.String()).
				Msg("Alert deletion succeeded")
		} else {
			logger.Error().
				Int("error_number", result.ErrorNumber).
				Str("error_description", result.ErrorDescription).
				Msg("Alert deletion failed")
		}
		r.recorder.RecordAudit(ctx, AuditEvent{
			Action:           AuditActionDelete,
			AlertID:          result.AlertID,
			Security:         alert.SecurityCode,
			Operator:         alert.LastPriceOperator,
			Price:            alert.LastPrice,
			ErrorNumber:      result.ErrorNumber,
			ErrorDescription: result.ErrorDescription,
		})
	}
}

// reconcilePortfolios enumerates every portfolio and processes its
// positions. A position-listing fault for one portfolio is logged and the
// run moves to the next; a portfolio-listing fault is fatal.
func (r *Reconciler) reconcilePortfolios(ctx context.Context, summary *models.RunSummary) error {
	r.logger.Info().Msg("Retrieving list of portfolios")

	err := EachPage(ctx, func(ctx context.Context, requestID string) (Page[iress.PortfolioRow], error) {
		page, err := r.svc.ListPortfolios(ctx, r.keys, requestID)
		if err != nil {
			return Page[iress.PortfolioRow]{}, err
		}
		return Page[iress.PortfolioRow]{StatusCode: page.StatusCode, Rows: page.Rows}, nil
	}, func(rows []iress.PortfolioRow) error {
		for _, row := range rows {
			summary.PortfoliosScanned++
			if err := r.processPortfolio(ctx, row.PortfolioCode, summary); err != nil {
				r.logger.Error().
					Err(err).
					Str("portfolio", row.PortfolioCode).
					Msg("Portfolio position retrieval failed")
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPortfolioListFailed, err)
	}

	if summary.PortfoliosScanned == 0 {
		r.logger.Info().Msg("No portfolios associated with the requesting user")
	}
	return nil
}

// processPortfolio pages through one portfolio's positions, evaluating
// each against the threshold and creating alerts for warranted positions.
func (r *Reconciler) processPortfolio(ctx context.Context, portfolioCode string, summary *models.RunSummary) error {
	return EachPage(ctx, func(ctx context.Context, requestID string) (Page[iress.PositionRow], error) {
		page, err := r.svc.ListPositions(ctx, r.keys, requestID, portfolioCode)
		if err != nil {
			return Page[iress.PositionRow]{}, err
		}
		return Page[iress.PositionRow]{StatusCode: page.StatusCode, Rows: page.Rows}, nil
	}, func(rows []iress.PositionRow) error {
		for _, row := range rows {
			pos := toPosition(row)
			spec, warranted := Evaluate(pos, r.cfg.ThresholdValue, r.cfg.PercentChange)
			if !warranted {
				continue
			}
			summary.AlertsWarranted++
			request := buildAlertRequest(pos, spec)
			if r.createAlert(ctx, request) {
				summary.AlertsCreated++
			}
		}
		return nil
	})
}

func toPosition(row iress.PositionRow) models.Position {
	return models.Position{
		PortfolioCode:          row.PortfolioCode,
		SecurityCode:           row.SecurityCode,
		Exchange:               row.Exchange,
		AveragePriceStartOfDay: row.AveragePriceStartOfDay,
		VolumeStartOfDay:       row.VolumeStartOfDay,
		ActualValue:            row.ActualValue,
	}
}

// buildAlertRequest turns an evaluated position into a creation request,
// rounding the alert price to three fractional digits at this point and
// not earlier.
func buildAlertRequest(pos models.Position, spec AlertSpec) models.AlertRequest {
	return models.AlertRequest{
		SecurityCode:  pos.SecurityCode,
		Exchange:      pos.Exchange,
		Operator:      spec.Operator,
		Price:         spec.Price.Round(3),
		PortfolioCode: pos.PortfolioCode,
		Memo:          OwnershipMarker + pos.PortfolioCode,
	}
}

// createAlert submits one quote-alert creation and reports whether the
// remote service confirmed it. Reported per-row errors are logged and
// counted as failures for that alert only.
func (r *Reconciler) createAlert(ctx context.Context, request models.AlertRequest) bool {
	names, operators, values := EncodeFieldSet(FieldSet{
		{Name: fieldSecurity, Operator: models.OperatorEquals, Value: request.Security()},
		{Name: fieldLast, Operator: request.Operator, Value: request.Price.StringFixed(3)},
	})

	logger := r.logger.With().
		Str("security", request.Security()).
		Str("portfolio", request.PortfolioCode).
		Str("price", request.Price.StringFixed(3)).
		Logger()

	rows, err := r.svc.CreateAlert(ctx, r.keys, iress.CreateAlertRequest{
		Type:           "Quote",
		FieldNames:     names,
		FieldOperators: operators,
		FieldValues:    values,
		Memo:           request.Memo,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Alert creation failed")
		return false
	}

	created := false
	for _, result := range rows {
		if result.ErrorNumber == 0 {
			created = true
			logger.Info().
				Str("alert_id", result.AlertID).
				Msg("Alert created successfully")
		} else {
			logger.Error().
				Int("error_number", result.ErrorNumber).
				Str("error_description", result.ErrorDescription).
				Msg("Alert create failed")
		}
		r.recorder.RecordAudit(ctx, AuditEvent{
			Action:           AuditActionCreate,
			AlertID:          result.AlertID,
			PortfolioCode:    request.PortfolioCode,
			Security:         request.Security(),
			Operator:         request.Operator,
			Price:            request.Price,
			ErrorNumber:      result.ErrorNumber,
			ErrorDescription: result.ErrorDescription,
		})
	}
	return created
}
