package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"portfolio-alerter/internal/alerter"
	"portfolio-alerter/internal/models"
)

// SQLiteStore implements HistoryStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	runID  int64
	logger zerolog.Logger
}

// NewSQLiteStore creates a new SQLite-based history store.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Runs table, one row per reconciliation run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		portfolios_scanned INTEGER DEFAULT 0,
		alerts_warranted INTEGER DEFAULT 0,
		alerts_created INTEGER DEFAULT 0,
		alerts_wiped INTEGER DEFAULT 0,
		wipe_performed INTEGER DEFAULT 0,
		fatal_error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-alert audit rows scoped to a run
	CREATE TABLE IF NOT EXISTS alert_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		alert_id TEXT,
		portfolio_code TEXT,
		security TEXT,
		operator TEXT,
		price TEXT,
		error_number INTEGER DEFAULT 0,
		error_description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_alert_audit_run ON alert_audit(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BeginRun opens a run record; audit events recorded afterwards attach to it.
func (s *SQLiteStore) BeginRun(ctx context.Context, startedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at) VALUES (?)`, startedAt)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	s.runID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}
	return nil
}

// FinishRun completes the open run record with the final counters.
func (s *SQLiteStore) FinishRun(ctx context.Context, summary models.RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, portfolios_scanned = ?, alerts_warranted = ?,
			alerts_created = ?, alerts_wiped = ?, wipe_performed = ?, fatal_error = ?
		WHERE id = ?`,
		summary.FinishedAt, summary.PortfoliosScanned, summary.AlertsWarranted,
		summary.AlertsCreated, summary.AlertsWiped, boolToInt(summary.WipePerformed),
		summary.FatalError, s.runID)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	return nil
}

// RecordAudit implements alerter.Recorder. Failures are logged and
// swallowed: recording must never disturb the run.
func (s *SQLiteStore) RecordAudit(ctx context.Context, event alerter.AuditEvent) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alert_audit (run_id, action, alert_id, portfolio_code, security,
			operator, price, error_number, error_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, event.Action, event.AlertID, event.PortfolioCode, event.Security,
		string(event.Operator), event.Price.String(), event.ErrorNumber, event.ErrorDescription)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record audit event")
	}
}

// RecentRuns returns the most recent runs, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, COALESCE(finished_at, started_at), portfolios_scanned,
			alerts_warranted, alerts_created, alerts_wiped, wipe_performed,
			COALESCE(fatal_error, '')
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var wipe int
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.PortfoliosScanned,
			&r.AlertsWarranted, &r.AlertsCreated, &r.AlertsWiped, &wipe, &r.FatalError); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.WipePerformed = wipe != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
