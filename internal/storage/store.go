package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store is the SQLite-backed persistence layer. It implements the
// pending-item source, threshold store, settings store, alert audit log,
// and staff directory consumed by the SLA engine.
type Store struct {
	logger *zap.Logger
	db     *sqlx.DB
}

// Open opens the database at path and applies migrations
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		logger: logger.Named("storage"),
		db:     db,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// migrate creates the schema if it doesn't exist
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS document_requests (
			id TEXT PRIMARY KEY,
			reference_no TEXT NOT NULL UNIQUE,
			requester_name TEXT NOT NULL,
			document_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			alert_sent INTEGER NOT NULL DEFAULT 0,
			alert_sent_at DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			reference_no TEXT NOT NULL UNIQUE,
			client_name TEXT NOT NULL,
			event_type TEXT NOT NULL,
			scheduled_for DATETIME,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			alert_sent INTEGER NOT NULL DEFAULT 0,
			alert_sent_at DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			reference_no TEXT NOT NULL UNIQUE,
			payer_name TEXT NOT NULL,
			method TEXT NOT NULL,
			amount_cents INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			alert_sent INTEGER NOT NULL DEFAULT 0,
			alert_sent_at DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS sla_thresholds (
			category TEXT PRIMARY KEY,
			warning_hours INTEGER NOT NULL,
			critical_hours INTEGER NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sla_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sla_alerts (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			item_id TEXT NOT NULL,
			severity TEXT NOT NULL,
			reference_no TEXT NOT NULL,
			subject_name TEXT NOT NULL,
			hours_pending INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL CHECK(role IN ('admin', 'operator', 'clerk')),
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_document_requests_status ON document_requests(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sla_alerts_created_at ON sla_alerts(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

// DB exposes the underlying handle for package-internal use in tests
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
