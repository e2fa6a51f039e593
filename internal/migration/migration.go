package migration

import (
	"context"

	"quotefill/internal/errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	logger  *zap.Logger
}

// NewRunner creates a new migration runner
func NewRunner(logger *zap.Logger) *MigrationRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationRunner{
		version: "1.0.0",
		logger:  logger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every statement is
// idempotent, so Run is safe on every startup.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createFillRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create fill_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	r.logger.Info("database migrations applied", zap.String("version", r.version))
	return nil
}

func (r *MigrationRunner) createFillRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fill_runs (
			id UUID PRIMARY KEY,
			file_name TEXT NOT NULL,
			sheet_name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			product_count INTEGER NOT NULL DEFAULT 0,
			rows_written INTEGER NOT NULL DEFAULT 0,
			unresolved_fields TEXT[] NOT NULL DEFAULT '{}',
			success BOOLEAN NOT NULL DEFAULT false,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_fill_runs_created_at ON fill_runs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_fill_runs_file_name ON fill_runs(file_name)",
		"CREATE INDEX IF NOT EXISTS idx_fill_runs_success ON fill_runs(success)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// index failures are not fatal
			r.logger.Warn("failed to create index", zap.String("sql", idxSQL), zap.Error(err))
		}
	}

	return nil
}
