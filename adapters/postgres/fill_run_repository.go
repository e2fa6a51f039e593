package postgres

import (
	"context"
	"database/sql"
	"errors"

	apperrors "quotefill/internal/errors"
	"quotefill/models"
	"quotefill/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FillRunRepositoryImpl implements FillRunRepository for PostgreSQL
type FillRunRepositoryImpl struct {
	db *sqlx.DB
}

// NewFillRunRepository creates a new PostgreSQL fill run repository
func NewFillRunRepository(db *sqlx.DB) ports.FillRunRepository {
	return &FillRunRepositoryImpl{db: db}
}

// RecordRun inserts a finished fill run
func (r *FillRunRepositoryImpl) RecordRun(ctx context.Context, run *models.FillRun) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO fill_runs (
			id, file_name, sheet_name, category, product_count,
			rows_written, unresolved_fields, success, error, created_at
		) VALUES (
			:id, :file_name, :sheet_name, :category, :product_count,
			:rows_written, :unresolved_fields, :success, :error, :created_at
		)
	`, run)
	if err != nil {
		return apperrors.DatabaseError("failed to record fill run", err)
	}
	return nil
}

// GetRun retrieves a single fill run
func (r *FillRunRepositoryImpl) GetRun(ctx context.Context, id uuid.UUID) (*models.FillRun, error) {
	var run models.FillRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, file_name, sheet_name, category, product_count,
		       rows_written, unresolved_fields, success, error, created_at
		FROM fill_runs
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("fill run " + id.String())
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to get fill run", err)
	}
	return &run, nil
}

// ListRecent returns the newest runs first
func (r *FillRunRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*models.FillRun, error) {
	runs := []*models.FillRun{}
	err := r.db.SelectContext(ctx, &runs, `
		SELECT id, file_name, sheet_name, category, product_count,
		       rows_written, unresolved_fields, success, error, created_at
		FROM fill_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list fill runs", err)
	}
	return runs, nil
}
