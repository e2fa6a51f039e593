package ports

import (
	"context"

	"quotefill/models"

	"github.com/google/uuid"
)

// FillRunRepository records every template fill attempt
type FillRunRepository interface {
	// Record a finished fill, successful or not
	RecordRun(ctx context.Context, run *models.FillRun) error

	// Get a single run
	GetRun(ctx context.Context, id uuid.UUID) (*models.FillRun, error)

	// List the most recent runs, newest first
	ListRecent(ctx context.Context, limit int) ([]*models.FillRun, error)
}
