package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// FillRun is one attempt to fill a quotation template
type FillRun struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	FileName         string         `json:"file_name" db:"file_name"`
	SheetName        string         `json:"sheet_name" db:"sheet_name"`
	Category         string         `json:"category" db:"category"`
	ProductCount     int            `json:"product_count" db:"product_count"`
	RowsWritten      int            `json:"rows_written" db:"rows_written"`
	UnresolvedFields pq.StringArray `json:"unresolved_fields" db:"unresolved_fields"`
	Success          bool           `json:"success" db:"success"`
	Error            string         `json:"error,omitempty" db:"error"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// NewFillRun starts a run record with a fresh id
func NewFillRun(fileName string) *FillRun {
	return &FillRun{
		ID:               uuid.New(),
		FileName:         fileName,
		UnresolvedFields: pq.StringArray{},
		CreatedAt:        time.Now().UTC(),
	}
}
