package app

import (
	"context"
	"io"
	"path/filepath"

	"quotefill/adapters/excel"
	"quotefill/internal/errors"
	"quotefill/ports"

	"go.uber.org/zap"
)

// EditService applies cell-level edits to existing workbooks
type EditService struct {
	opener ports.WorkbookOpener
	logger *zap.Logger
}

// EditResult reports an edit of a file on disk
type EditResult struct {
	Success bool   `json:"success"`
	File    string `json:"file"`
	Applied int    `json:"applied"`
}

// NewEditService creates an edit service
func NewEditService(opener ports.WorkbookOpener, logger *zap.Logger) *EditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditService{opener: opener, logger: logger}
}

// EditFile applies updates to the workbook at path and saves it in place.
// Nothing is saved when any update fails.
func (s *EditService) EditFile(ctx context.Context, path string, updates []excel.CellUpdate) (*EditResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, errors.InvalidInput("no cell updates given")
	}

	wb, err := s.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	applied, err := excel.ApplyUpdates(wb, updates)
	if err != nil {
		return nil, err
	}
	if err := wb.Save(); err != nil {
		return nil, err
	}

	s.logger.Info("workbook edited",
		zap.String("file", path),
		zap.Int("applied", applied))
	return &EditResult{Success: true, File: path, Applied: applied}, nil
}

// EditUpload applies updates to an uploaded workbook and returns the edited bytes
func (s *EditService) EditUpload(ctx context.Context, r io.Reader, filename string, updates []excel.CellUpdate) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, errors.InvalidInput("no cell updates given")
	}

	wb, err := excel.ReadWorkbook(r, filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	applied, err := excel.ApplyUpdates(wb, updates)
	if err != nil {
		return nil, err
	}
	out, err := wb.Bytes()
	if err != nil {
		return nil, err
	}

	s.logger.Info("uploaded workbook edited",
		zap.String("filename", filename),
		zap.Int("applied", applied),
		zap.Int("bytes", len(out)))
	return out, nil
}
