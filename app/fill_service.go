package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quotefill/domain/catalog"
	"quotefill/domain/template"
	"quotefill/internal/errors"
	"quotefill/internal/expander"
	"quotefill/internal/resolver"
	"quotefill/models"
	"quotefill/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FillService fills quotation templates with product rows
type FillService struct {
	opener      ports.WorkbookOpener
	runs        ports.FillRunRepository
	layout      template.Layout
	downloadDir string
	concurrency int
	logger      *zap.Logger
}

// FillServiceConfig holds the tunables of a FillService
type FillServiceConfig struct {
	Layout      template.Layout
	DownloadDir string
	Concurrency int
}

// FillRequest describes one template to fill in place
type FillRequest struct {
	Path     string
	Products []catalog.Product
	Shared   catalog.SharedFields
}

// FillResult reports what a single fill wrote
type FillResult struct {
	Success          bool               `json:"success"`
	File             string             `json:"file"`
	Sheet            string             `json:"sheet"`
	RowsWritten      int                `json:"rows_written"`
	UnresolvedFields []template.Field   `json:"unresolved_fields"`
	Columns          template.ColumnMap `json:"column_map"`
	RunID            string             `json:"run_id,omitempty"`
}

// FileTarget names a downloaded template and the category to stamp into it
type FileTarget struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
}

// BatchRequest fills several downloaded templates with the same products
type BatchRequest struct {
	Files      []FileTarget       `json:"files"`
	Products   []catalog.Product  `json:"products"`
	SearchTags []string           `json:"searchTags"`
	Size       catalog.Dimensions `json:"size"`
	Weight     catalog.Text       `json:"weight"`
}

// FileResult is the outcome of one file in a batch
type FileResult struct {
	Filename         string           `json:"filename"`
	Success          bool             `json:"success"`
	RowsWritten      int              `json:"rows_written,omitempty"`
	UnresolvedFields []template.Field `json:"unresolved_fields,omitempty"`
	Error            string           `json:"error,omitempty"`
}

// BatchResult aggregates a batch fill
type BatchResult struct {
	Success      bool         `json:"success"`
	Results      []FileResult `json:"results"`
	SuccessCount int          `json:"successCount"`
	TotalCount   int          `json:"totalCount"`
}

// Inspection shows how a template's headers resolve without writing anything
type Inspection struct {
	File             string             `json:"file"`
	Sheet            string             `json:"sheet"`
	Headers          []resolver.Header  `json:"headers"`
	Columns          template.ColumnMap `json:"column_map"`
	UnresolvedFields []template.Field   `json:"unresolved_fields"`
}

// NewFillService creates a fill service. runs may be nil when no ledger is configured.
func NewFillService(opener ports.WorkbookOpener, runs ports.FillRunRepository, cfg FillServiceConfig, logger *zap.Logger) *FillService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FillService{
		opener:      opener,
		runs:        runs,
		layout:      cfg.Layout,
		downloadDir: cfg.DownloadDir,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
}

// Layout returns the template layout fills resolve against
func (s *FillService) Layout() template.Layout {
	return s.layout
}

// Fill resolves the template's header row, writes one row per product option
// and saves the workbook in place.
func (s *FillService) Fill(ctx context.Context, req FillRequest) (*FillResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, errors.InvalidInput("template path is required")
	}

	startTime := time.Now()
	run := models.NewFillRun(filepath.Base(req.Path))
	run.Category = req.Shared.Category
	run.ProductCount = len(req.Products)

	result, err := s.fill(req, run)
	if err != nil {
		run.Error = err.Error()
	} else {
		run.Success = true
	}
	s.recordRun(ctx, run)

	if err != nil {
		s.logger.Warn("template fill failed",
			zap.String("file", req.Path),
			zap.String("code", errors.GetCode(err)),
			zap.Error(err))
		return nil, err
	}

	if s.runs != nil {
		result.RunID = run.ID.String()
	}
	s.logger.Info("template filled",
		zap.String("file", req.Path),
		zap.String("sheet", result.Sheet),
		zap.Int("products", len(req.Products)),
		zap.Int("rows_written", result.RowsWritten),
		zap.Int("resolved_fields", result.Columns.Resolved()),
		zap.Any("unresolved_fields", result.UnresolvedFields),
		zap.Duration("elapsed", time.Since(startTime)))
	return result, nil
}

func (s *FillService) fill(req FillRequest, run *models.FillRun) (*FillResult, error) {
	wb, err := s.opener.Open(req.Path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, grid, err := s.templateSheet(wb)
	if err != nil {
		return nil, err
	}
	run.SheetName = sheet

	headers, columns, err := resolver.ResolveGrid(grid, s.layout)
	if err != nil {
		return nil, err
	}
	unresolved := columns.Unresolved()
	for _, f := range unresolved {
		run.UnresolvedFields = append(run.UnresolvedFields, string(f))
	}
	s.logger.Debug("template headers resolved",
		zap.String("file", req.Path),
		zap.Int("headers", headers.Len()),
		zap.Any("column_map", columns))

	rows, err := expander.Expand(grid, columns, s.layout.FirstDataRow, req.Products, req.Shared)
	if err != nil {
		return nil, errors.Wrap(err, "write product rows")
	}
	run.RowsWritten = rows

	if err := wb.Save(); err != nil {
		return nil, err
	}

	return &FillResult{
		Success:          true,
		File:             req.Path,
		Sheet:            sheet,
		RowsWritten:      rows,
		UnresolvedFields: unresolved,
		Columns:          columns,
	}, nil
}

func (s *FillService) templateSheet(wb ports.Workbook) (string, ports.Grid, error) {
	grid, err := wb.Sheet(s.layout.SheetIndex)
	if err != nil {
		return "", nil, err
	}
	names := wb.SheetNames()
	return names[s.layout.SheetIndex], grid, nil
}

// FillBatch fills every requested template in the download directory.
// Distinct files are processed concurrently; entries naming the same file run
// one after another in request order so the later entry's write wins. One file
// failing never stops the others. When ctx is cancelled the files already
// written keep their results and the remaining entries carry the context error.
func (s *FillService) FillBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if len(req.Files) == 0 {
		return nil, errors.InvalidInput("no files to fill")
	}
	if len(req.Products) == 0 {
		return nil, errors.InvalidInput("no products to fill")
	}

	shared := catalog.SharedFields{
		SearchTags: catalog.JoinTags(req.SearchTags),
		Size:       req.Size.String(),
		Weight:     catalog.FormatWeight(req.Weight),
	}

	results := make([]FileResult, len(req.Files))
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, indexes := range groupByFile(req.Files) {
		indexes := indexes
		g.Go(func() error {
			for _, i := range indexes {
				target := req.Files[i]
				if err := ctx.Err(); err != nil {
					results[i] = FileResult{Filename: target.Filename, Error: err.Error()}
					continue
				}
				results[i] = s.fillTarget(ctx, target, req.Products, shared)
			}
			return nil
		})
	}
	_ = g.Wait()

	batch := &BatchResult{Results: results, TotalCount: len(results)}
	for _, r := range results {
		if r.Success {
			batch.SuccessCount++
		}
	}
	batch.Success = batch.SuccessCount > 0

	if err := ctx.Err(); err != nil {
		s.logger.Warn("batch fill cancelled",
			zap.Int("files", batch.TotalCount),
			zap.Int("succeeded", batch.SuccessCount),
			zap.Error(err))
		return batch, nil
	}
	s.logger.Info("batch fill finished",
		zap.Int("files", batch.TotalCount),
		zap.Int("succeeded", batch.SuccessCount))
	return batch, nil
}

// groupByFile returns the indexes of targets naming the same file, grouped in
// order of first appearance.
func groupByFile(files []FileTarget) [][]int {
	var groups [][]int
	seen := make(map[string]int, len(files))
	for i, target := range files {
		key := strings.TrimSpace(target.Filename)
		g, ok := seen[key]
		if !ok {
			g = len(groups)
			seen[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

func (s *FillService) fillTarget(ctx context.Context, target FileTarget, products []catalog.Product, shared catalog.SharedFields) FileResult {
	result := FileResult{Filename: target.Filename}

	path, err := s.ResolveDownload(target.Filename)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	shared.Category = target.Category
	filled, err := s.Fill(ctx, FillRequest{Path: path, Products: products, Shared: shared})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.RowsWritten = filled.RowsWritten
	result.UnresolvedFields = filled.UnresolvedFields
	return result
}

// ResolveDownload maps a bare filename to a file in the download directory
func (s *FillService) ResolveDownload(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", errors.InvalidInput("invalid filename: " + filename)
	}
	path := filepath.Join(s.downloadDir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound("file " + name)
		}
		return "", errors.WorkbookIO(path, err)
	}
	return path, nil
}

// Inspect opens a template and reports its headers and resolved columns
func (s *FillService) Inspect(ctx context.Context, path string) (*Inspection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wb, err := s.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return s.InspectWorkbook(wb)
}

// InspectWorkbook reports the headers and resolved columns of an opened workbook
func (s *FillService) InspectWorkbook(wb ports.Workbook) (*Inspection, error) {
	sheet, grid, err := s.templateSheet(wb)
	if err != nil {
		return nil, err
	}
	headers, columns, err := resolver.ResolveGrid(grid, s.layout)
	if err != nil {
		return nil, err
	}
	return &Inspection{
		File:             wb.Path(),
		Sheet:            sheet,
		Headers:          headers.Headers(),
		Columns:          columns,
		UnresolvedFields: columns.Unresolved(),
	}, nil
}

// RecentRuns lists the newest fill runs from the ledger
func (s *FillService) RecentRuns(ctx context.Context, limit int) ([]*models.FillRun, error) {
	if s.runs == nil {
		return []*models.FillRun{}, nil
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return s.runs.ListRecent(ctx, limit)
}

func (s *FillService) recordRun(ctx context.Context, run *models.FillRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.RecordRun(ctx, run); err != nil {
		// ledger failures are logged, the fill already happened
		s.logger.Error("failed to record fill run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}
}
