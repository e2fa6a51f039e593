package app

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"quotefill/adapters/excel"
	"quotefill/domain/catalog"
	"quotefill/internal/errors"

	"go.uber.org/zap"
)

// QuoteService renders standalone quotation workbooks
type QuoteService struct {
	writer *excel.QuoteWriter
	now    func() time.Time
	logger *zap.Logger
}

// Quote is a rendered quotation workbook
type Quote struct {
	Filename string
	Content  *bytes.Buffer
	Summary  excel.QuoteSummary
}

// NewQuoteService creates a quote service
func NewQuoteService(writer *excel.QuoteWriter, logger *zap.Logger) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{writer: writer, now: time.Now, logger: logger}
}

// Generate renders a quotation for the selected products
func (s *QuoteService) Generate(ctx context.Context, products []catalog.Product) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.InvalidInput("no products selected")
	}

	buf, summary, err := s.writer.Write(products)
	if err != nil {
		return nil, errors.Wrap(err, "render quotation")
	}

	quote := &Quote{
		Filename: QuoteFilename(s.now()),
		Content:  buf,
		Summary:  summary,
	}
	s.logger.Info("quotation generated",
		zap.String("filename", quote.Filename),
		zap.Int("products", len(products)),
		zap.Int("lines", summary.Lines),
		zap.Float64("total", summary.Total))
	return quote, nil
}

// QuoteFilename names a quotation download, e.g. 견적서_20250307_1741305600000.xlsx
func QuoteFilename(t time.Time) string {
	return fmt.Sprintf("견적서_%s_%d.xlsx", t.Format("20060102"), t.UnixMilli())
}
