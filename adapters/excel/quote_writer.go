package excel

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"quotefill/domain/catalog"
	"quotefill/internal/errors"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"
)

const (
	QuoteSheet  = "견적서"
	DetailSheet = "상세정보"
)

var quoteHeader = []interface{}{"번호", "상품명", "옵션1", "옵션2", "수량", "단가", "금액", "비고"}
var quoteWidths = []float64{6, 30, 20, 20, 8, 12, 12, 15}

var detailHeader = []interface{}{"상품명", "플랫폼", "원본 URL", "대표 이미지", "옵션 수"}
var detailWidths = []float64{30, 15, 50, 50, 10}

// QuoteSummary holds the totals written under the quotation lines
type QuoteSummary struct {
	Lines     int     `json:"lines"`
	Total     float64 `json:"total"`
	MeanPrice float64 `json:"mean_price"`
}

// QuoteWriter renders standalone quotation workbooks
type QuoteWriter struct {
	now func() time.Time
}

// NewQuoteWriter creates a writer stamping quotes with the current date
func NewQuoteWriter() *QuoteWriter {
	return &QuoteWriter{now: time.Now}
}

// Summarize totals quotation lines
func Summarize(lines []catalog.QuoteLine) QuoteSummary {
	summary := QuoteSummary{Lines: len(lines)}
	if len(lines) == 0 {
		return summary
	}
	amounts := make(stats.Float64Data, 0, len(lines))
	prices := make(stats.Float64Data, 0, len(lines))
	for _, l := range lines {
		amounts = append(amounts, l.Amount())
		prices = append(prices, l.UnitPrice)
	}
	summary.Total, _ = amounts.Sum()
	summary.MeanPrice, _ = prices.Mean()
	return summary
}

// Write builds the quotation and detail sheets for products
func (w *QuoteWriter) Write(products []catalog.Product) (*bytes.Buffer, QuoteSummary, error) {
	f := excelize.NewFile()
	defer f.Close()

	lines := catalog.QuoteLines(products)
	summary := Summarize(lines)

	if err := f.SetSheetName("Sheet1", QuoteSheet); err != nil {
		return nil, summary, errors.Wrap(err, "create quotation sheet")
	}
	if err := w.writeQuoteSheet(f, lines, summary); err != nil {
		return nil, summary, errors.Wrap(err, "write quotation sheet")
	}

	if _, err := f.NewSheet(DetailSheet); err != nil {
		return nil, summary, errors.Wrap(err, "create detail sheet")
	}
	if err := writeDetailSheet(f, products); err != nil {
		return nil, summary, errors.Wrap(err, "write detail sheet")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, summary, errors.WorkbookIO("quotation", err)
	}
	return buf, summary, nil
}

func (w *QuoteWriter) writeQuoteSheet(f *excelize.File, lines []catalog.QuoteLine, summary QuoteSummary) error {
	now := w.now()
	rows := [][]interface{}{
		{"견적서"},
		{},
		{"작성일:", fmt.Sprintf("%d. %d. %d.", now.Year(), int(now.Month()), now.Day())},
		{},
		quoteHeader,
	}
	for _, l := range lines {
		rows = append(rows, []interface{}{
			l.No, l.Title, l.Option1, l.Option2, l.Quantity,
			wholeOrFloat(l.UnitPrice), wholeOrFloat(l.Amount()), l.Note,
		})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"", "", "", "", "합계", "", wholeOrFloat(summary.Total), ""},
		[]interface{}{"", "", "", "", "평균 단가", wholeOrFloat(summary.MeanPrice), "", ""},
	)

	if err := writeRows(f, QuoteSheet, rows); err != nil {
		return err
	}
	return setWidths(f, QuoteSheet, quoteWidths)
}

func writeDetailSheet(f *excelize.File, products []catalog.Product) error {
	rows := [][]interface{}{
		{"상품 상세 정보"},
		{},
		detailHeader,
	}
	for _, p := range products {
		rows = append(rows, []interface{}{
			p.DisplayTitle(),
			catalog.PlatformName(p.Platform),
			p.SourceLink(),
			p.MainImage,
			len(p.Options),
		})
	}
	if err := writeRows(f, DetailSheet, rows); err != nil {
		return err
	}
	return setWidths(f, DetailSheet, detailWidths)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func wholeOrFloat(v float64) interface{} {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}
