package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quotefill/domain/catalog"
	"quotefill/internal/errors"
	"quotefill/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTemplate(t *testing.T, headers ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotation.xlsx")
	require.NoError(t, testkit.WriteTemplateWorkbook(path, 5, headers...))
	return path
}

func TestWorkbookSheetGridRoundTrip(t *testing.T) {
	path := writeTemplate(t, "카테고리", "상품명\n(필수)")

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"안내", testkit.TemplateSheet}, wb.SheetNames())

	grid, err := wb.SheetGrid(1)
	require.NoError(t, err)
	assert.Equal(t, testkit.TemplateSheet, grid.Name())

	text, err := grid.CellText(5, 2)
	require.NoError(t, err)
	assert.Equal(t, "상품명\n(필수)", text)

	require.NoError(t, grid.SetCell(9, 1, "의류"))
	require.NoError(t, grid.SetCell(9, 3, int64(9900)))
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	v, err := testkit.ReadCell(path, testkit.TemplateSheet, "A9")
	require.NoError(t, err)
	assert.Equal(t, "의류", v)
	v, err = testkit.ReadCell(path, testkit.TemplateSheet, "C9")
	require.NoError(t, err)
	assert.Equal(t, "9900", v)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".quotefill-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestOpenWorkbookErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenWorkbook(filepath.Join(dir, "missing.xlsx"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeWorkbookIO, errors.GetCode(err))

	_, err = OpenWorkbook(filepath.Join(dir, "legacy.xls"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeWorkbookIO, errors.GetCode(err))

	corrupt := filepath.Join(dir, "corrupt.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip"), 0o644))
	_, err = OpenWorkbook(corrupt)
	require.Error(t, err)
	assert.Equal(t, errors.CodeWorkbookIO, errors.GetCode(err))
}

func TestSheetLookupErrors(t *testing.T) {
	wb, err := OpenWorkbook(writeTemplate(t, "카테고리"))
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.Sheet(5)
	assert.Equal(t, errors.CodeTemplateInvalid, errors.GetCode(err))
	_, err = wb.SheetByName("없는 시트")
	assert.Equal(t, errors.CodeTemplateInvalid, errors.GetCode(err))

	grid, err := wb.SheetByName("안내")
	require.NoError(t, err)
	text, err := grid.CellText(1, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestReadWorkbookFromBytes(t *testing.T) {
	data, err := os.ReadFile(writeTemplate(t, "검색태그"))
	require.NoError(t, err)

	wb, err := ReadWorkbook(bytes.NewReader(data), "upload.xlsx")
	require.NoError(t, err)
	defer wb.Close()

	grid, err := wb.Sheet(1)
	require.NoError(t, err)
	text, err := grid.CellText(5, 1)
	require.NoError(t, err)
	assert.Equal(t, "검색태그", text)

	out, err := wb.Bytes()
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestApplyUpdatesSheetSelection(t *testing.T) {
	path := writeTemplate(t, "카테고리")
	wb, err := OpenWorkbook(path)
	require.NoError(t, err)

	updates, err := DecodeCellUpdates([]byte(`[
		{"row": 9, "col": 1, "value": "기본 시트"},
		{"sheet": 0, "row": 2, "col": 1, "value": 12},
		{"sheet": "상품정보", "row": 9, "col": 2, "value": 1.25}
	]`))
	require.NoError(t, err)

	n, err := ApplyUpdates(wb, updates)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	v, _ := testkit.ReadCell(path, testkit.TemplateSheet, "A9")
	assert.Equal(t, "기본 시트", v)
	v, _ = testkit.ReadCell(path, "안내", "A2")
	assert.Equal(t, "12", v)
	v, _ = testkit.ReadCell(path, testkit.TemplateSheet, "B9")
	assert.Equal(t, "1.25", v)
}

func TestApplyUpdatesSingleSheetFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()

	n, err := ApplyUpdates(wb, []CellUpdate{{Row: 1, Col: 1, Value: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ApplyUpdates(wb, []CellUpdate{
		{Row: 1, Col: 2, Value: "y"},
		{Sheet: SheetRef{Index: 3, HasIndex: true}, Row: 1, Col: 1, Value: "z"},
	})
	require.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestDecodeCellUpdatesRejectsBadInput(t *testing.T) {
	for _, in := range []string{`{}`, `[]`, `[{"row": 0, "col": 1}]`, `[{"sheet": true, "row": 1, "col": 1}]`} {
		_, err := DecodeCellUpdates([]byte(in))
		require.Error(t, err, in)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), in)
	}
}

func TestQuoteWriter(t *testing.T) {
	w := &QuoteWriter{now: func() time.Time { return time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC) }}
	products := []catalog.Product{
		{Title: "티셔츠", Platform: "coupang-product", URL: "https://example.com/1", Options: []catalog.Option{
			{OptionName1: "블랙", Price: catalog.NewPrice(9900), SKU: "TS-BK"},
			{OptionName1: "화이트", SalePrice: catalog.NewPrice(8900)},
		}},
		{TitleCn: "帽子", BasePrice: catalog.NewPrice(3000), SourceURL: "https://example.com/2"},
	}

	buf, summary, err := w.Write(products)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Lines)
	assert.Equal(t, 21800.0, summary.Total)
	assert.InDelta(t, 7266.67, summary.MeanPrice, 0.01)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{QuoteSheet, DetailSheet}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "2025. 3. 7.", cell(QuoteSheet, "B3"))
	assert.Equal(t, "번호", cell(QuoteSheet, "A5"))
	assert.Equal(t, "티셔츠", cell(QuoteSheet, "B6"))
	assert.Equal(t, "블랙", cell(QuoteSheet, "C6"))
	assert.Equal(t, "-", cell(QuoteSheet, "D6"))
	assert.Equal(t, "TS-BK", cell(QuoteSheet, "H6"))
	assert.Equal(t, "8900", cell(QuoteSheet, "F7"))
	assert.Equal(t, "帽子", cell(QuoteSheet, "B8"))
	assert.Equal(t, "3000", cell(QuoteSheet, "G8"))
	assert.Equal(t, "합계", cell(QuoteSheet, "E10"))
	assert.Equal(t, "21800", cell(QuoteSheet, "G10"))

	assert.Equal(t, "쿠팡", cell(DetailSheet, "B4"))
	assert.Equal(t, "https://example.com/2", cell(DetailSheet, "C5"))
	assert.Equal(t, "2", cell(DetailSheet, "E4"))

	width, err := f.GetColWidth(QuoteSheet, "B")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, QuoteSummary{}, Summarize(nil))
}
