package excel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"quotefill/internal/errors"
	"quotefill/ports"

	"github.com/xuri/excelize/v2"
)

var supportedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// Opener opens workbooks from the local filesystem
type Opener struct{}

// NewOpener creates a filesystem workbook opener
func NewOpener() *Opener {
	return &Opener{}
}

// Open implements ports.WorkbookOpener
func (o *Opener) Open(path string) (ports.Workbook, error) {
	return OpenWorkbook(path)
}

// Workbook wraps an excelize file so cell edits keep the template's styles
type Workbook struct {
	path string
	file *excelize.File
}

// OpenWorkbook opens an Office Open XML workbook for in-place editing
func OpenWorkbook(path string) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, errors.WorkbookIO(path, fmt.Errorf("unsupported file type %q", ext))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WorkbookIO(path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WorkbookIO(path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

// ReadWorkbook opens a workbook from r. Save writes to path.
func ReadWorkbook(r io.Reader, path string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.WorkbookIO(path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Sheet returns the sheet at the 0-based index
func (w *Workbook) Sheet(index int) (ports.Grid, error) {
	return w.SheetGrid(index)
}

// SheetGrid is Sheet with the concrete grid type
func (w *Workbook) SheetGrid(index int) (*SheetGrid, error) {
	names := w.file.GetSheetList()
	if index < 0 || index >= len(names) {
		return nil, errors.TemplateInvalid(fmt.Sprintf("sheet index %d not found, workbook has %d sheet(s)", index, len(names)))
	}
	return &SheetGrid{file: w.file, sheet: names[index]}, nil
}

func (w *Workbook) SheetByName(name string) (ports.Grid, error) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil || idx == -1 {
		return nil, errors.TemplateInvalid(fmt.Sprintf("sheet %q not found", name))
	}
	return &SheetGrid{file: w.file, sheet: name}, nil
}

// Save persists the workbook to its path. The file is written to a
// temporary sibling first and renamed over the original, so a failed save
// leaves the previous file intact.
func (w *Workbook) Save() error {
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return errors.WorkbookIO(w.path, err)
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".quotefill-*"+filepath.Ext(w.path))
	if err != nil {
		return errors.WorkbookIO(w.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WorkbookIO(w.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WorkbookIO(w.path, err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return errors.WorkbookIO(w.path, err)
	}
	return nil
}

// WriteTo streams the workbook without touching its path
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	n, err := w.file.WriteTo(out)
	if err != nil {
		return n, errors.WorkbookIO(w.path, err)
	}
	return n, nil
}

// Bytes renders the workbook into memory
func (w *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetGrid exposes one worksheet as a ports.Grid
type SheetGrid struct {
	file  *excelize.File
	sheet string
}

// Name returns the worksheet name
func (g *SheetGrid) Name() string {
	return g.sheet
}

func (g *SheetGrid) CellText(row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return g.file.GetCellValue(g.sheet, cell)
}

func (g *SheetGrid) SetCell(row, col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return g.file.SetCellValue(g.sheet, cell, value)
}
