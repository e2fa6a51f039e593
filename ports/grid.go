package ports

// Grid is a 1-indexed, mutable view of a single worksheet.
type Grid interface {
	// CellText returns the displayed text of a cell, "" when empty
	CellText(row, col int) (string, error)
	// SetCell writes a string or numeric value into a cell
	SetCell(row, col int, value interface{}) error
}

// Workbook is an opened spreadsheet file whose sheets can be edited in place
type Workbook interface {
	Path() string
	SheetNames() []string
	// Sheet returns the grid of the sheet at the 0-based index
	Sheet(index int) (Grid, error)
	// SheetByName returns the grid of the named sheet
	SheetByName(name string) (Grid, error)
	// Save persists all edits back to Path
	Save() error
	Close() error
}

// WorkbookOpener opens workbooks from storage
type WorkbookOpener interface {
	Open(path string) (Workbook, error)
}
