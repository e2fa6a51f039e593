package excel

import (
	"bytes"
	"encoding/json"
	"fmt"

	"quotefill/internal/errors"
	"quotefill/ports"
)

// SheetRef selects a worksheet by name or 0-based index. The zero value
// selects the default sheet: the second one when present, else the first.
type SheetRef struct {
	Name     string
	Index    int
	HasIndex bool
}

func (r *SheetRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = SheetRef{}
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &r.Name)
	default:
		var idx int
		if err := json.Unmarshal(data, &idx); err != nil {
			return fmt.Errorf("sheet must be a name, an index or null, got %s", data)
		}
		r.Index, r.HasIndex = idx, true
		return nil
	}
}

func (r SheetRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.HasIndex:
		return json.Marshal(r.Index)
	case r.Name != "":
		return json.Marshal(r.Name)
	default:
		return []byte("null"), nil
	}
}

// CellUpdate overwrites a single cell value, leaving its formatting alone
type CellUpdate struct {
	Sheet SheetRef    `json:"sheet"`
	Row   int         `json:"row"`
	Col   int         `json:"col"`
	Value interface{} `json:"value"`
}

// DecodeCellUpdates parses a JSON array of updates and validates addresses
func DecodeCellUpdates(data []byte) ([]CellUpdate, error) {
	var updates []CellUpdate
	if err := json.Unmarshal(data, &updates); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("cell updates: %v", err))
	}
	if len(updates) == 0 {
		return nil, errors.InvalidInput("no cell updates given")
	}
	for i, u := range updates {
		if u.Row < 1 || u.Col < 1 {
			return nil, errors.InvalidInput(fmt.Sprintf("update %d: row and col must be 1 or greater", i))
		}
	}
	return updates, nil
}

// ApplyUpdates writes updates into wb in order and returns how many were
// applied. It stops at the first failure.
func ApplyUpdates(wb ports.Workbook, updates []CellUpdate) (int, error) {
	applied := 0
	for i, u := range updates {
		grid, err := selectSheet(wb, u.Sheet)
		if err != nil {
			return applied, errors.Wrapf(err, "update %d", i)
		}
		if err := grid.SetCell(u.Row, u.Col, jsonCellValue(u.Value)); err != nil {
			return applied, errors.Wrapf(err, "update %d at (%d, %d)", i, u.Row, u.Col)
		}
		applied++
	}
	return applied, nil
}

func selectSheet(wb ports.Workbook, ref SheetRef) (ports.Grid, error) {
	switch {
	case ref.HasIndex:
		return wb.Sheet(ref.Index)
	case ref.Name != "":
		return wb.SheetByName(ref.Name)
	case len(wb.SheetNames()) > 1:
		return wb.Sheet(1)
	default:
		return wb.Sheet(0)
	}
}

// jsonCellValue turns whole JSON numbers into integers
func jsonCellValue(v interface{}) interface{} {
	if f, ok := v.(float64); ok {
		return wholeOrFloat(f)
	}
	return v
}
