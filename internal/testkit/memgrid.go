package testkit

import (
	"fmt"
	"strconv"
)

// Cell addresses a grid cell, 1-based
type Cell struct {
	Row int
	Col int
}

// Write is one recorded SetCell call
type Write struct {
	Cell
	Value interface{}
}

// MemGrid is an in-memory ports.Grid that records every write
type MemGrid struct {
	cells  map[Cell]interface{}
	writes []Write
}

// NewMemGrid creates an empty grid
func NewMemGrid() *MemGrid {
	return &MemGrid{cells: make(map[Cell]interface{})}
}

// NewTemplateGrid creates a grid whose headerRow holds headers from column 1
func NewTemplateGrid(headerRow int, headers ...string) *MemGrid {
	g := NewMemGrid()
	for i, h := range headers {
		g.cells[Cell{Row: headerRow, Col: i + 1}] = h
	}
	return g
}

// Put seeds a cell without recording a write
func (g *MemGrid) Put(row, col int, value interface{}) {
	g.cells[Cell{Row: row, Col: col}] = value
}

func (g *MemGrid) CellText(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", fmt.Errorf("invalid cell (%d, %d)", row, col)
	}
	v, ok := g.cells[Cell{Row: row, Col: col}]
	if !ok || v == nil {
		return "", nil
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	default:
		return fmt.Sprint(x), nil
	}
}

func (g *MemGrid) SetCell(row, col int, value interface{}) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell (%d, %d)", row, col)
	}
	c := Cell{Row: row, Col: col}
	g.cells[c] = value
	g.writes = append(g.writes, Write{Cell: c, Value: value})
	return nil
}

// Value returns the raw value stored in a cell
func (g *MemGrid) Value(row, col int) (interface{}, bool) {
	v, ok := g.cells[Cell{Row: row, Col: col}]
	return v, ok
}

// Writes returns the recorded writes in call order
func (g *MemGrid) Writes() []Write {
	out := make([]Write, len(g.writes))
	copy(out, g.writes)
	return out
}

// WrittenRows returns the distinct rows written, in first-write order
func (g *MemGrid) WrittenRows() []int {
	seen := make(map[int]bool)
	var rows []int
	for _, w := range g.writes {
		if !seen[w.Row] {
			seen[w.Row] = true
			rows = append(rows, w.Row)
		}
	}
	return rows
}

// WrittenColumns returns the distinct columns written
func (g *MemGrid) WrittenColumns() map[int]bool {
	cols := make(map[int]bool)
	for _, w := range g.writes {
		cols[w.Col] = true
	}
	return cols
}
