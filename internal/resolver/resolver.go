// Package resolver locates the logical columns of a quotation template by
// matching header text against ordered keyword lists.
package resolver

import (
	"strings"

	"quotefill/domain/template"
	"quotefill/internal/errors"
	"quotefill/ports"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxColumns bounds the header scan when a layout does not set one
const DefaultMaxColumns = 100

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normalize canonicalizes header and keyword text: NFC composition, newlines
// folded to spaces, surrounding whitespace trimmed.
func Normalize(s string) string {
	return strings.TrimSpace(newlines.Replace(norm.NFC.String(s)))
}

// Header is one discovered header cell
type Header struct {
	Text   string `json:"text"`
	Column int    `json:"column"`
}

// HeaderIndex maps normalized header text to its column. Headers keep the
// order in which their text first appeared; a repeated text moves its column
// to the rightmost occurrence without changing that order.
type HeaderIndex struct {
	headers  []Header
	position map[string]int
}

// NewHeaderIndex creates an empty index
func NewHeaderIndex() *HeaderIndex {
	return &HeaderIndex{position: make(map[string]int)}
}

// Add records text at col. Empty text is ignored.
func (h *HeaderIndex) Add(text string, col int) {
	text = Normalize(text)
	if text == "" {
		return
	}
	if i, ok := h.position[text]; ok {
		h.headers[i].Column = col
		return
	}
	h.position[text] = len(h.headers)
	h.headers = append(h.headers, Header{Text: text, Column: col})
}

// Len returns the number of distinct headers
func (h *HeaderIndex) Len() int {
	return len(h.headers)
}

// Headers returns a copy of the discovered headers in discovery order
func (h *HeaderIndex) Headers() []Header {
	out := make([]Header, len(h.headers))
	copy(out, h.headers)
	return out
}

// Column returns the column of an exact (normalized) header text
func (h *HeaderIndex) Column(text string) (int, bool) {
	i, ok := h.position[Normalize(text)]
	if !ok {
		return 0, false
	}
	return h.headers[i].Column, true
}

// Find returns the column of the first header containing the highest
// priority keyword that matches anything. Lower priority keywords are only
// tried when every higher one matched nothing.
func (h *HeaderIndex) Find(keywords []string) (int, bool) {
	for _, keyword := range keywords {
		keyword = Normalize(keyword)
		if keyword == "" {
			continue
		}
		for _, header := range h.headers {
			if strings.Contains(header.Text, keyword) {
				return header.Column, true
			}
		}
	}
	return 0, false
}

// ScanHeaders reads columns 1..maxColumns of headerRow into an index
func ScanHeaders(grid ports.Grid, headerRow, maxColumns int) (*HeaderIndex, error) {
	if headerRow < 1 {
		return nil, errors.TemplateInvalid("header row must be 1 or greater")
	}
	if maxColumns < 1 {
		maxColumns = DefaultMaxColumns
	}

	index := NewHeaderIndex()
	for col := 1; col <= maxColumns; col++ {
		text, err := grid.CellText(headerRow, col)
		if err != nil {
			return nil, errors.Wrapf(err, "read header cell (%d, %d)", headerRow, col)
		}
		index.Add(text, col)
	}
	return index, nil
}

// Resolve builds the column map for rules. A field without any matching
// header is left unresolved; if a field appears in several rules the first
// rule that matches decides.
func Resolve(index *HeaderIndex, rules []template.FieldRule) template.ColumnMap {
	columns := make(map[template.Field]int, len(rules))
	for _, rule := range rules {
		if _, done := columns[rule.Field]; done {
			continue
		}
		if col, ok := index.Find(rule.Keywords); ok {
			columns[rule.Field] = col
		}
	}
	return template.NewColumnMap(columns)
}

// ResolveGrid scans the layout's header row and resolves its rules in one go
func ResolveGrid(grid ports.Grid, layout template.Layout) (*HeaderIndex, template.ColumnMap, error) {
	index, err := ScanHeaders(grid, layout.HeaderRow, layout.MaxColumns)
	if err != nil {
		return nil, template.ColumnMap{}, err
	}
	return index, Resolve(index, layout.Rules), nil
}
