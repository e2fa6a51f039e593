package template

import (
	"encoding/json"
)

// Field is a logical column of a quotation template
type Field string

const (
	FieldCategory    Field = "category"
	FieldProductName Field = "product_name"
	FieldOption1     Field = "option1"
	FieldOption2     Field = "option2"
	FieldSearchTag   Field = "search_tag"
	FieldWeight      Field = "weight"
	FieldSize        Field = "size"
	FieldPrice       Field = "price"
)

// Fields lists every logical field in row write order. When two fields
// resolve to the same column the later one's value ends up in the cell.
var Fields = []Field{
	FieldCategory,
	FieldProductName,
	FieldOption1,
	FieldOption2,
	FieldSearchTag,
	FieldWeight,
	FieldSize,
	FieldPrice,
}

// Valid reports whether f is one of the known fields
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// FieldRule binds a field to the keywords its header may contain, highest
// priority first.
type FieldRule struct {
	Field    Field    `json:"field"`
	Keywords []string `json:"keywords"`
}

// Layout describes where a template keeps its header row and data rows.
// Row and column indices are 1-based; SheetIndex is 0-based.
type Layout struct {
	Name         string      `json:"name"`
	SheetIndex   int         `json:"sheet_index"`
	HeaderRow    int         `json:"header_row"`
	FirstDataRow int         `json:"first_data_row"`
	MaxColumns   int         `json:"max_columns"`
	Rules        []FieldRule `json:"rules"`
}

// ColumnMap holds the resolved column of each field. It is built once by the
// header resolver and never modified afterwards.
type ColumnMap struct {
	columns map[Field]int
}

// NewColumnMap copies columns into a read-only map. Non-positive columns are
// treated as unresolved.
func NewColumnMap(columns map[Field]int) ColumnMap {
	m := ColumnMap{columns: make(map[Field]int, len(columns))}
	for field, col := range columns {
		if col > 0 {
			m.columns[field] = col
		}
	}
	return m
}

// Column returns the resolved column for field
func (m ColumnMap) Column(field Field) (int, bool) {
	col, ok := m.columns[field]
	return col, ok
}

// Resolved returns the number of fields that found a column
func (m ColumnMap) Resolved() int {
	return len(m.columns)
}

// Unresolved lists the fields without a column, in write order
func (m ColumnMap) Unresolved() []Field {
	missing := make([]Field, 0)
	for _, field := range Fields {
		if _, ok := m.columns[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// MarshalJSON renders every known field, unresolved ones as null.
func (m ColumnMap) MarshalJSON() ([]byte, error) {
	out := make(map[Field]*int, len(Fields))
	for _, field := range Fields {
		if col, ok := m.columns[field]; ok {
			c := col
			out[field] = &c
		} else {
			out[field] = nil
		}
	}
	return json.Marshal(out)
}
