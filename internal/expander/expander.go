// Package expander flattens product/option records into template rows.
package expander

import (
	"math"

	"quotefill/domain/catalog"
	"quotefill/domain/template"
	"quotefill/internal/errors"
	"quotefill/ports"
)

// Row is the set of values produced for one output row, keyed by field.
// Fields missing from Values are not written.
type Row struct {
	Number int
	Values map[template.Field]interface{}
}

// Rows returns the rows records expand into, in output order, starting at
// firstRow. Nothing is written.
func Rows(firstRow int, products []catalog.Product, shared catalog.SharedFields) []Row {
	rows := make([]Row, 0, catalog.TotalRows(products))
	cursor := firstRow
	for _, p := range products {
		title := p.DisplayTitle()
		if len(p.Options) == 0 {
			rows = append(rows, Row{
				Number: cursor,
				Values: map[template.Field]interface{}{
					template.FieldCategory:    shared.Category,
					template.FieldProductName: title,
					template.FieldSearchTag:   shared.SearchTags,
					template.FieldWeight:      shared.Weight,
					template.FieldSize:        shared.Size,
					template.FieldPrice:       cellNumber(p.EffectivePrice()),
				},
			})
			cursor++
			continue
		}

		for _, opt := range p.Options {
			opt1, opt2 := opt.Label1(), opt.Label2()
			rows = append(rows, Row{
				Number: cursor,
				Values: map[template.Field]interface{}{
					template.FieldCategory:    shared.Category,
					template.FieldProductName: catalog.CombinedName(title, opt1, opt2),
					template.FieldOption1:     opt1,
					template.FieldOption2:     opt2,
					template.FieldSearchTag:   shared.SearchTags,
					template.FieldWeight:      shared.Weight,
					template.FieldSize:        shared.Size,
					template.FieldPrice:       cellNumber(opt.EffectivePrice()),
				},
			})
			cursor++
		}
	}
	return rows
}

// Expand writes products into grid from firstRow on and returns the number
// of rows consumed. Fields without a resolved column are skipped; every row
// still advances the cursor.
func Expand(grid ports.Grid, columns template.ColumnMap, firstRow int, products []catalog.Product, shared catalog.SharedFields) (int, error) {
	if firstRow < 1 {
		return 0, errors.TemplateInvalid("first data row must be 1 or greater")
	}

	rows := Rows(firstRow, products, shared)
	for _, row := range rows {
		for _, field := range template.Fields {
			value, ok := row.Values[field]
			if !ok {
				continue
			}
			col, ok := columns.Column(field)
			if !ok {
				continue
			}
			if err := grid.SetCell(row.Number, col, value); err != nil {
				return 0, errors.Wrapf(err, "write %s at row %d", field, row.Number)
			}
		}
	}
	return len(rows), nil
}

// cellNumber stores whole amounts as integers so templates show 9900
// rather than 9900.0.
func cellNumber(v float64) interface{} {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}
