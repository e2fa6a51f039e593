// Package layout loads template layouts (header row, first data row and the
// field keyword rules) from YAML so new templates need no code changes.
package layout

import (
	_ "embed"
	"fmt"
	"os"

	"quotefill/domain/template"
	"quotefill/internal/errors"
	"quotefill/internal/resolver"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type fileRule struct {
	Field    string   `yaml:"field"`
	Keywords []string `yaml:"keywords"`
}

type fileLayout struct {
	Name         string     `yaml:"name"`
	SheetIndex   *int       `yaml:"sheet_index"`
	HeaderRow    int        `yaml:"header_row"`
	FirstDataRow int        `yaml:"first_data_row"`
	MaxColumns   int        `yaml:"max_columns"`
	Fields       []fileRule `yaml:"fields"`
}

// Default returns the built-in Coupang quotation layout
func Default() template.Layout {
	l, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded layout is invalid: %v", err))
	}
	return l
}

// Load reads a layout file. An empty path yields the default layout.
func Load(path string) (template.Layout, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return template.Layout{}, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read layout %s: %w", path, err))
	}
	l, err := Parse(data)
	if err != nil {
		return template.Layout{}, errors.Wrapf(err, "layout %s", path)
	}
	return l, nil
}

// Parse decodes and validates a YAML layout
func Parse(data []byte) (template.Layout, error) {
	var f fileLayout
	if err := yaml.Unmarshal(data, &f); err != nil {
		return template.Layout{}, errors.TemplateInvalid(fmt.Sprintf("decode layout: %v", err))
	}

	l := template.Layout{
		Name:         f.Name,
		SheetIndex:   1,
		HeaderRow:    f.HeaderRow,
		FirstDataRow: f.FirstDataRow,
		MaxColumns:   f.MaxColumns,
	}
	if f.SheetIndex != nil {
		l.SheetIndex = *f.SheetIndex
	}
	if l.MaxColumns == 0 {
		l.MaxColumns = resolver.DefaultMaxColumns
	}
	for _, r := range f.Fields {
		rule := template.FieldRule{Field: template.Field(r.Field)}
		for _, kw := range r.Keywords {
			rule.Keywords = append(rule.Keywords, resolver.Normalize(kw))
		}
		l.Rules = append(l.Rules, rule)
	}

	if err := Validate(l); err != nil {
		return template.Layout{}, err
	}
	return l, nil
}

// Validate checks row indices and rules
func Validate(l template.Layout) error {
	if l.SheetIndex < 0 {
		return errors.TemplateInvalid("sheet_index must not be negative")
	}
	if l.HeaderRow < 1 {
		return errors.TemplateInvalid("header_row must be 1 or greater")
	}
	if l.FirstDataRow <= l.HeaderRow {
		return errors.TemplateInvalid(fmt.Sprintf("first_data_row (%d) must come after header_row (%d)", l.FirstDataRow, l.HeaderRow))
	}
	if l.MaxColumns < 1 {
		return errors.TemplateInvalid("max_columns must be 1 or greater")
	}
	if len(l.Rules) == 0 {
		return errors.TemplateInvalid("layout has no field rules")
	}

	seen := make(map[template.Field]bool, len(l.Rules))
	for _, rule := range l.Rules {
		if !rule.Field.Valid() {
			return errors.TemplateInvalid(fmt.Sprintf("unknown field %q", rule.Field))
		}
		if seen[rule.Field] {
			return errors.TemplateInvalid(fmt.Sprintf("field %q listed twice", rule.Field))
		}
		seen[rule.Field] = true
		if len(rule.Keywords) == 0 {
			return errors.TemplateInvalid(fmt.Sprintf("field %q has no keywords", rule.Field))
		}
		for _, kw := range rule.Keywords {
			if kw == "" {
				return errors.TemplateInvalid(fmt.Sprintf("field %q has an empty keyword", rule.Field))
			}
		}
	}
	return nil
}

// Marshal renders a layout back to YAML
func Marshal(l template.Layout) ([]byte, error) {
	sheet := l.SheetIndex
	f := fileLayout{
		Name:         l.Name,
		SheetIndex:   &sheet,
		HeaderRow:    l.HeaderRow,
		FirstDataRow: l.FirstDataRow,
		MaxColumns:   l.MaxColumns,
	}
	for _, rule := range l.Rules {
		f.Fields = append(f.Fields, fileRule{Field: string(rule.Field), Keywords: rule.Keywords})
	}
	return yaml.Marshal(f)
}
