package layout

import (
	"os"
	"path/filepath"
	"testing"

	"quotefill/domain/template"
	"quotefill/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout(t *testing.T) {
	l := Default()

	assert.Equal(t, "coupang-quotation", l.Name)
	assert.Equal(t, 1, l.SheetIndex)
	assert.Equal(t, 5, l.HeaderRow)
	assert.Equal(t, 9, l.FirstDataRow)
	assert.Equal(t, 100, l.MaxColumns)
	require.Len(t, l.Rules, len(template.Fields))

	byField := make(map[template.Field][]string)
	for _, r := range l.Rules {
		byField[r.Field] = r.Keywords
	}
	assert.Equal(t, []string{"옵션1", "색상", "패션의류"}, byField[template.FieldOption1])
	assert.Equal(t, []string{"옵션2", "사이즈"}, byField[template.FieldOption2])
	assert.Equal(t, []string{"사이즈", "포장 사이즈"}, byField[template.FieldSize])
	assert.Equal(t, []string{"공급가", "판매가"}, byField[template.FieldPrice])
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), back)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: wholesale
sheet_index: 0
header_row: 1
first_data_row: 2
fields:
  - field: product_name
    keywords: ["상품\n이름", 품명]
`), 0o644))

	l, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, l.SheetIndex)
	assert.Equal(t, 100, l.MaxColumns)
	assert.Equal(t, []string{"상품 이름", "품명"}, l.Rules[0].Keywords)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	l, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), l)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestParseRejectsInvalidLayouts(t *testing.T) {
	tests := map[string]string{
		"data row before header": `
header_row: 5
first_data_row: 5
fields: [{field: category, keywords: [카테고리]}]`,
		"unknown field": `
header_row: 5
first_data_row: 9
fields: [{field: colour, keywords: [색상]}]`,
		"duplicate field": `
header_row: 5
first_data_row: 9
fields:
  - {field: category, keywords: [카테고리]}
  - {field: category, keywords: [분류]}`,
		"no keywords": `
header_row: 5
first_data_row: 9
fields: [{field: category, keywords: []}]`,
		"blank keyword": `
header_row: 5
first_data_row: 9
fields: [{field: category, keywords: ["  "]}]`,
		"no fields": `
header_row: 5
first_data_row: 9`,
		"negative sheet": `
sheet_index: -1
header_row: 5
first_data_row: 9
fields: [{field: category, keywords: [카테고리]}]`,
		"not yaml": `header_row: [`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errors.CodeTemplateInvalid, errors.GetCode(err))
		})
	}
}
