package resolver_test

import (
	"fmt"
	"testing"

	"quotefill/domain/template"
	"quotefill/internal/layout"
	"quotefill/internal/resolver"
	"quotefill/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "한 개 단품 포장 사이즈", resolver.Normalize("  한 개 단품\n포장 사이즈 \n"))
	assert.Equal(t, "a b", resolver.Normalize("a\r\nb"))
	// decomposed jamo (as saved by some macOS tools) compose to the same text
	assert.Equal(t, "색상", resolver.Normalize("\u1109\u1162\u11a8\u1109\u1161\u11bc"))
}

func TestScanHeadersLastDuplicateWins(t *testing.T) {
	grid := testkit.NewTemplateGrid(5, "상품명", "", "옵션1", "상품명\n")

	index, err := resolver.ScanHeaders(grid, 5, 100)
	require.NoError(t, err)

	assert.Equal(t, 2, index.Len())
	col, ok := index.Column("상품명")
	require.True(t, ok)
	assert.Equal(t, 4, col)

	headers := index.Headers()
	assert.Equal(t, "상품명", headers[0].Text, "discovery order follows first appearance")
	assert.Equal(t, 4, headers[0].Column)
}

func TestScanHeadersRespectsBound(t *testing.T) {
	grid := testkit.NewMemGrid()
	grid.Put(5, 3, "카테고리")
	grid.Put(5, 150, "상품명")

	index, err := resolver.ScanHeaders(grid, 5, 100)
	require.NoError(t, err)
	_, ok := index.Column("상품명")
	assert.False(t, ok)
	col, ok := index.Column("카테고리")
	assert.True(t, ok)
	assert.Equal(t, 3, col)
}

func TestScanHeadersNumericHeader(t *testing.T) {
	grid := testkit.NewMemGrid()
	grid.Put(1, 1, 2024.0)

	index, err := resolver.ScanHeaders(grid, 1, 5)
	require.NoError(t, err)
	col, ok := index.Column("2024")
	assert.True(t, ok)
	assert.Equal(t, 1, col)
}

func TestScanHeadersInvalidRow(t *testing.T) {
	_, err := resolver.ScanHeaders(testkit.NewMemGrid(), 0, 10)
	assert.Error(t, err)
}

func TestFindKeywordPriority(t *testing.T) {
	index := resolver.NewHeaderIndex()
	index.Add("색상", 2)
	index.Add("옵션1(색상)", 7)

	// 옵션1 outranks 색상 even though the 색상 header is discovered first
	col, ok := index.Find([]string{"옵션1", "색상"})
	require.True(t, ok)
	assert.Equal(t, 7, col)

	col, ok = index.Find([]string{"없음", "색상"})
	require.True(t, ok)
	assert.Equal(t, 2, col, "first header in discovery order containing the keyword")

	_, ok = index.Find([]string{"무게"})
	assert.False(t, ok)

	_, ok = index.Find([]string{""})
	assert.False(t, ok, "empty keywords never match")
}

func TestResolveSpecExampleHeaders(t *testing.T) {
	grid := testkit.NewTemplateGrid(5,
		"카테고리", "검색태그", "상품명", "옵션1(색상)", "한 개 단품 포장 사이즈", "한 개 단품 포장 무게")

	index, columns, err := resolver.ResolveGrid(grid, layout.Default())
	require.NoError(t, err)
	assert.Equal(t, 6, index.Len())

	expect := map[template.Field]int{
		template.FieldCategory:    1,
		template.FieldSearchTag:   2,
		template.FieldProductName: 3,
		template.FieldOption1:     4,
		template.FieldOption2:     5, // 사이즈 substring of the package size header
		template.FieldSize:        5,
		template.FieldWeight:      6,
	}
	for field, want := range expect {
		col, ok := columns.Column(field)
		require.True(t, ok, field)
		assert.Equal(t, want, col, field)
	}
	_, ok := columns.Column(template.FieldPrice)
	assert.False(t, ok)
	assert.Equal(t, []template.Field{template.FieldPrice}, columns.Unresolved())
}

func TestResolveNoMatchingHeaders(t *testing.T) {
	grid := testkit.NewTemplateGrid(5, "A", "B", "C")
	_, columns, err := resolver.ResolveGrid(grid, layout.Default())
	require.NoError(t, err)
	assert.Equal(t, 0, columns.Resolved())
	assert.Equal(t, template.Fields, columns.Unresolved())
}

func TestResolveDuplicateRuleFirstMatchDecides(t *testing.T) {
	index := resolver.NewHeaderIndex()
	index.Add("판매가", 3)
	index.Add("공급가", 4)

	columns := resolver.Resolve(index, []template.FieldRule{
		{Field: template.FieldPrice, Keywords: []string{"정가"}},
		{Field: template.FieldPrice, Keywords: []string{"공급가"}},
		{Field: template.FieldPrice, Keywords: []string{"판매가"}},
	})
	col, ok := columns.Column(template.FieldPrice)
	require.True(t, ok)
	assert.Equal(t, 4, col)
}

func TestResolveIsDeterministic(t *testing.T) {
	headers := make([]string, 40)
	for i := range headers {
		headers[i] = fmt.Sprintf("열%d 색상 사이즈", i)
	}
	grid := testkit.NewTemplateGrid(5, headers...)

	_, first, err := resolver.ResolveGrid(grid, layout.Default())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, again, err := resolver.ResolveGrid(grid, layout.Default())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	col, _ := first.Column(template.FieldOption1)
	assert.Equal(t, 1, col)
}
