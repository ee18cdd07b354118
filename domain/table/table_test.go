package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumn_RowCountMismatch(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("a", []interface{}{1.0, 2.0, 3.0}))
	err := tbl.AddColumn("b", []interface{}{1.0})
	assert.Error(t, err)
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"a"}, tbl.Columns())
}

func TestCellString_MissingForms(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, Missing},
		{"nan", math.NaN(), Missing},
		{"empty string", "", Missing},
		{"float", 2.5, "2.5"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"string", "north", "north"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CellString(tc.in))
		})
	}
}

func TestCellFloat_NonNumeric(t *testing.T) {
	assert.True(t, math.IsNaN(CellFloat(nil)))
	assert.True(t, math.IsNaN(CellFloat("north")))
	assert.Equal(t, 1.5, CellFloat("1.5"))
	assert.Equal(t, 1.0, CellFloat(true))
}

func TestDistinctStrings_SortedWithMissing(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("region", []interface{}{"south", "north", nil, "north"}))
	assert.Equal(t, []string{Missing, "north", "south"}, tbl.DistinctStrings("region"))
	assert.Equal(t, 1, tbl.MissingCount("region"))
}

func TestIsNumeric(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("age", []interface{}{34.0, "52", nil}))
	require.NoError(t, tbl.AddColumn("lang", []interface{}{"english", "spanish", nil}))
	require.NoError(t, tbl.AddColumn("empty", []interface{}{nil, nil, nil}))
	assert.True(t, tbl.IsNumeric("age"))
	assert.False(t, tbl.IsNumeric("lang"))
	assert.False(t, tbl.IsNumeric("empty"))
}

func TestSubsetAndSelect(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("a", []interface{}{1.0, 2.0, 3.0}))
	require.NoError(t, tbl.AddColumn("b", []interface{}{"x", "y", "z"}))

	sub := tbl.Subset([]int{2, 0})
	assert.Equal(t, 2, sub.NumRows())
	assert.Equal(t, 3.0, sub.Cell("a", 0))
	assert.Equal(t, "x", sub.Cell("b", 1))

	sel := tbl.Select("b", "missing")
	assert.Equal(t, []string{"b"}, sel.Columns())
}

func TestCopy_Independent(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("a", []interface{}{1.0, 2.0}))
	cp := tbl.Copy()
	require.NoError(t, cp.SetCell("a", 0, 9.0))
	assert.Equal(t, 1.0, tbl.Cell("a", 0))
}

func TestAppendRow_PadsNewColumns(t *testing.T) {
	tbl := New()
	tbl.AppendRow(map[string]interface{}{"a": 1.0}, []string{"a"})
	tbl.AppendRow(map[string]interface{}{"a": 2.0, "b": "late"}, []string{"a", "b"})

	assert.Equal(t, 2, tbl.NumRows())
	assert.Nil(t, tbl.Cell("b", 0))
	assert.Equal(t, "late", tbl.Cell("b", 1))
}

func TestAppendTable_UnionsColumns(t *testing.T) {
	left := New()
	left.AppendRow(map[string]interface{}{"a": 1.0}, []string{"a"})
	right := New()
	right.AppendRow(map[string]interface{}{"b": 2.0}, []string{"b"})

	left.AppendTable(right)
	assert.Equal(t, 2, left.NumRows())
	assert.Nil(t, left.Cell("b", 0))
	assert.Equal(t, 2.0, left.Cell("b", 1))
	assert.Nil(t, left.Cell("a", 1))
}

func TestReorder_KeepsUnnamedAtEnd(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("c", []interface{}{1.0}))
	require.NoError(t, tbl.AddColumn("a", []interface{}{2.0}))
	require.NoError(t, tbl.AddColumn("b", []interface{}{3.0}))

	tbl.Reorder([]string{"a", "nope", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())
}
