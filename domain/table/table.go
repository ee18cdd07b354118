package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Missing is the sentinel string for absent or non-numeric-NaN cells.
// String casting a missing cell always yields this value, so partition keys
// stay hashable and comparable across mixed-type columns.
const Missing = "nan"

// Table is an ordered collection of named columns. Every column holds one
// cell per row; cells are string, float64, int, bool, or nil (missing).
// All tables participating in one report share identical row count and
// row alignment.
type Table struct {
	names []string
	cols  map[string][]interface{}
	nrows int
}

// New creates an empty table.
func New() *Table {
	return &Table{cols: make(map[string][]interface{})}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.nrows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.names)
}

// Columns returns column names in their current order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// AddColumn appends a column. The cell count must match the current row
// count unless the table is empty, in which case it defines it.
func (t *Table) AddColumn(name string, cells []interface{}) error {
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(t.names) > 0 && len(cells) != t.nrows {
		return fmt.Errorf("column %q has %d cells, table has %d rows", name, len(cells), t.nrows)
	}
	stored := make([]interface{}, len(cells))
	copy(stored, cells)
	t.names = append(t.names, name)
	t.cols[name] = stored
	t.nrows = len(stored)
	return nil
}

// SetColumn adds the column, replacing any existing column of that name
// while keeping its position.
func (t *Table) SetColumn(name string, cells []interface{}) error {
	if _, ok := t.cols[name]; !ok {
		return t.AddColumn(name, cells)
	}
	if len(cells) != t.nrows {
		return fmt.Errorf("column %q has %d cells, table has %d rows", name, len(cells), t.nrows)
	}
	stored := make([]interface{}, len(cells))
	copy(stored, cells)
	t.cols[name] = stored
	return nil
}

// DropColumn removes a column if present.
func (t *Table) DropColumn(name string) {
	if _, ok := t.cols[name]; !ok {
		return
	}
	delete(t.cols, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
	if len(t.names) == 0 {
		t.nrows = 0
	}
}

// Cell returns the raw cell at (row, column).
func (t *Table) Cell(name string, row int) interface{} {
	col, ok := t.cols[name]
	if !ok || row < 0 || row >= len(col) {
		return nil
	}
	return col[row]
}

// SetCell overwrites the cell at (row, column). The column must exist.
func (t *Table) SetCell(name string, row int, v interface{}) error {
	col, ok := t.cols[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if row < 0 || row >= len(col) {
		return fmt.Errorf("row %d out of range for column %q", row, name)
	}
	col[row] = v
	return nil
}

// Raw returns the backing cells of a column (not a copy).
func (t *Table) Raw(name string) ([]interface{}, bool) {
	col, ok := t.cols[name]
	return col, ok
}

// Strings returns the column string-cast, with Missing for absent cells.
func (t *Table) Strings(name string) []string {
	col := t.cols[name]
	out := make([]string, len(col))
	for i, v := range col {
		out[i] = CellString(v)
	}
	return out
}

// Floats returns the column numeric-cast, with NaN for non-numeric cells.
func (t *Table) Floats(name string) []float64 {
	col := t.cols[name]
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = CellFloat(v)
	}
	return out
}

// DistinctStrings returns the sorted distinct string-cast values of a column.
func (t *Table) DistinctStrings(name string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range t.Strings(name) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// MissingCount returns the number of missing cells in a column.
func (t *Table) MissingCount(name string) int {
	n := 0
	for _, s := range t.Strings(name) {
		if s == Missing {
			n++
		}
	}
	return n
}

// IsNumeric reports whether every non-missing cell of the column parses as
// a number. An all-missing column is not numeric.
func (t *Table) IsNumeric(name string) bool {
	col, ok := t.cols[name]
	if !ok {
		return false
	}
	seenValue := false
	for _, v := range col {
		s := CellString(v)
		if s == Missing {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		seenValue = true
	}
	return seenValue
}

// Subset returns a new table containing the given rows in order.
func (t *Table) Subset(rows []int) *Table {
	out := New()
	for _, name := range t.names {
		src := t.cols[name]
		cells := make([]interface{}, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, src[r])
		}
		out.names = append(out.names, name)
		out.cols[name] = cells
	}
	out.nrows = len(rows)
	return out
}

// Select returns a new table with only the named columns, in the given
// order. Unknown names are skipped.
func (t *Table) Select(names ...string) *Table {
	out := New()
	for _, name := range names {
		src, ok := t.cols[name]
		if !ok {
			continue
		}
		cells := make([]interface{}, len(src))
		copy(cells, src)
		out.names = append(out.names, name)
		out.cols[name] = cells
		out.nrows = len(cells)
	}
	return out
}

// Copy returns a deep copy.
func (t *Table) Copy() *Table {
	return t.Select(t.names...)
}

// AppendRow appends one row. Columns absent from the row get a missing
// cell; row keys absent from the table become new columns back-filled with
// missing cells. This keeps concatenation rectangular even when metric key
// sets drift.
func (t *Table) AppendRow(row map[string]interface{}, order []string) {
	for _, name := range order {
		if _, ok := t.cols[name]; !ok {
			padded := make([]interface{}, t.nrows)
			t.names = append(t.names, name)
			t.cols[name] = padded
		}
	}
	for _, name := range t.names {
		v, ok := row[name]
		if !ok {
			v = nil
		}
		t.cols[name] = append(t.cols[name], v)
	}
	t.nrows++
}

// AppendTable appends every row of other. Column sets are unioned; cells
// missing on either side are filled with the missing sentinel value.
func (t *Table) AppendTable(other *Table) {
	for i := 0; i < other.nrows; i++ {
		row := make(map[string]interface{}, other.NumCols())
		for _, name := range other.names {
			row[name] = other.cols[name][i]
		}
		t.AppendRow(row, other.names)
	}
}

// Reorder rearranges columns to the given order. Names not present are
// skipped; columns not named keep their relative order at the end.
func (t *Table) Reorder(order []string) {
	var next []string
	used := make(map[string]bool)
	for _, name := range order {
		if _, ok := t.cols[name]; ok {
			next = append(next, name)
			used[name] = true
		}
	}
	for _, name := range t.names {
		if !used[name] {
			next = append(next, name)
		}
	}
	t.names = next
}

// CellString casts a cell to its canonical string form. Missing values
// (nil, NaN) become the Missing sentinel.
func CellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return Missing
	case string:
		if x == "" {
			return Missing
		}
		return x
	case float64:
		if math.IsNaN(x) {
			return Missing
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return CellString(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// CellFloat casts a cell to float64, returning NaN for missing or
// non-numeric values.
func CellFloat(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
