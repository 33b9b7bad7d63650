package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Column is a single named column with one inferred scalar type.
// Exactly one backing slice is populated, matching Type. Missing marks
// cells that were empty or unparseable in the source; the backing slice
// holds a zero value at those positions.
type Column struct {
	Name string
	Type ColumnType

	Ints    []int64
	Floats  []float64
	Bools   []bool
	Times   []time.Time
	Strings []string

	// Categorical coding: a dictionary of distinct values plus per-row
	// indices into it. Codes holds -1 for missing cells.
	Levels []string
	Codes  []int32

	Missing []bool

	// Width is the smallest numeric width in bits that round-trips the
	// column's value range (8/16/32/64 for ints, 32/64 for floats).
	// Zero until Shrink has run, and for non-numeric columns.
	Width int
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Type {
	case TypeInt:
		return len(c.Ints)
	case TypeFloat:
		return len(c.Floats)
	case TypeBool:
		return len(c.Bools)
	case TypeDatetime:
		return len(c.Times)
	case TypeCategorical:
		return len(c.Codes)
	default:
		return len(c.Strings)
	}
}

// IsMissing reports whether the cell at row i is missing.
func (c *Column) IsMissing(i int) bool {
	return len(c.Missing) > i && c.Missing[i]
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// Cell renders the value at row i as a string. Missing cells render empty.
func (c *Column) Cell(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	switch c.Type {
	case TypeInt:
		return strconv.FormatInt(c.Ints[i], 10)
	case TypeFloat:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case TypeBool:
		return strconv.FormatBool(c.Bools[i])
	case TypeDatetime:
		return c.Times[i].Format(time.RFC3339)
	case TypeCategorical:
		code := c.Codes[i]
		if code < 0 || int(code) >= len(c.Levels) {
			return ""
		}
		return c.Levels[code]
	default:
		return c.Strings[i]
	}
}

// Float returns the value at row i as a float64 for numeric columns.
// The second result is false for missing cells and non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.IsMissing(i) {
		return 0, false
	}
	switch c.Type {
	case TypeInt:
		return float64(c.Ints[i]), true
	case TypeFloat:
		return c.Floats[i], true
	default:
		return 0, false
	}
}

// Label returns the value at row i as a discrete label for
// categorical-like columns. The second result is false for missing cells
// and columns that are not categorical-like.
func (c *Column) Label(i int) (string, bool) {
	if c.IsMissing(i) || !c.Type.IsCategoricalLike() {
		return "", false
	}
	return c.Cell(i), true
}

// Floats64 returns all non-missing values of a numeric column as float64s,
// preserving row order.
func (c *Column) Floats64() []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// UniqueCount returns the number of distinct non-missing values.
func (c *Column) UniqueCount() int {
	if c.Type == TypeCategorical {
		return len(c.Levels)
	}
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			seen[c.Cell(i)] = struct{}{}
		}
	}
	return len(seen)
}

// MemoryBytes estimates the in-memory size of the column's backing data.
func (c *Column) MemoryBytes() int64 {
	var total int64
	switch c.Type {
	case TypeInt, TypeFloat:
		total = int64(c.Len()) * 8
	case TypeBool:
		total = int64(c.Len())
	case TypeDatetime:
		total = int64(c.Len()) * 24
	case TypeCategorical:
		total = int64(c.Len()) * 4
		for _, lv := range c.Levels {
			total += int64(len(lv)) + 16
		}
	default:
		for _, s := range c.Strings {
			total += int64(len(s)) + 16
		}
	}
	return total + int64(len(c.Missing))
}

// clone returns a deep copy of the column.
func (c *Column) clone() Column {
	out := *c
	out.Ints = append([]int64(nil), c.Ints...)
	out.Floats = append([]float64(nil), c.Floats...)
	out.Bools = append([]bool(nil), c.Bools...)
	out.Times = append([]time.Time(nil), c.Times...)
	out.Strings = append([]string(nil), c.Strings...)
	out.Levels = append([]string(nil), c.Levels...)
	out.Codes = append([]int32(nil), c.Codes...)
	out.Missing = append([]bool(nil), c.Missing...)
	return out
}

// Table is the loader's output: an ordered sequence of named columns with
// a uniform row count. Row order matches the source. Duplicate rows are
// allowed; they are a quality signal, not a violation.
type Table struct {
	Columns []Column
}

// NumRows returns the row count (uniform across columns).
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// Names returns the column names in source order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnsOfType returns the names of columns matching the predicate.
func (t *Table) ColumnsOfType(match func(ColumnType) bool) []string {
	var names []string
	for i := range t.Columns {
		if match(t.Columns[i].Type) {
			names = append(names, t.Columns[i].Name)
		}
	}
	return names
}

// NumericColumns returns the names of int and float columns.
func (t *Table) NumericColumns() []string {
	return t.ColumnsOfType(ColumnType.IsNumeric)
}

// CategoricalColumns returns the names of string, categorical and bool columns.
func (t *Table) CategoricalColumns() []string {
	return t.ColumnsOfType(ColumnType.IsCategoricalLike)
}

// DatetimeColumns returns the names of datetime columns.
func (t *Table) DatetimeColumns() []string {
	return t.ColumnsOfType(func(ct ColumnType) bool { return ct == TypeDatetime })
}

// Clone returns a deep copy of the table. Feature engineering operates on
// a clone so the session's source table stays intact.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i := range t.Columns {
		out.Columns[i] = t.Columns[i].clone()
	}
	return out
}

// AddColumn appends a column. The column's row count must match the table.
func (t *Table) AddColumn(c Column) error {
	if len(t.Columns) > 0 && c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.NumRows())
	}
	if _, exists := t.Column(c.Name); exists {
		return fmt.Errorf("column %q already exists", c.Name)
	}
	t.Columns = append(t.Columns, c)
	return nil
}

// DropColumns removes the named columns. Unknown names are ignored.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
}

// MemoryBytes estimates the in-memory size of all columns.
func (t *Table) MemoryBytes() int64 {
	var total int64
	for i := range t.Columns {
		total += t.Columns[i].MemoryBytes()
	}
	return total
}

// Row renders row i as a slice of cell strings in column order.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j := range t.Columns {
		out[j] = t.Columns[j].Cell(i)
	}
	return out
}

// DuplicateRows counts rows whose rendered cells exactly match an
// earlier row.
func (t *Table) DuplicateRows() int {
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	for i := 0; i < t.NumRows(); i++ {
		key := joinRowKey(t.Row(i))
		if _, ok := seen[key]; ok {
			dups++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dups
}

// joinRowKey joins cells with an unlikely separator for duplicate hashing.
func joinRowKey(cells []string) string {
	n := 0
	for _, c := range cells {
		n += len(c) + 1
	}
	b := make([]byte, 0, n)
	for _, c := range cells {
		b = append(b, c...)
		b = append(b, 0x1f)
	}
	return string(b)
}
