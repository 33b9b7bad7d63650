package dataset

import "math"

// categoricalRatio is the distinct-to-total threshold below which a
// string column is converted to categorical coding.
const categoricalRatio = 0.5

// Shrink is the memory-reduction pass attached after loading. It
// downcasts numeric columns to the smallest width that round-trips
// their value range and dictionary-codes low-cardinality string
// columns. The transform is lossless and idempotent: applying it to its
// own output changes neither values nor declared types.
func Shrink(t *Table) *Table {
	for i := range t.Columns {
		col := &t.Columns[i]
		switch col.Type {
		case TypeInt:
			col.Width = intWidth(col)
		case TypeFloat:
			col.Width = floatWidth(col)
		case TypeString:
			if shouldCode(col) {
				codeColumn(col)
			}
		}
	}
	return t
}

// intWidth returns the smallest int width in bits holding the column's range.
func intWidth(col *Column) int {
	var lo, hi int64
	first := true
	for i, v := range col.Ints {
		if col.IsMissing(i) {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	switch {
	case first:
		return 8 // no values; narrowest width is safe
	case lo >= math.MinInt8 && hi <= math.MaxInt8:
		return 8
	case lo >= math.MinInt16 && hi <= math.MaxInt16:
		return 16
	case lo >= math.MinInt32 && hi <= math.MaxInt32:
		return 32
	default:
		return 64
	}
}

// floatWidth returns 32 when every value survives a float32 round trip.
func floatWidth(col *Column) int {
	for i, v := range col.Floats {
		if col.IsMissing(i) {
			continue
		}
		if float64(float32(v)) != v {
			return 64
		}
	}
	return 32
}

// shouldCode reports whether a string column is low-cardinality enough
// for dictionary coding.
func shouldCode(col *Column) bool {
	n := col.Len()
	if n == 0 {
		return false
	}
	return float64(col.UniqueCount())/float64(n) < categoricalRatio
}

// codeColumn converts a string column to categorical in place. Levels
// keep first-appearance order; missing cells get code -1.
func codeColumn(col *Column) {
	index := make(map[string]int32)
	var levels []string
	codes := make([]int32, len(col.Strings))

	for i, s := range col.Strings {
		if col.IsMissing(i) {
			codes[i] = -1
			continue
		}
		code, ok := index[s]
		if !ok {
			code = int32(len(levels))
			index[s] = code
			levels = append(levels, s)
		}
		codes[i] = code
	}

	col.Type = TypeCategorical
	col.Strings = nil
	col.Levels = levels
	col.Codes = codes
}
