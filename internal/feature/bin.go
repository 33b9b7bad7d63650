package feature

import (
	"fmt"
	"sort"

	"github.com/samhitalabs/sync/internal/analysis"
	"github.com/samhitalabs/sync/internal/dataset"
)

const maxBins = 100

// BinEqualWidth appends "<column>_binned" assigning each value the index
// of its equal-width interval, 0 through bins-1.
func BinEqualWidth(t *dataset.Table, column string, bins int) error {
	col, err := binnableColumn(t, column, bins)
	if err != nil {
		return err
	}

	vals := col.Floats64()
	if len(vals) == 0 {
		return fmt.Errorf("column %q has no values", column)
	}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return fmt.Errorf("column %q is constant", column)
	}

	width := (max - min) / float64(bins)
	return t.AddColumn(assignBins(col, column, func(v float64) int64 {
		idx := int64((v - min) / width)
		if idx >= int64(bins) {
			idx = int64(bins) - 1
		}
		return idx
	}))
}

// BinEqualFrequency appends "<column>_binned" using quantile edges so
// each bin holds roughly the same number of rows. Duplicate edges from
// repeated values are merged, which can yield fewer bins than requested.
func BinEqualFrequency(t *dataset.Table, column string, bins int) error {
	col, err := binnableColumn(t, column, bins)
	if err != nil {
		return err
	}

	vals := col.Floats64()
	if len(vals) == 0 {
		return fmt.Errorf("column %q has no values", column)
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if sorted[0] == sorted[len(sorted)-1] {
		return fmt.Errorf("column %q is constant", column)
	}

	// Interior edges at the 1/bins .. (bins-1)/bins quantiles, deduplicated.
	var edges []float64
	for i := 1; i < bins; i++ {
		q := analysis.Quantile(sorted, float64(i)/float64(bins))
		if len(edges) == 0 || q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}

	// SearchFloat64s puts values equal to an edge in the bin below it.
	return t.AddColumn(assignBins(col, column, func(v float64) int64 {
		return int64(sort.SearchFloat64s(edges, v))
	}))
}

func binnableColumn(t *dataset.Table, column string, bins int) (*dataset.Column, error) {
	if bins < 2 || bins > maxBins {
		return nil, fmt.Errorf("bins must be between 2 and %d, got %d", maxBins, bins)
	}
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	if !col.Type.IsNumeric() {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}
	return col, nil
}

func assignBins(col *dataset.Column, column string, bin func(float64) int64) dataset.Column {
	n := col.Len()
	out := dataset.Column{
		Name:    column + "_binned",
		Type:    dataset.TypeInt,
		Ints:    make([]int64, n),
		Missing: make([]bool, n),
		Width:   8,
	}
	for i := 0; i < n; i++ {
		v, present := col.Float(i)
		if !present {
			out.Missing[i] = true
			continue
		}
		out.Ints[i] = bin(v)
	}
	return out
}

// DropColumns removes the named columns, erroring on unknown names so a
// typo does not silently succeed.
func DropColumns(t *dataset.Table, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns named")
	}
	for _, name := range columns {
		if _, ok := t.Column(name); !ok {
			return fmt.Errorf("unknown column %q", name)
		}
	}
	if len(columns) >= t.NumCols() {
		return fmt.Errorf("cannot drop every column")
	}
	t.DropColumns(columns...)
	return nil
}
