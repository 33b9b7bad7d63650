package feature

import (
	"fmt"
	"sort"

	"github.com/samhitalabs/sync/internal/dataset"
)

// maxOneHotLevels caps one-hot expansion so a high-cardinality column
// cannot explode the table width.
const maxOneHotLevels = 50

// LabelEncode appends "<column>_encoded" mapping each level to its index
// in sorted level order. Missing cells stay missing.
func LabelEncode(t *dataset.Table, column string) error {
	col, levels, err := discreteLevels(t, column)
	if err != nil {
		return err
	}

	index := make(map[string]int64, len(levels))
	for i, l := range levels {
		index[l] = int64(i)
	}

	n := col.Len()
	out := dataset.Column{
		Name:    column + "_encoded",
		Type:    dataset.TypeInt,
		Ints:    make([]int64, n),
		Missing: make([]bool, n),
		Width:   64,
	}
	for i := 0; i < n; i++ {
		label, ok := col.Label(i)
		if !ok {
			out.Missing[i] = true
			continue
		}
		out.Ints[i] = index[label]
	}
	return t.AddColumn(out)
}

// OneHotEncode appends one 0/1 column per level, named "<column>_<level>"
// in sorted level order. Missing rows get 0 in every indicator.
func OneHotEncode(t *dataset.Table, column string) error {
	col, levels, err := discreteLevels(t, column)
	if err != nil {
		return err
	}
	if len(levels) > maxOneHotLevels {
		return fmt.Errorf("column %q has %d levels, one-hot limit is %d", column, len(levels), maxOneHotLevels)
	}

	n := col.Len()
	for _, level := range levels {
		out := dataset.Column{
			Name:    fmt.Sprintf("%s_%s", column, level),
			Type:    dataset.TypeInt,
			Ints:    make([]int64, n),
			Missing: make([]bool, n),
			Width:   8,
		}
		for i := 0; i < n; i++ {
			if label, ok := col.Label(i); ok && label == level {
				out.Ints[i] = 1
			}
		}
		if err := t.AddColumn(out); err != nil {
			return err
		}
	}
	return nil
}

// FrequencyEncode appends "<column>_freq" mapping each level to its
// occurrence count.
func FrequencyEncode(t *dataset.Table, column string) error {
	col, _, err := discreteLevels(t, column)
	if err != nil {
		return err
	}

	n := col.Len()
	counts := make(map[string]int64)
	for i := 0; i < n; i++ {
		if label, ok := col.Label(i); ok {
			counts[label]++
		}
	}

	out := dataset.Column{
		Name:    column + "_freq",
		Type:    dataset.TypeInt,
		Ints:    make([]int64, n),
		Missing: make([]bool, n),
		Width:   64,
	}
	for i := 0; i < n; i++ {
		label, ok := col.Label(i)
		if !ok {
			out.Missing[i] = true
			continue
		}
		out.Ints[i] = counts[label]
	}
	return t.AddColumn(out)
}

// discreteLevels resolves a categorical-like column and its distinct
// levels in sorted order.
func discreteLevels(t *dataset.Table, column string) (*dataset.Column, []string, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, nil, fmt.Errorf("unknown column %q", column)
	}
	if !col.Type.IsCategoricalLike() {
		return nil, nil, fmt.Errorf("column %q is not categorical", column)
	}

	seen := make(map[string]struct{})
	var levels []string
	for i := 0; i < col.Len(); i++ {
		label, present := col.Label(i)
		if !present {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		levels = append(levels, label)
	}
	if len(levels) == 0 {
		return nil, nil, fmt.Errorf("column %q has no values", column)
	}
	sort.Strings(levels)
	return col, levels, nil
}
