package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/samhitalabs/sync/internal/dataset"
)

// NumericSummary holds descriptive statistics for one numeric column.
type NumericSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis
	Variance float64 `json:"variance"`
	// CV is the coefficient of variation (std/mean); nil when mean is zero.
	CV    *float64 `json:"cv,omitempty"`
	Range float64  `json:"range"`
}

// CategoricalSummary holds value-count statistics for one discrete column.
type CategoricalSummary struct {
	Column        string  `json:"column"`
	Unique        int     `json:"unique"`
	MostFrequent  string  `json:"mostFrequent"`
	MostCount     int     `json:"mostCount"`
	LeastFrequent string  `json:"leastFrequent"`
	LeastCount    int     `json:"leastCount"`
	Entropy       float64 `json:"entropy"`
}

// DatetimeSummary holds range statistics for one datetime column.
type DatetimeSummary struct {
	Column    string    `json:"column"`
	Min       time.Time `json:"min"`
	Max       time.Time `json:"max"`
	RangeDays int       `json:"rangeDays"`
}

// Summary groups per-type column statistics the way downstream panels
// consume them.
type Summary struct {
	Numeric     []NumericSummary     `json:"numeric"`
	Categorical []CategoricalSummary `json:"categorical"`
	Datetime    []DatetimeSummary    `json:"datetime"`
}

// maxCategoricalColumns bounds the categorical summary for very wide tables.
const maxCategoricalColumns = 20

// BuildSummary computes the statistical summary for every column,
// grouped by inferred type. Columns with no present values are skipped.
func BuildSummary(t *dataset.Table) Summary {
	var out Summary

	for _, name := range t.NumericColumns() {
		col, _ := t.Column(name)
		vals := col.Floats64()
		if len(vals) == 0 {
			continue
		}
		out.Numeric = append(out.Numeric, summarizeNumeric(name, vals))
	}

	for _, name := range t.CategoricalColumns() {
		if len(out.Categorical) >= maxCategoricalColumns {
			break
		}
		col, _ := t.Column(name)
		if s, ok := summarizeCategorical(name, col); ok {
			out.Categorical = append(out.Categorical, s)
		}
	}

	for _, name := range t.DatetimeColumns() {
		col, _ := t.Column(name)
		if s, ok := summarizeDatetime(name, col); ok {
			out.Datetime = append(out.Datetime, s)
		}
	}
	return out
}

func summarizeNumeric(name string, vals []float64) NumericSummary {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	mean := stat.Mean(vals, nil)
	std := 0.0
	if len(vals) > 1 {
		std = stat.StdDev(vals, nil)
	}

	s := NumericSummary{
		Column:   name,
		Count:    len(vals),
		Mean:     mean,
		Std:      std,
		Min:      sorted[0],
		Q1:       Quantile(sorted, 0.25),
		Median:   Quantile(sorted, 0.5),
		Q3:       Quantile(sorted, 0.75),
		Max:      sorted[len(sorted)-1],
		Variance: std * std,
		Range:    sorted[len(sorted)-1] - sorted[0],
	}
	if len(vals) > 2 {
		s.Skewness = stat.Skew(vals, nil)
		s.Kurtosis = stat.ExKurtosis(vals, nil)
	}
	if mean != 0 {
		cv := std / mean
		s.CV = &cv
	}
	return s
}

func summarizeCategorical(name string, col *dataset.Column) (CategoricalSummary, bool) {
	counts := labelCounts(col)
	if len(counts) == 0 {
		return CategoricalSummary{}, false
	}

	ordered := sortedByCount(counts)
	most := ordered[0]
	least := ordered[len(ordered)-1]

	total := 0
	for _, e := range ordered {
		total += e.count
	}
	probs := make([]float64, len(ordered))
	for i, e := range ordered {
		probs[i] = float64(e.count) / float64(total)
	}

	return CategoricalSummary{
		Column:        name,
		Unique:        len(counts),
		MostFrequent:  most.label,
		MostCount:     most.count,
		LeastFrequent: least.label,
		LeastCount:    least.count,
		Entropy:       stat.Entropy(probs),
	}, true
}

func summarizeDatetime(name string, col *dataset.Column) (DatetimeSummary, bool) {
	var min, max time.Time
	found := false
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		ts := col.Times[i]
		if !found {
			min, max = ts, ts
			found = true
			continue
		}
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	if !found {
		return DatetimeSummary{}, false
	}
	return DatetimeSummary{
		Column:    name,
		Min:       min,
		Max:       max,
		RangeDays: int(max.Sub(min).Hours() / 24),
	}, true
}

// labelEntry pairs a label with its occurrence count.
type labelEntry struct {
	label string
	count int
}

// labelCounts tallies non-missing labels of a categorical-like column.
func labelCounts(col *dataset.Column) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if label, ok := col.Label(i); ok {
			counts[label]++
		}
	}
	return counts
}

// sortedByCount orders labels by descending count, ties by label for
// deterministic output.
func sortedByCount(counts map[string]int) []labelEntry {
	out := make([]labelEntry, 0, len(counts))
	for label, count := range counts {
		out = append(out, labelEntry{label, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	return out
}
