package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/samhitalabs/sync/internal/dataset"
)

const (
	defaultHistogramBins = 20
	maxHistogramBins     = 100
	defaultTopN          = 15
	maxScatterPoints     = 5000
)

// HistogramBin is one bucket of a histogram.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the binned distribution of a numeric column.
type Histogram struct {
	Column string         `json:"column"`
	N      int            `json:"n"`
	Bins   []HistogramBin `json:"bins"`
}

// BuildHistogram bins a numeric column into equal-width buckets.
func BuildHistogram(t *dataset.Table, column string, bins int) (Histogram, error) {
	vals, err := numericValues(t, column)
	if err != nil {
		return Histogram{}, err
	}
	if len(vals) == 0 {
		return Histogram{}, fmt.Errorf("column %q has no values", column)
	}
	if bins <= 0 {
		bins = defaultHistogramBins
	}
	if bins > maxHistogramBins {
		bins = maxHistogramBins
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
		return Histogram{
			Column: column,
			N:      len(vals),
			Bins:   []HistogramBin{{Lower: min, Upper: max, Count: len(vals)}},
		}, nil
	}

	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range vals {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	out := make([]HistogramBin, bins)
	for i, c := range counts {
		out[i] = HistogramBin{
			Lower: min + float64(i)*width,
			Upper: min + float64(i+1)*width,
			Count: c,
		}
	}
	return Histogram{Column: column, N: len(vals), Bins: out}, nil
}

// BoxPlot is the five-number summary of a numeric column plus the count
// of points beyond the 1.5 IQR whiskers.
type BoxPlot struct {
	Column       string  `json:"column"`
	N            int     `json:"n"`
	Min          float64 `json:"min"`
	Q1           float64 `json:"q1"`
	Median       float64 `json:"median"`
	Q3           float64 `json:"q3"`
	Max          float64 `json:"max"`
	WhiskerLow   float64 `json:"whiskerLow"`
	WhiskerHigh  float64 `json:"whiskerHigh"`
	OutlierCount int     `json:"outlierCount"`
}

// BuildBoxPlot computes box plot geometry for a numeric column.
func BuildBoxPlot(t *dataset.Table, column string) (BoxPlot, error) {
	vals, err := numericValues(t, column)
	if err != nil {
		return BoxPlot{}, err
	}
	if len(vals) == 0 {
		return BoxPlot{}, fmt.Errorf("column %q has no values", column)
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	med := Quantile(sorted, 0.5)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	lower, upper := q1-iqrFactor*iqr, q3+iqrFactor*iqr

	// Whiskers extend to the most extreme values inside the fences.
	wLow, wHigh := math.Inf(1), math.Inf(-1)
	outliers := 0
	for _, v := range sorted {
		if v < lower || v > upper {
			outliers++
			continue
		}
		if v < wLow {
			wLow = v
		}
		if v > wHigh {
			wHigh = v
		}
	}
	if outliers == len(sorted) {
		wLow, wHigh = sorted[0], sorted[len(sorted)-1]
	}

	return BoxPlot{
		Column:       column,
		N:            len(sorted),
		Min:          sorted[0],
		Q1:           q1,
		Median:       med,
		Q3:           q3,
		Max:          sorted[len(sorted)-1],
		WhiskerLow:   wLow,
		WhiskerHigh:  wHigh,
		OutlierCount: outliers,
	}, nil
}

// ValueCount is one level of a value counts chart.
type ValueCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ValueCounts holds the most frequent levels of a discrete column.
type ValueCounts struct {
	Column string       `json:"column"`
	N      int          `json:"n"`
	Other  int          `json:"other"` // rows folded into levels beyond topN
	Counts []ValueCount `json:"counts"`
}

// BuildValueCounts returns the topN most frequent levels of a discrete
// column, ordered by descending count.
func BuildValueCounts(t *dataset.Table, column string, topN int) (ValueCounts, error) {
	col, ok := t.Column(column)
	if !ok {
		return ValueCounts{}, fmt.Errorf("unknown column %q", column)
	}
	if !col.Type.IsCategoricalLike() {
		return ValueCounts{}, fmt.Errorf("column %q is not categorical", column)
	}
	if topN <= 0 {
		topN = defaultTopN
	}

	ordered := sortedByCount(labelCounts(col))
	total := 0
	for _, e := range ordered {
		total += e.count
	}

	out := ValueCounts{Column: column, N: total}
	for i, e := range ordered {
		if i >= topN {
			out.Other += e.count
			continue
		}
		out.Counts = append(out.Counts, ValueCount{Label: e.label, Count: e.count})
	}
	return out, nil
}

// ScatterPoint is one (x, y) pair.
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scatter holds paired values of two numeric columns, downsampled when
// the dataset is large.
type Scatter struct {
	ColumnX string         `json:"columnX"`
	ColumnY string         `json:"columnY"`
	N       int            `json:"n"` // complete pairs before downsampling
	Points  []ScatterPoint `json:"points"`
}

// BuildScatter returns paired points for two numeric columns. Datasets
// beyond maxScatterPoints pairs are sampled with a fixed stride so the
// payload stays bounded.
func BuildScatter(t *dataset.Table, columnX, columnY string) (Scatter, error) {
	x, y, err := pairedValues(t, columnX, columnY)
	if err != nil {
		return Scatter{}, err
	}

	stride := 1
	if len(x) > maxScatterPoints {
		stride = (len(x) + maxScatterPoints - 1) / maxScatterPoints
	}

	out := Scatter{ColumnX: columnX, ColumnY: columnY, N: len(x)}
	for i := 0; i < len(x); i += stride {
		out.Points = append(out.Points, ScatterPoint{X: x[i], Y: y[i]})
	}
	return out, nil
}
