package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/samhitalabs/sync/internal/dataset"
)

// Thresholds controls when automated insights fire. Zero values are
// replaced by DefaultThresholds at evaluation time.
type Thresholds struct {
	MissingHighPct   float64 `yaml:"missingHighPct"`
	MissingLowPct    float64 `yaml:"missingLowPct"`
	SkewAbs          float64 `yaml:"skewAbs"`
	OutlierPct       float64 `yaml:"outlierPct"`
	CardinalityRatio float64 `yaml:"cardinalityRatio"`
	ImbalanceRatio   float64 `yaml:"imbalanceRatio"`
	CorrelationAbs   float64 `yaml:"correlationAbs"`
	LargeRows        int     `yaml:"largeRows"`
	SmallRows        int     `yaml:"smallRows"`
}

// DefaultThresholds are the stock insight triggers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MissingHighPct:   20,
		MissingLowPct:    5,
		SkewAbs:          2,
		OutlierPct:       5,
		CardinalityRatio: 0.8,
		ImbalanceRatio:   10,
		CorrelationAbs:   0.8,
		LargeRows:        100_000,
		SmallRows:        100,
	}
}

func (th Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if th.MissingHighPct == 0 {
		th.MissingHighPct = def.MissingHighPct
	}
	if th.MissingLowPct == 0 {
		th.MissingLowPct = def.MissingLowPct
	}
	if th.SkewAbs == 0 {
		th.SkewAbs = def.SkewAbs
	}
	if th.OutlierPct == 0 {
		th.OutlierPct = def.OutlierPct
	}
	if th.CardinalityRatio == 0 {
		th.CardinalityRatio = def.CardinalityRatio
	}
	if th.ImbalanceRatio == 0 {
		th.ImbalanceRatio = def.ImbalanceRatio
	}
	if th.CorrelationAbs == 0 {
		th.CorrelationAbs = def.CorrelationAbs
	}
	if th.LargeRows == 0 {
		th.LargeRows = def.LargeRows
	}
	if th.SmallRows == 0 {
		th.SmallRows = def.SmallRows
	}
	return th
}

// Severity orders insights for display.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Insight is one automated observation about a dataset.
type Insight struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	Column   string   `json:"column,omitempty"`
	Message  string   `json:"message"`
}

// GenerateInsights scans a table and reports notable data quality and
// distribution findings, warnings before infos, columns in table order.
func GenerateInsights(t *dataset.Table, th Thresholds) []Insight {
	th = th.withDefaults()
	var out []Insight

	rows := t.NumRows()
	if rows >= th.LargeRows {
		out = append(out, Insight{
			Severity: SeverityInfo,
			Kind:     "large_dataset",
			Message:  fmt.Sprintf("dataset has %d rows; consider sampling for interactive analysis", rows),
		})
	} else if rows > 0 && rows < th.SmallRows {
		out = append(out, Insight{
			Severity: SeverityInfo,
			Kind:     "small_dataset",
			Message:  fmt.Sprintf("dataset has only %d rows; statistical results may be unstable", rows),
		})
	}

	for _, col := range t.Columns {
		out = append(out, columnInsights(&col, rows, th)...)
	}
	out = append(out, correlationInsights(t, th)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity == SeverityWarning && out[j].Severity != SeverityWarning
	})
	return out
}

func columnInsights(col *dataset.Column, rows int, th Thresholds) []Insight {
	var out []Insight
	if rows == 0 {
		return out
	}

	missingPct := float64(col.MissingCount()) / float64(rows) * 100
	if missingPct >= th.MissingHighPct {
		out = append(out, Insight{
			Severity: SeverityWarning,
			Kind:     "missing_high",
			Column:   col.Name,
			Message:  fmt.Sprintf("%.1f%% of %q is missing; consider dropping or imputing", missingPct, col.Name),
		})
	} else if missingPct >= th.MissingLowPct {
		out = append(out, Insight{
			Severity: SeverityInfo,
			Kind:     "missing_low",
			Column:   col.Name,
			Message:  fmt.Sprintf("%.1f%% of %q is missing", missingPct, col.Name),
		})
	}

	if col.Type.IsNumeric() {
		vals := col.Floats64()
		if len(vals) > 2 {
			skew := stat.Skew(vals, nil)
			if math.Abs(skew) > th.SkewAbs {
				direction := "right"
				if skew < 0 {
					direction = "left"
				}
				out = append(out, Insight{
					Severity: SeverityInfo,
					Kind:     "skewed",
					Column:   col.Name,
					Message:  fmt.Sprintf("%q is heavily %s-skewed (%.2f); a log or sqrt transform may help", col.Name, direction, skew),
				})
			}
		}
		if oc, ok := iqrOutliers(col.Name, vals); ok {
			outlierPct := float64(oc.Count) / float64(rows) * 100
			if outlierPct > th.OutlierPct {
				out = append(out, Insight{
					Severity: SeverityWarning,
					Kind:     "outliers",
					Column:   col.Name,
					Message:  fmt.Sprintf("%q has %d outliers (%.1f%% of rows) outside [%.4g, %.4g]", col.Name, oc.Count, outlierPct, oc.Lower, oc.Upper),
				})
			}
		}
	}

	if col.Type.IsCategoricalLike() {
		unique := col.UniqueCount()
		if unique <= 1 {
			out = append(out, Insight{
				Severity: SeverityWarning,
				Kind:     "constant",
				Column:   col.Name,
				Message:  fmt.Sprintf("%q has a single value and carries no information", col.Name),
			})
		} else {
			ratio := float64(unique) / float64(rows)
			if ratio > th.CardinalityRatio {
				out = append(out, Insight{
					Severity: SeverityInfo,
					Kind:     "high_cardinality",
					Column:   col.Name,
					Message:  fmt.Sprintf("%q has %d distinct values over %d rows; it may be an identifier", col.Name, unique, rows),
				})
			}
			ordered := sortedByCount(labelCounts(col))
			if len(ordered) >= 2 && ordered[len(ordered)-1].count > 0 {
				imbalance := float64(ordered[0].count) / float64(ordered[len(ordered)-1].count)
				if imbalance > th.ImbalanceRatio {
					out = append(out, Insight{
						Severity: SeverityInfo,
						Kind:     "imbalanced",
						Column:   col.Name,
						Message:  fmt.Sprintf("%q is imbalanced: %q appears %.0fx more often than %q", col.Name, ordered[0].label, imbalance, ordered[len(ordered)-1].label),
					})
				}
			}
		}
	}

	return out
}

func correlationInsights(t *dataset.Table, th Thresholds) []Insight {
	numeric := t.NumericColumns()
	var out []Insight
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			x, y, err := pairedValues(t, numeric[i], numeric[j])
			if err != nil || len(x) < 3 {
				continue
			}
			r := stat.Correlation(x, y, nil)
			if math.Abs(r) > th.CorrelationAbs {
				out = append(out, Insight{
					Severity: SeverityInfo,
					Kind:     "correlated",
					Message:  fmt.Sprintf("%q and %q are strongly correlated (r=%.2f); one may be redundant", numeric[i], numeric[j], r),
				})
			}
		}
	}
	return out
}
