package analysis

import (
	"sort"

	"github.com/samhitalabs/sync/internal/dataset"
)

// MissingColumn reports missing cells for one column.
type MissingColumn struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// OutlierColumn reports IQR outliers for one numeric column.
type OutlierColumn struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// QualityReport collects the data quality findings for a table.
type QualityReport struct {
	Missing         []MissingColumn `json:"missing"`
	DuplicateRows   int             `json:"duplicateRows"`
	ConstantColumns []string        `json:"constantColumns"`
	HighCardinality []string        `json:"highCardinality"`
	Outliers        []OutlierColumn `json:"outliers"`
}

// highCardinalityRatio flags discrete columns whose distinct count
// exceeds this share of the row count.
const highCardinalityRatio = 0.5

// iqrFactor is the whisker multiplier for outlier detection.
const iqrFactor = 1.5

// AssessQuality runs the data quality checks: missing values, duplicate
// rows, constant columns, high-cardinality discrete columns and IQR
// outliers in numeric columns.
func AssessQuality(t *dataset.Table) QualityReport {
	rows := t.NumRows()
	report := QualityReport{DuplicateRows: t.DuplicateRows()}

	for i := range t.Columns {
		col := &t.Columns[i]
		if n := col.MissingCount(); n > 0 && rows > 0 {
			report.Missing = append(report.Missing, MissingColumn{
				Column:  col.Name,
				Count:   n,
				Percent: float64(n) / float64(rows) * 100,
			})
		}
		if col.UniqueCount() <= 1 {
			report.ConstantColumns = append(report.ConstantColumns, col.Name)
		}
		if col.Type.IsCategoricalLike() && rows > 0 &&
			float64(col.UniqueCount()) > float64(rows)*highCardinalityRatio {
			report.HighCardinality = append(report.HighCardinality, col.Name)
		}
	}

	sort.Slice(report.Missing, func(i, j int) bool {
		return report.Missing[i].Count > report.Missing[j].Count
	})

	for _, name := range t.NumericColumns() {
		col, _ := t.Column(name)
		if o, ok := iqrOutliers(name, col.Floats64()); ok && o.Count > 0 {
			report.Outliers = append(report.Outliers, o)
		}
	}
	return report
}

// iqrOutliers counts values outside [Q1 - k*IQR, Q3 + k*IQR].
func iqrOutliers(name string, vals []float64) (OutlierColumn, bool) {
	if len(vals) < 4 {
		return OutlierColumn{}, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - iqrFactor*iqr
	upper := q3 + iqrFactor*iqr

	count := 0
	for _, v := range vals {
		if v < lower || v > upper {
			count++
		}
	}
	return OutlierColumn{Column: name, Count: count, Lower: lower, Upper: upper}, true
}
