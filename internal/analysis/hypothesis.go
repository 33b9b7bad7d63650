package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samhitalabs/sync/internal/dataset"
)

// significanceLevel is the alpha used for the Significant flags in test
// results. It is a presentation default, not a statistical claim.
const significanceLevel = 0.05

// NormalityResult holds the outcome of the normality checks for one
// numeric column: Kolmogorov-Smirnov against a fitted normal, and
// Jarque-Bera from sample skewness and kurtosis.
type NormalityResult struct {
	Column   string  `json:"column"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	KSStat   float64 `json:"ksStat"`
	KSP      float64 `json:"ksP"`
	JBStat   float64 `json:"jbStat"`
	JBP      float64 `json:"jbP"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Normal   bool    `json:"normal"` // both tests fail to reject at alpha 0.05
}

// CheckNormality tests whether a numeric column looks normally distributed.
func CheckNormality(t *dataset.Table, column string) (NormalityResult, error) {
	vals, err := numericValues(t, column)
	if err != nil {
		return NormalityResult{}, err
	}
	if len(vals) < 8 {
		return NormalityResult{}, fmt.Errorf("column %q has %d values, need at least 8", column, len(vals))
	}

	mean := stat.Mean(vals, nil)
	std := stat.StdDev(vals, nil)
	if std == 0 {
		return NormalityResult{}, fmt.Errorf("column %q is constant", column)
	}

	ksStat := ksStatistic(vals, distuv.Normal{Mu: mean, Sigma: std})
	n := float64(len(vals))
	ksP := kolmogorovP((math.Sqrt(n) + 0.12 + 0.11/math.Sqrt(n)) * ksStat)

	skew := stat.Skew(vals, nil)
	kurt := stat.ExKurtosis(vals, nil)
	jb := n / 6 * (skew*skew + kurt*kurt/4)
	jbP := distuv.ChiSquared{K: 2}.Survival(jb)

	return NormalityResult{
		Column:   column,
		N:        len(vals),
		Mean:     mean,
		Std:      std,
		KSStat:   ksStat,
		KSP:      ksP,
		JBStat:   jb,
		JBP:      jbP,
		Skewness: skew,
		Kurtosis: kurt,
		Normal:   ksP > significanceLevel && jbP > significanceLevel,
	}, nil
}

// TTestResult holds a Welch two-sample t-test between the two most
// frequent groups of a discrete column.
type TTestResult struct {
	NumericColumn string  `json:"numericColumn"`
	GroupColumn   string  `json:"groupColumn"`
	Group1        string  `json:"group1"`
	Group2        string  `json:"group2"`
	N1            int     `json:"n1"`
	N2            int     `json:"n2"`
	Mean1         float64 `json:"mean1"`
	Mean2         float64 `json:"mean2"`
	T             float64 `json:"t"`
	DF            float64 `json:"df"`
	P             float64 `json:"p"`
	Significant   bool    `json:"significant"`
}

// WelchT compares the means of a numeric column across the two most
// frequent levels of a discrete column, without assuming equal variances.
func WelchT(t *dataset.Table, numeric, group string) (TTestResult, error) {
	numCol, ok := t.Column(numeric)
	if !ok || !numCol.Type.IsNumeric() {
		return TTestResult{}, fmt.Errorf("column %q is not numeric", numeric)
	}
	grpCol, ok := t.Column(group)
	if !ok || !grpCol.Type.IsCategoricalLike() {
		return TTestResult{}, fmt.Errorf("column %q is not categorical", group)
	}

	ordered := sortedByCount(labelCounts(grpCol))
	if len(ordered) < 2 {
		return TTestResult{}, fmt.Errorf("column %q has fewer than 2 groups", group)
	}
	g1, g2 := ordered[0].label, ordered[1].label

	var a, b []float64
	for i := 0; i < t.NumRows(); i++ {
		v, okV := numCol.Float(i)
		label, okL := grpCol.Label(i)
		if !okV || !okL {
			continue
		}
		switch label {
		case g1:
			a = append(a, v)
		case g2:
			b = append(b, v)
		}
	}
	if len(a) < 2 || len(b) < 2 {
		return TTestResult{}, fmt.Errorf("groups %q/%q have too few values (%d/%d)", g1, g2, len(a), len(b))
	}

	m1, m2 := stat.Mean(a, nil), stat.Mean(b, nil)
	v1, v2 := stat.Variance(a, nil), stat.Variance(b, nil)
	n1, n2 := float64(len(a)), float64(len(b))

	se := math.Sqrt(v1/n1 + v2/n2)
	if se == 0 {
		return TTestResult{}, fmt.Errorf("zero variance in both groups")
	}
	tStat := (m1 - m2) / se

	// Welch-Satterthwaite degrees of freedom.
	num := math.Pow(v1/n1+v2/n2, 2)
	den := math.Pow(v1/n1, 2)/(n1-1) + math.Pow(v2/n2, 2)/(n2-1)
	df := num / den

	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(tStat))

	return TTestResult{
		NumericColumn: numeric,
		GroupColumn:   group,
		Group1:        g1,
		Group2:        g2,
		N1:            len(a),
		N2:            len(b),
		Mean1:         m1,
		Mean2:         m2,
		T:             tStat,
		DF:            df,
		P:             p,
		Significant:   p < significanceLevel,
	}, nil
}

// ChiSquareResult holds a chi-square test of independence between two
// discrete columns.
type ChiSquareResult struct {
	Column1     string  `json:"column1"`
	Column2     string  `json:"column2"`
	Chi2        float64 `json:"chi2"`
	DF          int     `json:"df"`
	P           float64 `json:"p"`
	Levels1     int     `json:"levels1"`
	Levels2     int     `json:"levels2"`
	Significant bool    `json:"significant"`
}

// ChiSquareIndependence tests independence of two discrete columns from
// their contingency table.
func ChiSquareIndependence(t *dataset.Table, column1, column2 string) (ChiSquareResult, error) {
	c1, ok := t.Column(column1)
	if !ok || !c1.Type.IsCategoricalLike() {
		return ChiSquareResult{}, fmt.Errorf("column %q is not categorical", column1)
	}
	c2, ok := t.Column(column2)
	if !ok || !c2.Type.IsCategoricalLike() {
		return ChiSquareResult{}, fmt.Errorf("column %q is not categorical", column2)
	}

	counts := make(map[[2]string]float64)
	rowTotals := make(map[string]float64)
	colTotals := make(map[string]float64)
	total := 0.0
	for i := 0; i < t.NumRows(); i++ {
		l1, ok1 := c1.Label(i)
		l2, ok2 := c2.Label(i)
		if !ok1 || !ok2 {
			continue
		}
		counts[[2]string{l1, l2}]++
		rowTotals[l1]++
		colTotals[l2]++
		total++
	}
	if len(rowTotals) < 2 || len(colTotals) < 2 {
		return ChiSquareResult{}, fmt.Errorf("need at least 2 levels in each column")
	}

	chi2 := 0.0
	for l1, rt := range rowTotals {
		for l2, ct := range colTotals {
			expected := rt * ct / total
			observed := counts[[2]string{l1, l2}]
			diff := observed - expected
			chi2 += diff * diff / expected
		}
	}

	df := (len(rowTotals) - 1) * (len(colTotals) - 1)
	p := distuv.ChiSquared{K: float64(df)}.Survival(chi2)

	return ChiSquareResult{
		Column1:     column1,
		Column2:     column2,
		Chi2:        chi2,
		DF:          df,
		P:           p,
		Levels1:     len(rowTotals),
		Levels2:     len(colTotals),
		Significant: p < significanceLevel,
	}, nil
}

// CorrelationResult holds a Pearson correlation between two numeric
// columns over rows where both are present.
type CorrelationResult struct {
	Column1     string  `json:"column1"`
	Column2     string  `json:"column2"`
	N           int     `json:"n"`
	R           float64 `json:"r"`
	P           float64 `json:"p"`
	Significant bool    `json:"significant"`
}

// PearsonCorrelation computes the Pearson correlation coefficient and a
// two-sided p-value from the t distribution.
func PearsonCorrelation(t *dataset.Table, column1, column2 string) (CorrelationResult, error) {
	x, y, err := pairedValues(t, column1, column2)
	if err != nil {
		return CorrelationResult{}, err
	}
	if len(x) < 3 {
		return CorrelationResult{}, fmt.Errorf("only %d complete pairs, need at least 3", len(x))
	}

	r := stat.Correlation(x, y, nil)
	n := float64(len(x))

	p := 0.0
	if math.Abs(r) < 1 {
		tStat := r * math.Sqrt((n-2)/(1-r*r))
		p = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}.Survival(math.Abs(tStat))
	}

	return CorrelationResult{
		Column1:     column1,
		Column2:     column2,
		N:           len(x),
		R:           r,
		P:           p,
		Significant: p < significanceLevel,
	}, nil
}

// numericValues returns the non-missing values of a numeric column.
func numericValues(t *dataset.Table, column string) ([]float64, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	if !col.Type.IsNumeric() {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}
	return col.Floats64(), nil
}

// pairedValues returns rows where both numeric columns are present.
func pairedValues(t *dataset.Table, column1, column2 string) ([]float64, []float64, error) {
	c1, ok := t.Column(column1)
	if !ok || !c1.Type.IsNumeric() {
		return nil, nil, fmt.Errorf("column %q is not numeric", column1)
	}
	c2, ok := t.Column(column2)
	if !ok || !c2.Type.IsNumeric() {
		return nil, nil, fmt.Errorf("column %q is not numeric", column2)
	}
	var x, y []float64
	for i := 0; i < t.NumRows(); i++ {
		a, ok1 := c1.Float(i)
		b, ok2 := c2.Float(i)
		if ok1 && ok2 {
			x = append(x, a)
			y = append(y, b)
		}
	}
	return x, y, nil
}

// ksStatistic computes the Kolmogorov-Smirnov D statistic of the sample
// against the given distribution.
func ksStatistic(vals []float64, dist distuv.Normal) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := float64(len(sorted))

	d := 0.0
	for i, v := range sorted {
		cdf := dist.CDF(v)
		upper := float64(i+1)/n - cdf
		lower := cdf - float64(i)/n
		if upper > d {
			d = upper
		}
		if lower > d {
			d = lower
		}
	}
	return d
}

// kolmogorovP evaluates the asymptotic Kolmogorov distribution survival
// function Q(lambda) = 2 * sum_{k>=1} (-1)^(k-1) exp(-2 k^2 lambda^2).
func kolmogorovP(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	sum := 0.0
	for k := 1; k <= 100; k++ {
		term := 2 * math.Exp(-2*float64(k*k)*lambda*lambda)
		if k%2 == 0 {
			term = -term
		}
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
	}
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}
