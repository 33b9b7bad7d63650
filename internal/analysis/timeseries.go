package analysis

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/samhitalabs/sync/internal/dataset"
)

// TimeSeriesPoint is one (timestamp, value) observation.
type TimeSeriesPoint struct {
	T time.Time `json:"t"`
	V float64   `json:"v"`
}

// TimeSeries is a numeric column ordered along a datetime column, with
// range and value statistics over the paired observations.
type TimeSeries struct {
	DateColumn   string            `json:"dateColumn"`
	ValueColumn  string            `json:"valueColumn"`
	N            int               `json:"n"`
	Start        time.Time         `json:"start"`
	End          time.Time         `json:"end"`
	DurationDays int               `json:"durationDays"`
	Mean         float64           `json:"mean"`
	Std          float64           `json:"std"`
	Min          float64           `json:"min"`
	Max          float64           `json:"max"`
	Points       []TimeSeriesPoint `json:"points"`
}

// BuildTimeSeries pairs a datetime column with a numeric column, drops
// rows where either side is missing and sorts by time. Series beyond
// maxScatterPoints observations are sampled with a fixed stride.
func BuildTimeSeries(t *dataset.Table, dateColumn, valueColumn string) (TimeSeries, error) {
	dateCol, ok := t.Column(dateColumn)
	if !ok {
		return TimeSeries{}, fmt.Errorf("unknown column %q", dateColumn)
	}
	if dateCol.Type != dataset.TypeDatetime {
		return TimeSeries{}, fmt.Errorf("column %q is not a datetime", dateColumn)
	}
	valCol, ok := t.Column(valueColumn)
	if !ok {
		return TimeSeries{}, fmt.Errorf("unknown column %q", valueColumn)
	}
	if !valCol.Type.IsNumeric() {
		return TimeSeries{}, fmt.Errorf("column %q is not numeric", valueColumn)
	}

	var points []TimeSeriesPoint
	for i := 0; i < dateCol.Len(); i++ {
		if dateCol.IsMissing(i) || valCol.IsMissing(i) {
			continue
		}
		v, ok := valCol.Float(i)
		if !ok {
			continue
		}
		points = append(points, TimeSeriesPoint{T: dateCol.Times[i], V: v})
	}
	if len(points) == 0 {
		return TimeSeries{}, fmt.Errorf("columns %q and %q share no observed rows", dateColumn, valueColumn)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].T.Before(points[j].T) })

	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.V
	}
	sortedVals := append([]float64(nil), vals...)
	sort.Float64s(sortedVals)

	out := TimeSeries{
		DateColumn:   dateColumn,
		ValueColumn:  valueColumn,
		N:            len(points),
		Start:        points[0].T,
		End:          points[len(points)-1].T,
		DurationDays: int(points[len(points)-1].T.Sub(points[0].T).Hours() / 24),
		Mean:         stat.Mean(vals, nil),
		Min:          sortedVals[0],
		Max:          sortedVals[len(sortedVals)-1],
	}
	if len(vals) > 1 {
		out.Std = stat.StdDev(vals, nil)
	}

	stride := 1
	if len(points) > maxScatterPoints {
		stride = (len(points) + maxScatterPoints - 1) / maxScatterPoints
	}
	for i := 0; i < len(points); i += stride {
		out.Points = append(out.Points, points[i])
	}
	return out, nil
}
