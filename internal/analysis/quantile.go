package analysis

import "math"

// Quantile returns the q-th quantile of sorted values using linear
// interpolation between the two nearest order statistics (the convention
// numpy and pandas default to). sorted must be ascending and non-empty;
// q is clamped to [0, 1].
func Quantile(sorted []float64, q float64) float64 {
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
