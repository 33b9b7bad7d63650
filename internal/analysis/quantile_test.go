package analysis

import "testing"

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"median odd n", []float64{1, 2, 3, 4, 5}, 0.5, 3},
		{"median even n", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"q1 interpolates", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}, 0.25, 3.25},
		{"q3 interpolates", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}, 0.75, 7.75},
		{"min", []float64{1, 2, 3}, 0, 1},
		{"max", []float64{1, 2, 3}, 1, 3},
		{"single value", []float64{42}, 0.5, 42},
		{"clamped below", []float64{1, 2, 3}, -0.5, 1},
		{"clamped above", []float64{1, 2, 3}, 1.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantile(tt.sorted, tt.q); !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.sorted, tt.q, got, tt.want)
			}
		})
	}
}
