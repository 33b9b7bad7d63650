package analysis

import (
	"testing"
)

// ============================================================================
// Histograms
// ============================================================================

func TestBuildHistogram(t *testing.T) {
	tbl := makeTable(floatCol("v", 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))

	h, err := BuildHistogram(tbl, "v", 5)
	if err != nil {
		t.Fatalf("BuildHistogram: %v", err)
	}
	if len(h.Bins) != 5 {
		t.Fatalf("bins = %d, want 5", len(h.Bins))
	}
	if h.N != 11 {
		t.Errorf("n = %d, want 11", h.N)
	}

	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	if total != 11 {
		t.Errorf("bin counts sum to %d, want 11", total)
	}
	// The maximum lands in the last bin, not past it.
	if h.Bins[4].Count != 3 {
		t.Errorf("last bin count = %d, want 3 (8, 9 and 10)", h.Bins[4].Count)
	}
	if h.Bins[0].Lower != 0 || h.Bins[4].Upper != 10 {
		t.Errorf("edges = [%v, %v], want [0, 10]", h.Bins[0].Lower, h.Bins[4].Upper)
	}
}

func TestBuildHistogram_ConstantColumn(t *testing.T) {
	tbl := makeTable(floatCol("v", 7, 7, 7))

	h, err := BuildHistogram(tbl, "v", 10)
	if err != nil {
		t.Fatalf("BuildHistogram: %v", err)
	}
	if len(h.Bins) != 1 || h.Bins[0].Count != 3 {
		t.Errorf("bins = %+v, want single bin of 3", h.Bins)
	}
}

func TestBuildHistogram_BinCountClamped(t *testing.T) {
	tbl := makeTable(floatCol("v", 1, 2, 3, 4))

	h, err := BuildHistogram(tbl, "v", 0)
	if err != nil {
		t.Fatalf("BuildHistogram: %v", err)
	}
	if len(h.Bins) != defaultHistogramBins {
		t.Errorf("bins = %d, want default %d", len(h.Bins), defaultHistogramBins)
	}

	h, err = BuildHistogram(tbl, "v", 10000)
	if err != nil {
		t.Fatalf("BuildHistogram: %v", err)
	}
	if len(h.Bins) != maxHistogramBins {
		t.Errorf("bins = %d, want cap %d", len(h.Bins), maxHistogramBins)
	}
}

// ============================================================================
// Box plots
// ============================================================================

func TestBuildBoxPlot(t *testing.T) {
	tbl := makeTable(floatCol("v", 1, 2, 3, 4, 5, 6, 7, 8, 9, 100))

	b, err := BuildBoxPlot(tbl, "v")
	if err != nil {
		t.Fatalf("BuildBoxPlot: %v", err)
	}
	if b.Min != 1 || b.Max != 100 {
		t.Errorf("min/max = %v/%v, want 1/100", b.Min, b.Max)
	}
	if !almostEqual(b.Q1, 3.25, 1e-9) || !almostEqual(b.Q3, 7.75, 1e-9) {
		t.Errorf("quartiles = %v/%v, want 3.25/7.75", b.Q1, b.Q3)
	}
	if !almostEqual(b.Median, 5.5, 1e-9) {
		t.Errorf("median = %v, want 5.5", b.Median)
	}
	if b.OutlierCount != 1 {
		t.Errorf("outliers = %d, want 1", b.OutlierCount)
	}
	// Whiskers stop at the extreme in-fence values.
	if b.WhiskerLow != 1 || b.WhiskerHigh != 9 {
		t.Errorf("whiskers = %v/%v, want 1/9", b.WhiskerLow, b.WhiskerHigh)
	}
}

// ============================================================================
// Value counts
// ============================================================================

func TestBuildValueCounts(t *testing.T) {
	tbl := makeTable(stringCol("kind", "a", "b", "a", "c", "a", "b"))

	vc, err := BuildValueCounts(tbl, "kind", 2)
	if err != nil {
		t.Fatalf("BuildValueCounts: %v", err)
	}
	if vc.N != 6 {
		t.Errorf("n = %d, want 6", vc.N)
	}
	if len(vc.Counts) != 2 {
		t.Fatalf("counts = %d, want 2", len(vc.Counts))
	}
	if vc.Counts[0].Label != "a" || vc.Counts[0].Count != 3 {
		t.Errorf("top = %q (%d), want \"a\" (3)", vc.Counts[0].Label, vc.Counts[0].Count)
	}
	if vc.Counts[1].Label != "b" || vc.Counts[1].Count != 2 {
		t.Errorf("second = %q (%d), want \"b\" (2)", vc.Counts[1].Label, vc.Counts[1].Count)
	}
	if vc.Other != 1 {
		t.Errorf("other = %d, want 1", vc.Other)
	}
}

func TestBuildValueCounts_NumericRejected(t *testing.T) {
	tbl := makeTable(floatCol("v", 1, 2, 3))
	if _, err := BuildValueCounts(tbl, "v", 5); err == nil {
		t.Error("expected error for numeric column")
	}
}

// ============================================================================
// Scatter
// ============================================================================

func TestBuildScatter(t *testing.T) {
	x := floatCol("x", 1, 2, 3, 4)
	x.Missing[2] = true
	tbl := makeTable(x, floatCol("y", 10, 20, 30, 40))

	s, err := BuildScatter(tbl, "x", "y")
	if err != nil {
		t.Fatalf("BuildScatter: %v", err)
	}
	if s.N != 3 || len(s.Points) != 3 {
		t.Fatalf("points = %d (n=%d), want 3", len(s.Points), s.N)
	}
	if s.Points[2].X != 4 || s.Points[2].Y != 40 {
		t.Errorf("last point = %+v, want (4, 40)", s.Points[2])
	}
}

func TestBuildScatter_Downsampled(t *testing.T) {
	n := maxScatterPoints * 3
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	tbl := makeTable(floatCol("x", vals...), floatCol("y", vals...))

	s, err := BuildScatter(tbl, "x", "y")
	if err != nil {
		t.Fatalf("BuildScatter: %v", err)
	}
	if s.N != n {
		t.Errorf("n = %d, want %d", s.N, n)
	}
	if len(s.Points) > maxScatterPoints {
		t.Errorf("points = %d, want at most %d", len(s.Points), maxScatterPoints)
	}
}
