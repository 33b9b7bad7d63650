package feature

import (
	"testing"
)

// ============================================================================
// BinEqualWidth
// ============================================================================

func TestBinEqualWidth(t *testing.T) {
	tbl := makeTable(floatCol("v", 0, 1, 4, 5, 9, 10))

	if err := BinEqualWidth(tbl, "v", 2); err != nil {
		t.Fatalf("BinEqualWidth: %v", err)
	}

	out := mustColumn(t, tbl, "v_binned")
	// Width 5: [0,5) is bin 0, [5,10] is bin 1; the max closes the last bin.
	want := []int64{0, 0, 0, 1, 1, 1}
	for i, w := range want {
		if out.Ints[i] != w {
			t.Errorf("row %d = %d, want %d", i, out.Ints[i], w)
		}
	}
}

func TestBinEqualWidth_PreservesMissing(t *testing.T) {
	col := floatCol("v", 1, 2, 3, 4)
	col.Missing[2] = true
	tbl := makeTable(col)

	if err := BinEqualWidth(tbl, "v", 3); err != nil {
		t.Fatalf("BinEqualWidth: %v", err)
	}
	if !mustColumn(t, tbl, "v_binned").IsMissing(2) {
		t.Error("missing cell should stay missing")
	}
}

// ============================================================================
// BinEqualFrequency
// ============================================================================

func TestBinEqualFrequency(t *testing.T) {
	tbl := makeTable(floatCol("v", 1, 2, 3, 4, 5, 6, 7, 8))

	if err := BinEqualFrequency(tbl, "v", 4); err != nil {
		t.Fatalf("BinEqualFrequency: %v", err)
	}

	out := mustColumn(t, tbl, "v_binned")
	counts := make(map[int64]int)
	for _, b := range out.Ints {
		counts[b]++
	}
	if len(counts) != 4 {
		t.Fatalf("distinct bins = %d, want 4", len(counts))
	}
	for b, c := range counts {
		if c != 2 {
			t.Errorf("bin %d holds %d rows, want 2", b, c)
		}
	}
	// Ordering is preserved: later values land in later bins.
	for i := 1; i < len(out.Ints); i++ {
		if out.Ints[i] < out.Ints[i-1] {
			t.Fatalf("bins not monotone: %v", out.Ints)
		}
	}
}

func TestBinEqualFrequency_DuplicateEdgesMerged(t *testing.T) {
	// Heavy repetition collapses interior quantiles; fewer bins result.
	tbl := makeTable(floatCol("v", 1, 1, 1, 1, 1, 1, 1, 1, 1, 9))

	if err := BinEqualFrequency(tbl, "v", 4); err != nil {
		t.Fatalf("BinEqualFrequency: %v", err)
	}

	out := mustColumn(t, tbl, "v_binned")
	distinct := make(map[int64]bool)
	for _, b := range out.Ints {
		distinct[b] = true
	}
	if len(distinct) >= 4 {
		t.Errorf("distinct bins = %d, expected merge below 4", len(distinct))
	}
	if out.Ints[9] <= out.Ints[0] {
		t.Errorf("the outlier should land above the bulk: %v", out.Ints)
	}
}

func TestBin_Validation(t *testing.T) {
	tbl := makeTable(floatCol("v", 1, 2, 3), stringCol("s", "a", "b", "c"))

	if err := BinEqualWidth(tbl, "v", 1); err == nil {
		t.Error("expected error for bins < 2")
	}
	if err := BinEqualWidth(tbl, "v", maxBins+1); err == nil {
		t.Error("expected error above the bin cap")
	}
	if err := BinEqualWidth(tbl, "s", 3); err == nil {
		t.Error("expected error for non-numeric column")
	}
	if err := BinEqualFrequency(tbl, "nope", 3); err == nil {
		t.Error("expected error for unknown column")
	}

	constant := makeTable(floatCol("c", 5, 5, 5))
	if err := BinEqualWidth(constant, "c", 2); err == nil {
		t.Error("equal width should reject constant columns")
	}
	if err := BinEqualFrequency(constant, "c", 2); err == nil {
		t.Error("equal frequency should reject constant columns")
	}
}

// ============================================================================
// DropColumns
// ============================================================================

func TestDropColumns(t *testing.T) {
	tbl := makeTable(
		floatCol("keep", 1, 2),
		floatCol("a", 3, 4),
		floatCol("b", 5, 6),
	)

	if err := DropColumns(tbl, []string{"a", "b"}); err != nil {
		t.Fatalf("DropColumns: %v", err)
	}
	if tbl.NumCols() != 1 || tbl.Columns[0].Name != "keep" {
		t.Errorf("columns = %v, want [keep]", tbl.Names())
	}
}

func TestDropColumns_Validation(t *testing.T) {
	tbl := makeTable(floatCol("a", 1), floatCol("b", 2))

	if err := DropColumns(tbl, nil); err == nil {
		t.Error("expected error for empty list")
	}
	if err := DropColumns(tbl, []string{"nope"}); err == nil {
		t.Error("expected error for unknown column")
	}
	if err := DropColumns(tbl, []string{"a", "b"}); err == nil {
		t.Error("expected error when dropping every column")
	}
	if tbl.NumCols() != 2 {
		t.Errorf("failed drops mutated the table: %v", tbl.Names())
	}
}
