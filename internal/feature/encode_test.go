package feature

import (
	"testing"

	"github.com/samhitalabs/sync/internal/dataset"
)

// ============================================================================
// LabelEncode
// ============================================================================

func TestLabelEncode(t *testing.T) {
	tbl := makeTable(stringCol("size", "small", "large", "medium", "small", ""))

	if err := LabelEncode(tbl, "size"); err != nil {
		t.Fatalf("LabelEncode: %v", err)
	}

	out := mustColumn(t, tbl, "size_encoded")
	if out.Type != dataset.TypeInt {
		t.Fatalf("type = %v, want int", out.Type)
	}
	// Sorted levels: large=0, medium=1, small=2.
	want := []int64{2, 0, 1, 2}
	for i, w := range want {
		if out.Ints[i] != w {
			t.Errorf("row %d = %d, want %d", i, out.Ints[i], w)
		}
	}
	if !out.IsMissing(4) {
		t.Error("missing cell should stay missing")
	}
}

// ============================================================================
// OneHotEncode
// ============================================================================

func TestOneHotEncode(t *testing.T) {
	tbl := makeTable(stringCol("color", "red", "blue", "red", ""))

	if err := OneHotEncode(tbl, "color"); err != nil {
		t.Fatalf("OneHotEncode: %v", err)
	}

	blue := mustColumn(t, tbl, "color_blue")
	red := mustColumn(t, tbl, "color_red")

	wantBlue := []int64{0, 1, 0, 0}
	wantRed := []int64{1, 0, 1, 0}
	for i := range wantBlue {
		if blue.Ints[i] != wantBlue[i] {
			t.Errorf("blue row %d = %d, want %d", i, blue.Ints[i], wantBlue[i])
		}
		if red.Ints[i] != wantRed[i] {
			t.Errorf("red row %d = %d, want %d", i, red.Ints[i], wantRed[i])
		}
	}
	if tbl.NumCols() != 3 {
		t.Errorf("cols = %d, want 3", tbl.NumCols())
	}
}

func TestOneHotEncode_LevelCapEnforced(t *testing.T) {
	vals := make([]string, maxOneHotLevels+1)
	for i := range vals {
		vals[i] = string(rune('A' + i/26)) + string(rune('a'+i%26))
	}
	tbl := makeTable(stringCol("id", vals...))

	if err := OneHotEncode(tbl, "id"); err == nil {
		t.Fatal("expected error above the level cap")
	}
	if tbl.NumCols() != 1 {
		t.Errorf("failed encode added columns: %d", tbl.NumCols())
	}
}

// ============================================================================
// FrequencyEncode
// ============================================================================

func TestFrequencyEncode(t *testing.T) {
	tbl := makeTable(stringCol("city", "oslo", "bergen", "oslo", "oslo", ""))

	if err := FrequencyEncode(tbl, "city"); err != nil {
		t.Fatalf("FrequencyEncode: %v", err)
	}

	out := mustColumn(t, tbl, "city_freq")
	want := []int64{3, 1, 3, 3}
	for i, w := range want {
		if out.Ints[i] != w {
			t.Errorf("row %d = %d, want %d", i, out.Ints[i], w)
		}
	}
	if !out.IsMissing(4) {
		t.Error("missing cell should stay missing")
	}
}

// ============================================================================
// Shared validation
// ============================================================================

func TestEncode_RejectsNumericColumn(t *testing.T) {
	tbl := makeTable(floatCol("v", 1, 2, 3))

	if err := LabelEncode(tbl, "v"); err == nil {
		t.Error("LabelEncode should reject numeric columns")
	}
	if err := OneHotEncode(tbl, "v"); err == nil {
		t.Error("OneHotEncode should reject numeric columns")
	}
	if err := FrequencyEncode(tbl, "v"); err == nil {
		t.Error("FrequencyEncode should reject numeric columns")
	}
}

func TestEncode_RejectsAllMissingColumn(t *testing.T) {
	tbl := makeTable(stringCol("empty", "", "", ""))

	if err := LabelEncode(tbl, "empty"); err == nil {
		t.Error("expected error for all-missing column")
	}
}
