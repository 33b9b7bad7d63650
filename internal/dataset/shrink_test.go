package dataset

import (
	"reflect"
	"testing"
)

// ============================================================================
// Memory Reduction Tests
// ============================================================================

func TestShrink_IntWidths(t *testing.T) {
	tests := []struct {
		name string
		vals []int64
		want int
	}{
		{name: "fits int8", vals: []int64{-128, 0, 127}, want: 8},
		{name: "fits int16", vals: []int64{-1000, 1000}, want: 16},
		{name: "fits int32", vals: []int64{1 << 20}, want: 32},
		{name: "needs int64", vals: []int64{1 << 40}, want: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &Table{Columns: []Column{{
				Name: "n", Type: TypeInt, Ints: tt.vals, Missing: make([]bool, len(tt.vals)),
			}}}
			Shrink(table)
			if got := table.Columns[0].Width; got != tt.want {
				t.Errorf("expected width %d, got %d", tt.want, got)
			}
		})
	}
}

func TestShrink_FloatWidths(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "f32", Type: TypeFloat, Floats: []float64{0.5, 1.25, -2}, Missing: make([]bool, 3)},
		{Name: "f64", Type: TypeFloat, Floats: []float64{0.1}, Missing: make([]bool, 1)},
	}}
	Shrink(table)
	if got := table.Columns[0].Width; got != 32 {
		t.Errorf("expected width 32 for float32-exact values, got %d", got)
	}
	if got := table.Columns[1].Width; got != 64 {
		t.Errorf("expected width 64 for 0.1, got %d", got)
	}
}

func TestShrink_CategoricalCoding(t *testing.T) {
	table := &Table{Columns: []Column{{
		Name:    "color",
		Type:    TypeString,
		Strings: []string{"red", "blue", "red", "", "blue", "red"},
		Missing: []bool{false, false, false, true, false, false},
	}}}
	Shrink(table)

	col := table.Columns[0]
	if col.Type != TypeCategorical {
		t.Fatalf("expected categorical, got %v", col.Type)
	}
	if !reflect.DeepEqual(col.Levels, []string{"red", "blue"}) {
		t.Errorf("expected first-appearance levels, got %v", col.Levels)
	}
	if !reflect.DeepEqual(col.Codes, []int32{0, 1, 0, -1, 1, 0}) {
		t.Errorf("unexpected codes: %v", col.Codes)
	}
	// Coding is lossless: rendered cells match the original strings.
	for i, want := range []string{"red", "blue", "red", "", "blue", "red"} {
		if got := col.Cell(i); got != want {
			t.Errorf("cell %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestShrink_HighCardinalityStaysString(t *testing.T) {
	table := &Table{Columns: []Column{{
		Name:    "id",
		Type:    TypeString,
		Strings: []string{"a", "b", "c", "d"},
		Missing: make([]bool, 4),
	}}}
	Shrink(table)
	if got := table.Columns[0].Type; got != TypeString {
		t.Errorf("expected string for high-cardinality column, got %v", got)
	}
}

func TestShrink_Idempotent(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "n", Type: TypeInt, Ints: []int64{1, 2, 200}, Missing: make([]bool, 3)},
		{Name: "f", Type: TypeFloat, Floats: []float64{0.5, 0.5, 1.5}, Missing: make([]bool, 3)},
		{Name: "c", Type: TypeString, Strings: []string{"x", "x", "y"}, Missing: make([]bool, 3)},
	}}

	once := Shrink(table.Clone())
	twice := Shrink(once.Clone())

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed the table:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
