package dataset

import (
	"testing"
)

// ============================================================================
// Type Inference Tests
// ============================================================================

func TestInferColumn_Types(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  ColumnType
	}{
		{
			name:  "integers",
			cells: []string{"1", "-2", "300"},
			want:  TypeInt,
		},
		{
			name:  "floats",
			cells: []string{"1.5", "2", "-0.25"},
			want:  TypeFloat,
		},
		{
			name:  "scientific notation is float",
			cells: []string{"1e3", "2.5e-2"},
			want:  TypeFloat,
		},
		{
			name:  "booleans",
			cells: []string{"true", "False", "YES", "no"},
			want:  TypeBool,
		},
		{
			name:  "digits are not booleans",
			cells: []string{"0", "1", "1"},
			want:  TypeInt,
		},
		{
			name:  "iso dates",
			cells: []string{"2024-01-31", "2024-02-01"},
			want:  TypeDatetime,
		},
		{
			name:  "timestamps",
			cells: []string{"2024-01-31 08:30:00", "2024-02-01 09:00:00"},
			want:  TypeDatetime,
		},
		{
			name:  "mixed falls back to string",
			cells: []string{"1", "two", "3"},
			want:  TypeString,
		},
		{
			name:  "empty cells ignored for inference",
			cells: []string{"", "42", ""},
			want:  TypeInt,
		},
		{
			name:  "all empty stays string",
			cells: []string{"", "", ""},
			want:  TypeString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := inferColumn("c", tt.cells)
			if col.Type != tt.want {
				t.Errorf("expected %v, got %v", tt.want, col.Type)
			}
			if col.Len() != len(tt.cells) {
				t.Errorf("expected %d rows, got %d", len(tt.cells), col.Len())
			}
		})
	}
}

func TestInferColumn_MissingTracked(t *testing.T) {
	col := inferColumn("c", []string{"1", "", "3"})
	if col.Type != TypeInt {
		t.Fatalf("expected int, got %v", col.Type)
	}
	if !col.IsMissing(1) {
		t.Error("expected row 1 to be missing")
	}
	if col.IsMissing(0) || col.IsMissing(2) {
		t.Error("expected rows 0 and 2 to be present")
	}
	if col.MissingCount() != 1 {
		t.Errorf("expected 1 missing, got %d", col.MissingCount())
	}
}

func TestBuildTable_RaggedRows(t *testing.T) {
	table := buildTable([]string{"a", "b", "c"}, [][]string{
		{"1", "2", "3"},
		{"4"},
		{"5", "6", "7", "ignored"},
	})
	if table.NumCols() != 3 {
		t.Fatalf("expected 3 columns, got %d", table.NumCols())
	}
	if table.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.NumRows())
	}
	b, _ := table.Column("b")
	if !b.IsMissing(1) {
		t.Error("expected padded cell to be missing")
	}
}

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{
			name:   "empty names placeholdered",
			header: []string{"name", "", "age", "  "},
			want:   []string{"name", "unnamed_0", "age", "unnamed_1"},
		},
		{
			name:   "duplicates suffixed",
			header: []string{"x", "x", "x"},
			want:   []string{"x", "x_1", "x_2"},
		},
		{
			name:   "plain header untouched",
			header: []string{"a", "b"},
			want:   []string{"a", "b"},
		},
		{
			name:   "suffix skips an existing name",
			header: []string{"a", "a_1", "a"},
			want:   []string{"a", "a_1", "a_2"},
		},
		{
			name:   "suffix skips a run of existing names",
			header: []string{"a", "a_1", "a_2", "a", "a"},
			want:   []string{"a", "a_1", "a_2", "a_3", "a_4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeHeaders(tt.header)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d names, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("name %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}
