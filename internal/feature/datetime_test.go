package feature

import (
	"testing"
	"time"

	"github.com/samhitalabs/sync/internal/dataset"
)

func timeCol(name string, times ...time.Time) dataset.Column {
	return dataset.Column{
		Name:    name,
		Type:    dataset.TypeDatetime,
		Times:   times,
		Missing: make([]bool, len(times)),
	}
}

// ============================================================================
// ExtractDatetime
// ============================================================================

func TestExtractDatetime(t *testing.T) {
	// A Saturday afternoon in Q3 and a Monday morning in Q1.
	sat := time.Date(2024, 8, 17, 15, 30, 0, 0, time.UTC)
	mon := time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)
	tbl := makeTable(timeCol("ts", sat, mon))

	err := ExtractDatetime(tbl, "ts", []DatetimePart{
		PartYear, PartMonth, PartQuarter, PartHour, PartWeekday, PartIsWeekend,
	})
	if err != nil {
		t.Fatalf("ExtractDatetime: %v", err)
	}

	checks := []struct {
		column string
		want   []int64
	}{
		{"ts_year", []int64{2024, 2024}},
		{"ts_month", []int64{8, 2}},
		{"ts_quarter", []int64{3, 1}},
		{"ts_hour", []int64{15, 9}},
		{"ts_weekday", []int64{5, 0}}, // Monday is 0
		{"ts_isweekend", []int64{1, 0}},
	}
	for _, c := range checks {
		col := mustColumn(t, tbl, c.column)
		for i, w := range c.want {
			if col.Ints[i] != w {
				t.Errorf("%s row %d = %d, want %d", c.column, i, col.Ints[i], w)
			}
		}
	}
}

func TestExtractDatetime_DefaultsToAllParts(t *testing.T) {
	tbl := makeTable(timeCol("ts", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	if err := ExtractDatetime(tbl, "ts", nil); err != nil {
		t.Fatalf("ExtractDatetime: %v", err)
	}
	if want := 1 + len(AllDatetimeParts()); tbl.NumCols() != want {
		t.Errorf("cols = %d, want %d", tbl.NumCols(), want)
	}
}

func TestExtractDatetime_PreservesMissing(t *testing.T) {
	col := timeCol("ts", time.Now(), time.Now())
	col.Missing[1] = true
	tbl := makeTable(col)

	if err := ExtractDatetime(tbl, "ts", []DatetimePart{PartYear}); err != nil {
		t.Fatalf("ExtractDatetime: %v", err)
	}
	out := mustColumn(t, tbl, "ts_year")
	if !out.IsMissing(1) || out.IsMissing(0) {
		t.Error("missing flags should carry over")
	}
}

func TestExtractDatetime_Errors(t *testing.T) {
	tbl := makeTable(
		timeCol("ts", time.Now()),
		floatCol("v", 1),
	)

	if err := ExtractDatetime(tbl, "v", nil); err == nil {
		t.Error("expected error for non-datetime column")
	}
	if err := ExtractDatetime(tbl, "missing", nil); err == nil {
		t.Error("expected error for unknown column")
	}
	if err := ExtractDatetime(tbl, "ts", []DatetimePart{"century"}); err == nil {
		t.Error("expected error for unknown part")
	}
}
