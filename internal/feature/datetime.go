package feature

import (
	"fmt"
	"time"

	"github.com/samhitalabs/sync/internal/dataset"
)

// DatetimePart names one extractable component of a datetime column.
type DatetimePart string

const (
	PartYear      DatetimePart = "year"
	PartMonth     DatetimePart = "month"
	PartDay       DatetimePart = "day"
	PartHour      DatetimePart = "hour"
	PartQuarter   DatetimePart = "quarter"
	PartWeekday   DatetimePart = "weekday"
	PartIsWeekend DatetimePart = "isweekend"
)

// AllDatetimeParts lists every supported part in extraction order.
func AllDatetimeParts() []DatetimePart {
	return []DatetimePart{
		PartYear, PartMonth, PartDay, PartHour,
		PartQuarter, PartWeekday, PartIsWeekend,
	}
}

// ExtractDatetime appends one integer column per requested part, named
// "<column>_<part>". Weekday runs Monday 0 through Sunday 6; isweekend
// is 1 for Saturday and Sunday.
func ExtractDatetime(t *dataset.Table, column string, parts []DatetimePart) error {
	col, ok := t.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	if col.Type != dataset.TypeDatetime {
		return fmt.Errorf("column %q is not a datetime column", column)
	}
	if len(parts) == 0 {
		parts = AllDatetimeParts()
	}

	extractors := make([]func(time.Time) int64, len(parts))
	for i, p := range parts {
		fn, err := partExtractor(p)
		if err != nil {
			return err
		}
		extractors[i] = fn
	}

	n := col.Len()
	for i, p := range parts {
		out := dataset.Column{
			Name:    fmt.Sprintf("%s_%s", column, p),
			Type:    dataset.TypeInt,
			Ints:    make([]int64, n),
			Missing: make([]bool, n),
			Width:   partWidth(p),
		}
		for r := 0; r < n; r++ {
			if col.IsMissing(r) {
				out.Missing[r] = true
				continue
			}
			out.Ints[r] = extractors[i](col.Times[r])
		}
		if err := t.AddColumn(out); err != nil {
			return err
		}
	}
	return nil
}

func partExtractor(p DatetimePart) (func(time.Time) int64, error) {
	switch p {
	case PartYear:
		return func(ts time.Time) int64 { return int64(ts.Year()) }, nil
	case PartMonth:
		return func(ts time.Time) int64 { return int64(ts.Month()) }, nil
	case PartDay:
		return func(ts time.Time) int64 { return int64(ts.Day()) }, nil
	case PartHour:
		return func(ts time.Time) int64 { return int64(ts.Hour()) }, nil
	case PartQuarter:
		return func(ts time.Time) int64 { return int64(ts.Month()-1)/3 + 1 }, nil
	case PartWeekday:
		return func(ts time.Time) int64 { return int64((ts.Weekday() + 6) % 7) }, nil
	case PartIsWeekend:
		return func(ts time.Time) int64 {
			if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
				return 1
			}
			return 0
		}, nil
	default:
		return nil, fmt.Errorf("unknown datetime part %q", p)
	}
}

func partWidth(p DatetimePart) int {
	switch p {
	case PartYear:
		return 16
	default:
		return 8
	}
}
