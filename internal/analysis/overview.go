// Package analysis computes summaries, quality checks, hypothesis tests,
// plot data and automated insights over loaded tables. Everything here is
// a pure function of a dataset.Table; no state is kept between calls.
package analysis

import (
	"github.com/samhitalabs/sync/internal/dataset"
)

// ColumnInfo describes one column for the dataset overview panel.
type ColumnInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	NonNull     int     `json:"nonNull"`
	Nulls       int     `json:"nulls"`
	NullPct     float64 `json:"nullPct"`
	Unique      int     `json:"unique"`
	MemoryBytes int64   `json:"memoryBytes"`
}

// Overview is the top-level shape of a loaded dataset.
type Overview struct {
	Rows          int          `json:"rows"`
	Cols          int          `json:"cols"`
	MemoryBytes   int64        `json:"memoryBytes"`
	DuplicateRows int          `json:"duplicateRows"`
	Columns       []ColumnInfo `json:"columns"`
}

// BuildOverview summarizes the table's shape and per-column structure.
func BuildOverview(t *dataset.Table) Overview {
	rows := t.NumRows()
	out := Overview{
		Rows:          rows,
		Cols:          t.NumCols(),
		MemoryBytes:   t.MemoryBytes(),
		DuplicateRows: t.DuplicateRows(),
		Columns:       make([]ColumnInfo, 0, t.NumCols()),
	}

	for i := range t.Columns {
		col := &t.Columns[i]
		nulls := col.MissingCount()
		info := ColumnInfo{
			Name:        col.Name,
			Type:        col.Type.String(),
			NonNull:     rows - nulls,
			Nulls:       nulls,
			Unique:      col.UniqueCount(),
			MemoryBytes: col.MemoryBytes(),
		}
		if rows > 0 {
			info.NullPct = float64(nulls) / float64(rows) * 100
		}
		out.Columns = append(out.Columns, info)
	}
	return out
}
