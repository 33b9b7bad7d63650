package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/samhitalabs/sync/internal/analysis"
	"github.com/samhitalabs/sync/internal/dataset"
	"github.com/samhitalabs/sync/internal/session"
)

// ExportCSV writes the working table as UTF-8 CSV. Missing cells are
// written empty.
func (s *Service) ExportCSV(id uuid.UUID, w io.Writer) error {
	return s.readTable(id, func(t *dataset.Table) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Names()); err != nil {
			return fmt.Errorf("writing csv header: %w", err)
		}
		record := make([]string, t.NumCols())
		for i := 0; i < t.NumRows(); i++ {
			for j := range t.Columns {
				record[j] = t.Columns[j].Cell(i)
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing csv row %d: %w", i, err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// ExportSnapshot writes the working table in the binary snapshot format
// the loader can read back when snapshots are enabled.
func (s *Service) ExportSnapshot(id uuid.UUID, w io.Writer) error {
	return s.readTable(id, func(t *dataset.Table) error {
		return dataset.WriteSnapshot(t, w)
	})
}

// ExportReport writes a plain-text analysis report of the working table.
func (s *Service) ExportReport(id uuid.UUID, w io.Writer) error {
	return s.sessions.Read(id, func(st *session.State) error {
		t := st.Working
		ov := analysis.BuildOverview(t)
		sum := analysis.BuildSummary(t)
		q := analysis.AssessQuality(t)
		insights := analysis.GenerateInsights(t, s.thresholds)

		p := func(format string, args ...any) {
			fmt.Fprintf(w, format+"\n", args...)
		}

		p("Dataset report: %s", st.FileName)
		p("Generated: %s", time.Now().UTC().Format(time.RFC3339))
		p("")
		p("Shape: %d rows x %d columns (%d bytes in memory)", ov.Rows, ov.Cols, ov.MemoryBytes)
		p("Duplicate rows: %d", ov.DuplicateRows)
		p("")

		p("Columns")
		for _, c := range ov.Columns {
			p("  %-24s %-12s nulls=%d (%.1f%%) unique=%d", c.Name, c.Type, c.Nulls, c.NullPct, c.Unique)
		}
		p("")

		if len(sum.Numeric) > 0 {
			p("Numeric summary")
			for _, ns := range sum.Numeric {
				p("  %-24s mean=%.4g std=%.4g min=%.4g q1=%.4g median=%.4g q3=%.4g max=%.4g",
					ns.Column, ns.Mean, ns.Std, ns.Min, ns.Q1, ns.Median, ns.Q3, ns.Max)
			}
			p("")
		}
		if len(sum.Categorical) > 0 {
			p("Categorical summary")
			for _, cs := range sum.Categorical {
				p("  %-24s unique=%d top=%q (%d)", cs.Column, cs.Unique, cs.MostFrequent, cs.MostCount)
			}
			p("")
		}
		if len(sum.Datetime) > 0 {
			p("Datetime summary")
			for _, ds := range sum.Datetime {
				p("  %-24s %s .. %s (%d days)", ds.Column,
					ds.Min.Format("2006-01-02"), ds.Max.Format("2006-01-02"), ds.RangeDays)
			}
			p("")
		}

		p("Quality")
		if len(q.Missing) == 0 && len(q.ConstantColumns) == 0 && len(q.Outliers) == 0 && q.DuplicateRows == 0 {
			p("  no issues found")
		}
		for _, m := range q.Missing {
			p("  missing: %s %d cells (%.1f%%)", m.Column, m.Count, m.Percent)
		}
		for _, c := range q.ConstantColumns {
			p("  constant: %s", c)
		}
		for _, o := range q.Outliers {
			p("  outliers: %s %d values outside [%.4g, %.4g]", o.Column, o.Count, o.Lower, o.Upper)
		}
		p("")

		if len(insights) > 0 {
			p("Insights")
			for _, in := range insights {
				p("  [%s] %s", in.Severity, in.Message)
			}
		}
		return nil
	})
}
