package core

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/samhitalabs/sync/internal/dataset"
	"github.com/samhitalabs/sync/internal/feature"
	"github.com/samhitalabs/sync/internal/session"
)

// mutateTable runs a feature operation against the working table and
// logs it on success.
func (s *Service) mutateTable(id uuid.UUID, op string, fn func(*dataset.Table) error) (ColumnList, error) {
	var cols ColumnList
	err := s.sessions.Mutate(id, func(st *session.State) error {
		if err := fn(st.Working); err != nil {
			return err
		}
		cols = describeColumns(st.Working)
		s.log.Info("feature operation applied",
			slog.String("op", op),
			slog.String("file", st.FileName),
			slog.Int("cols", st.Working.NumCols()),
		)
		return nil
	})
	return cols, err
}

// Transform applies a numeric transform, appending "<column>_<transform>".
func (s *Service) Transform(id uuid.UUID, column string, tr feature.Transform) (ColumnList, error) {
	return s.mutateTable(id, "transform_"+string(tr), func(t *dataset.Table) error {
		return feature.ApplyTransform(t, column, tr)
	})
}

// Encode applies a categorical encoding: "label", "onehot" or "frequency".
func (s *Service) Encode(id uuid.UUID, column, method string) (ColumnList, error) {
	return s.mutateTable(id, "encode_"+method, func(t *dataset.Table) error {
		switch method {
		case "label":
			return feature.LabelEncode(t, column)
		case "onehot":
			return feature.OneHotEncode(t, column)
		case "frequency":
			return feature.FrequencyEncode(t, column)
		default:
			return fmt.Errorf("unknown encoding %q, use label, onehot or frequency", method)
		}
	})
}

// ExtractDatetime appends component columns of a datetime column.
func (s *Service) ExtractDatetime(id uuid.UUID, column string, parts []string) (ColumnList, error) {
	dtParts := make([]feature.DatetimePart, len(parts))
	for i, p := range parts {
		dtParts[i] = feature.DatetimePart(p)
	}
	return s.mutateTable(id, "datetime", func(t *dataset.Table) error {
		return feature.ExtractDatetime(t, column, dtParts)
	})
}

// Bin discretizes a numeric column: "width" for equal-width intervals,
// "frequency" for quantile intervals.
func (s *Service) Bin(id uuid.UUID, column string, bins int, method string) (ColumnList, error) {
	return s.mutateTable(id, "bin_"+method, func(t *dataset.Table) error {
		switch method {
		case "width":
			return feature.BinEqualWidth(t, column, bins)
		case "frequency":
			return feature.BinEqualFrequency(t, column, bins)
		default:
			return fmt.Errorf("unknown binning %q, use width or frequency", method)
		}
	})
}

// Drop removes columns from the working table.
func (s *Service) Drop(id uuid.UUID, columns []string) (ColumnList, error) {
	return s.mutateTable(id, "drop", func(t *dataset.Table) error {
		return feature.DropColumns(t, columns)
	})
}

// ResetWorking discards engineered columns and restores the uploaded
// table.
func (s *Service) ResetWorking(id uuid.UUID) (ColumnList, error) {
	if err := s.sessions.Reset(id); err != nil {
		return ColumnList{}, err
	}
	var cols ColumnList
	err := s.readTable(id, func(t *dataset.Table) error {
		cols = describeColumns(t)
		return nil
	})
	return cols, err
}

// ColumnDesc is one column of the working table as shown to clients.
type ColumnDesc struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ColumnList is the working table's current shape.
type ColumnList struct {
	Rows    int          `json:"rows"`
	Columns []ColumnDesc `json:"columns"`
}

// Columns describes the working table's current columns.
func (s *Service) Columns(id uuid.UUID) (ColumnList, error) {
	var cols ColumnList
	err := s.readTable(id, func(t *dataset.Table) error {
		cols = describeColumns(t)
		return nil
	})
	return cols, err
}

func describeColumns(t *dataset.Table) ColumnList {
	out := ColumnList{Rows: t.NumRows(), Columns: make([]ColumnDesc, 0, t.NumCols())}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, ColumnDesc{Name: c.Name, Type: c.Type.String()})
	}
	return out
}
