package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samhitalabs/sync/internal/analysis"
	"github.com/samhitalabs/sync/internal/dataset"
	"github.com/samhitalabs/sync/internal/session"
)

// Service is the entry point for all dataset operations.
type Service struct {
	pool        *pgxpool.Pool
	sessions    *session.Store
	loader      dataset.Loader
	thresholds  analysis.Thresholds
	maxFileSize int64
	log         *slog.Logger
}

// Options configures a Service.
type Options struct {
	Pool           *pgxpool.Pool
	Sessions       *session.Store
	Thresholds     analysis.Thresholds
	MaxFileSize    int64
	AllowSnapshots bool
	Logger         *slog.Logger
}

// NewService builds a Service from its dependencies.
func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:        opts.Pool,
		sessions:    opts.Sessions,
		loader:      dataset.Loader{AllowSnapshots: opts.AllowSnapshots},
		thresholds:  opts.Thresholds,
		maxFileSize: opts.MaxFileSize,
		log:         log,
	}
}

// UploadResult describes a freshly loaded dataset.
type UploadResult struct {
	SessionID uuid.UUID         `json:"sessionId"`
	FileName  string            `json:"fileName"`
	Overview  analysis.Overview `json:"overview"`
}

// Upload parses raw file bytes into a typed table, shrinks it and opens
// a dataset session for the user. The upload is recorded in history.
func (s *Service) Upload(ctx context.Context, userEmail string, up dataset.RawUpload) (UploadResult, error) {
	start := time.Now()

	if len(up.Data) == 0 {
		return UploadResult{}, fmt.Errorf("empty file: %s", up.Name)
	}
	if s.maxFileSize > 0 && int64(len(up.Data)) > s.maxFileSize {
		return UploadResult{}, fmt.Errorf("file too large: %d bytes, limit %d", len(up.Data), s.maxFileSize)
	}

	tbl, err := s.loader.Load(up)
	if err != nil {
		return UploadResult{}, err
	}
	tbl = dataset.Shrink(tbl)

	st := s.sessions.Create(userEmail, up.Name, tbl)
	overview := analysis.BuildOverview(tbl)

	s.log.Info("dataset loaded",
		slog.String("file", up.Name),
		slog.String("user", userEmail),
		slog.Int("rows", overview.Rows),
		slog.Int("cols", overview.Cols),
		slog.Int64("memory_bytes", overview.MemoryBytes),
		slog.Duration("elapsed", time.Since(start)),
	)

	if err := s.recordUpload(ctx, userEmail, up.Name, overview); err != nil {
		// History is best effort; the session is already live.
		s.log.Error("recording upload history failed",
			slog.String("file", up.Name),
			slog.String("error", err.Error()),
		)
	}
	return UploadResult{SessionID: st.ID, FileName: up.Name, Overview: overview}, nil
}

// Session returns the live session id for a user, if one exists.
func (s *Service) Session(userEmail string) (uuid.UUID, bool) {
	return s.sessions.Find(userEmail)
}

// CloseSession drops a user's dataset from memory.
func (s *Service) CloseSession(id uuid.UUID) {
	s.sessions.Delete(id)
}

// readTable runs fn against the session's working table.
func (s *Service) readTable(id uuid.UUID, fn func(*dataset.Table) error) error {
	return s.sessions.Read(id, func(st *session.State) error {
		return fn(st.Working)
	})
}

// Overview reports shape, memory and per-column null/unique counts.
func (s *Service) Overview(id uuid.UUID) (analysis.Overview, error) {
	var out analysis.Overview
	err := s.readTable(id, func(t *dataset.Table) error {
		out = analysis.BuildOverview(t)
		return nil
	})
	return out, err
}

// Summary reports descriptive statistics per column type.
func (s *Service) Summary(id uuid.UUID) (analysis.Summary, error) {
	var out analysis.Summary
	err := s.readTable(id, func(t *dataset.Table) error {
		out = analysis.BuildSummary(t)
		return nil
	})
	return out, err
}

// Quality reports missing data, duplicates, constants and outliers.
func (s *Service) Quality(id uuid.UUID) (analysis.QualityReport, error) {
	var out analysis.QualityReport
	err := s.readTable(id, func(t *dataset.Table) error {
		out = analysis.AssessQuality(t)
		return nil
	})
	return out, err
}

// Insights runs the automated findings pass with the configured
// thresholds.
func (s *Service) Insights(id uuid.UUID) ([]analysis.Insight, error) {
	var out []analysis.Insight
	err := s.readTable(id, func(t *dataset.Table) error {
		out = analysis.GenerateInsights(t, s.thresholds)
		return nil
	})
	return out, err
}

// Normality tests whether a numeric column looks normally distributed.
func (s *Service) Normality(id uuid.UUID, column string) (analysis.NormalityResult, error) {
	var out analysis.NormalityResult
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.CheckNormality(t, column)
		return innerErr
	})
	return out, err
}

// TTest compares a numeric column's means across the two most frequent
// groups of a discrete column.
func (s *Service) TTest(id uuid.UUID, numeric, group string) (analysis.TTestResult, error) {
	var out analysis.TTestResult
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.WelchT(t, numeric, group)
		return innerErr
	})
	return out, err
}

// ChiSquare tests independence of two discrete columns.
func (s *Service) ChiSquare(id uuid.UUID, column1, column2 string) (analysis.ChiSquareResult, error) {
	var out analysis.ChiSquareResult
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.ChiSquareIndependence(t, column1, column2)
		return innerErr
	})
	return out, err
}

// Correlation computes Pearson r between two numeric columns.
func (s *Service) Correlation(id uuid.UUID, column1, column2 string) (analysis.CorrelationResult, error) {
	var out analysis.CorrelationResult
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.PearsonCorrelation(t, column1, column2)
		return innerErr
	})
	return out, err
}

// Histogram bins a numeric column.
func (s *Service) Histogram(id uuid.UUID, column string, bins int) (analysis.Histogram, error) {
	var out analysis.Histogram
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.BuildHistogram(t, column, bins)
		return innerErr
	})
	return out, err
}

// BoxPlot computes box plot geometry for a numeric column.
func (s *Service) BoxPlot(id uuid.UUID, column string) (analysis.BoxPlot, error) {
	var out analysis.BoxPlot
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.BuildBoxPlot(t, column)
		return innerErr
	})
	return out, err
}

// ValueCounts returns the most frequent levels of a discrete column.
func (s *Service) ValueCounts(id uuid.UUID, column string, topN int) (analysis.ValueCounts, error) {
	var out analysis.ValueCounts
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.BuildValueCounts(t, column, topN)
		return innerErr
	})
	return out, err
}

// TimeSeries orders a numeric column along a datetime column.
func (s *Service) TimeSeries(id uuid.UUID, dateColumn, valueColumn string) (analysis.TimeSeries, error) {
	var out analysis.TimeSeries
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.BuildTimeSeries(t, dateColumn, valueColumn)
		return innerErr
	})
	return out, err
}

// Scatter returns paired points of two numeric columns.
func (s *Service) Scatter(id uuid.UUID, columnX, columnY string) (analysis.Scatter, error) {
	var out analysis.Scatter
	err := s.readTable(id, func(t *dataset.Table) error {
		var innerErr error
		out, innerErr = analysis.BuildScatter(t, columnX, columnY)
		return innerErr
	})
	return out, err
}
