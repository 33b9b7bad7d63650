package web

// handlers_analysis.go serves the read-only analysis surface: dataset
// summaries, hypothesis tests and plot data. All endpoints operate on
// the caller's active dataset session.

import (
	"net/http"
	"strconv"
)

// handleColumns returns the working dataset's column list.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	cols, err := s.service.Columns(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, cols)
}

// handleOverview returns shape, dtypes and null counts.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	ov, err := s.service.Overview(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, ov)
}

// handleSummary returns descriptive statistics per column.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	sum, err := s.service.Summary(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, sum)
}

// handleQuality returns the data quality report.
func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	q, err := s.service.Quality(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, q)
}

// handleInsights returns rule-based findings about the dataset.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	ins, err := s.service.Insights(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, map[string]any{"insights": ins})
}

type normalityRequest struct {
	Column string `json:"column"`
}

// handleNormality runs Kolmogorov-Smirnov and Jarque-Bera tests.
func (s *Server) handleNormality(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req normalityRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	res, err := s.service.Normality(id, req.Column)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, res)
}

type ttestRequest struct {
	Numeric string `json:"numeric"`
	Group   string `json:"group"`
}

// handleTTest runs Welch's t-test across the two largest groups.
func (s *Server) handleTTest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req ttestRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	res, err := s.service.TTest(id, req.Numeric, req.Group)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, res)
}

type columnPairRequest struct {
	Column1 string `json:"column1"`
	Column2 string `json:"column2"`
}

// handleChiSquare runs a chi-square test of independence.
func (s *Server) handleChiSquare(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req columnPairRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	res, err := s.service.ChiSquare(id, req.Column1, req.Column2)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, res)
}

// handleCorrelation computes Pearson correlation with significance.
func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req columnPairRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	res, err := s.service.Correlation(id, req.Column1, req.Column2)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, res)
}

// handleHistogram returns binned counts for a numeric column.
func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	column := r.URL.Query().Get("column")
	bins := parseIntParam(r, "bins", 0)
	h, err := s.service.Histogram(id, column, bins)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, h)
}

// handleBoxPlot returns five-number summary data for a numeric column.
func (s *Server) handleBoxPlot(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	column := r.URL.Query().Get("column")
	b, err := s.service.BoxPlot(id, column)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, b)
}

// handleValueCounts returns the top level frequencies of a categorical column.
func (s *Server) handleValueCounts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	column := r.URL.Query().Get("column")
	topN := parseIntParam(r, "top", 0)
	vc, err := s.service.ValueCounts(id, column, topN)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, vc)
}

// handleScatter returns paired points for two numeric columns.
func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	x := r.URL.Query().Get("x")
	y := r.URL.Query().Get("y")
	sc, err := s.service.Scatter(id, x, y)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, sc)
}

// handleTimeSeries returns a numeric column ordered along a datetime column.
func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	value := r.URL.Query().Get("value")
	ts, err := s.service.TimeSeries(id, date, value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, ts)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
