package web

// handlers_features.go serves the mutating surface: feature engineering
// operations on the working dataset, upload history and data export.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/samhitalabs/sync/internal/feature"
	"github.com/samhitalabs/sync/internal/logging"
	appmw "github.com/samhitalabs/sync/internal/web/middleware"
)

type transformRequest struct {
	Column    string `json:"column"`
	Transform string `json:"transform"`
}

// handleTransform applies a numeric transform and appends the result column.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req transformRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	cols, err := s.service.Transform(id, req.Column, feature.Transform(req.Transform))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, cols)
}

type encodeRequest struct {
	Column string `json:"column"`
	Method string `json:"method"`
}

// handleEncode encodes a categorical column (label, onehot or frequency).
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req encodeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	cols, err := s.service.Encode(id, req.Column, req.Method)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, cols)
}

type datetimeRequest struct {
	Column string   `json:"column"`
	Parts  []string `json:"parts"`
}

// handleDatetime extracts calendar parts from a datetime column.
func (s *Server) handleDatetime(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req datetimeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	cols, err := s.service.ExtractDatetime(id, req.Column, req.Parts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, cols)
}

type binRequest struct {
	Column string `json:"column"`
	Bins   int    `json:"bins"`
	Method string `json:"method"`
}

// handleBin discretizes a numeric column into equal-width or
// equal-frequency bins.
func (s *Server) handleBin(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req binRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	cols, err := s.service.Bin(id, req.Column, req.Bins, req.Method)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, cols)
}

type dropRequest struct {
	Columns []string `json:"columns"`
}

// handleDrop removes columns from the working dataset.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req dropRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	cols, err := s.service.Drop(id, req.Columns)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, cols)
}

// handleReset restores the working dataset to the uploaded original.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	cols, err := s.service.ResetWorking(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, cols)
}

// handleHistory returns the caller's recent uploads.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	email, _ := appmw.UserEmail(r.Context())
	limit := parseIntParam(r, "limit", 50)
	records, err := s.service.History(r.Context(), email, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, map[string]any{"uploads": records})
}

// handleExportCSV streams the working dataset as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", exportDisposition("csv"))
	if err := s.service.ExportCSV(id, w); err != nil {
		// Headers may already be sent, log only.
		s.logExportError(r, err)
	}
}

// handleExportReport streams a plain text analysis report.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", exportDisposition("txt"))
	if err := s.service.ExportReport(id, w); err != nil {
		s.logExportError(r, err)
	}
}

// handleExportSnapshot streams the working dataset in the binary
// snapshot format. Only routed when snapshots are enabled.
func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", exportDisposition("snapshot"))
	if err := s.service.ExportSnapshot(id, w); err != nil {
		s.logExportError(r, err)
	}
}

func exportDisposition(ext string) string {
	name := fmt.Sprintf("dataset-%s.%s", time.Now().Format("20060102-150405"), ext)
	return fmt.Sprintf("attachment; filename=%q", name)
}

func (s *Server) logExportError(r *http.Request, err error) {
	if err == nil {
		return
	}
	// The response is already committed, so the client sees a truncated
	// body rather than an error status.
	logging.FromContext(r.Context()).Error("export failed", "path", r.URL.Path, "error", err)
}
