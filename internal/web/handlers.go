package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/samhitalabs/sync/internal/auth"
	"github.com/samhitalabs/sync/internal/dataset"
	"github.com/samhitalabs/sync/internal/logging"
	"github.com/samhitalabs/sync/internal/session"
	appmw "github.com/samhitalabs/sync/internal/web/middleware"
)

// handleIndex serves the single page application shell.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// handleHealth reports liveness for load balancer probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin authenticates credentials and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, errors.New("invalid login payload"))
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, r, auth.ErrBadCredentials)
		return
	}

	if err := s.users.Authenticate(r.Context(), req.Email, req.Password); err != nil {
		s.respondError(w, r, err)
		return
	}

	ttl := s.cfg.Security.SessionTTL
	token, err := auth.IssueToken([]byte(s.cfg.Security.SessionSecret), req.Email, ttl)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Security.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	logging.FromContext(r.Context()).Info("user logged in", "user", req.Email)
	respondJSON(w, map[string]string{"status": "ok"})
}

// handleLogout closes the user's dataset session and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	email, _ := appmw.UserEmail(r.Context())
	if id, ok := s.service.Session(email); ok {
		s.service.CloseSession(id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Security.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, map[string]string{"status": "ok"})
}

// handleUpload reads the uploaded file and opens a dataset session for it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	email, _ := appmw.UserEmail(r.Context())

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, errors.New("file too large or invalid form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(WithRequestMetadata(r.Context(), r), s.cfg.Upload.Timeout)
	defer cancel()

	logger := logging.WithFields(ctx, "file", header.Filename, "user", email)
	logger.Info("upload started", "bytes", len(data))

	result, err := s.service.Upload(ctx, email, dataset.RawUpload{
		Name: header.Filename,
		Data: data,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logger.Info("upload completed", "rows", result.Overview.Rows)
	respondJSON(w, result)
}

// sessionID resolves the caller's active dataset session.
// Responds with an error and returns false when no session exists.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	email, _ := appmw.UserEmail(r.Context())
	id, ok := s.service.Session(email)
	if !ok {
		s.respondError(w, r, session.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into dst.
// Responds with an error and returns false on malformed input.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, r, errors.New("invalid request payload"))
		return false
	}
	return true
}
