// Package middleware provides HTTP middleware for the analysis server:
// request logging, session-cookie auth and trusted-proxy IP resolution.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/samhitalabs/sync/internal/logging"
)

// Logger logs one structured line per request. Entries carry the chi
// request ID (via logging.FromContext) so a slow upload or a failed
// hypothesis test can be correlated with its handler-level log lines.
//
// Log fields:
//   - method: HTTP method
//   - path: request URL path
//   - status: HTTP response status code
//   - duration_ms: request processing time in milliseconds
//   - ip: client address (RemoteAddr, already resolved by TrustedRealIP)
//   - user: authenticated account, when the route sits behind SessionAuth
//   - user_agent: client user agent string
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		// SessionAuth runs further down the chain; it reports the
		// authenticated user back through this holder.
		holder := &userHolder{}
		r = r.WithContext(context.WithValue(r.Context(), userHolderKey, holder))

		next.ServeHTTP(ww, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if holder.email != "" {
			args = append(args, "user", holder.email)
		}
		logging.FromContext(r.Context()).Info("request", args...)
	})
}

type userHolder struct {
	email string
}

const userHolderKey contextKey = "user_holder"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap provides access to the underlying ResponseWriter for middleware
// that need to inspect it.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
