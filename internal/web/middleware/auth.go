package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/samhitalabs/sync/internal/auth"
)

type contextKey string

const userEmailKey contextKey = "user_email"

// SessionAuth returns middleware that validates the session cookie and
// stores the authenticated user's email in the request context.
// Requests without a valid session receive 401 with a JSON body.
func SessionAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				slog.Warn("auth: missing session cookie",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, "not logged in")
				return
			}

			email, err := auth.ParseToken(secret, cookie.Value)
			if err != nil {
				slog.Warn("auth: invalid session token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, "session expired or invalid")
				return
			}

			ctx := context.WithValue(r.Context(), userEmailKey, email)
			if h, ok := ctx.Value(userHolderKey).(*userHolder); ok {
				h.email = email
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserEmail returns the authenticated user's email stored by SessionAuth.
// The second return value is false when the request was not authenticated.
func UserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok && email != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q,"code":"AUTH002"}`, msg)
}
