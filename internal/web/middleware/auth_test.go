package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samhitalabs/sync/internal/auth"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func authedHandler(t *testing.T, wantEmail string, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		email, ok := UserEmail(r.Context())
		if !ok {
			t.Error("UserEmail not set in context")
		}
		if email != wantEmail {
			t.Errorf("email = %q, want %q", email, wantEmail)
		}
	})
}

func TestSessionAuth_ValidToken(t *testing.T) {
	token, err := auth.IssueToken(testSecret, "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	called := false
	handler := SessionAuth(testSecret)(authedHandler(t, "user@example.com", &called))

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("next handler was not called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSessionAuth_MissingCookie(t *testing.T) {
	called := false
	handler := SessionAuth(testSecret)(authedHandler(t, "", &called))

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("next handler was called without a session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSessionAuth_WrongSecret(t *testing.T) {
	token, err := auth.IssueToken([]byte("another-secret-another-secret-32"), "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	called := false
	handler := SessionAuth(testSecret)(authedHandler(t, "", &called))

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("next handler was called with a forged token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUserEmail_Unset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserEmail(req.Context()); ok {
		t.Error("UserEmail reported ok on an empty context")
	}
}
