package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/samhitalabs/sync/internal/auth"
	"github.com/samhitalabs/sync/internal/dataset"
	"github.com/samhitalabs/sync/internal/session"
)

// ============================================================================
// MapError
// ============================================================================

func TestMapError_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "unsupported format",
			err:      &dataset.LoadError{Kind: dataset.ErrUnsupportedFormat, Format: "xyz", Cause: "no loader for .xyz files"},
			wantCode: "FILE002",
		},
		{
			name:     "decoding failure",
			err:      &dataset.LoadError{Kind: dataset.ErrDecodingFailure, Format: "csv", Cause: "no encoding matched"},
			wantCode: "FILE003",
		},
		{
			name:     "parse failure",
			err:      &dataset.LoadError{Kind: dataset.ErrParseFailure, Format: "xlsx", Cause: "zip: not a valid zip file"},
			wantCode: "FILE004",
		},
		{
			name:     "wrapped load error",
			err:      fmt.Errorf("upload: %w", &dataset.LoadError{Kind: dataset.ErrParseFailure, Format: "json", Cause: "unexpected end of input"}),
			wantCode: "FILE004",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.err)
			if got.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tc.wantCode)
			}
			if got.Message == "" || got.Action == "" {
				t.Errorf("message/action must not be empty: %+v", got)
			}
		})
	}
}

func TestMapError_UnsupportedIncludesFormat(t *testing.T) {
	err := &dataset.LoadError{Kind: dataset.ErrUnsupportedFormat, Format: "xyz", Cause: "no loader for .xyz files"}
	got := MapError(err)
	if !strings.Contains(got.Message, "xyz") {
		t.Errorf("message %q should name the format", got.Message)
	}
}

func TestMapError_TypedErrors(t *testing.T) {
	if got := MapError(session.ErrNotFound); got.Code != "SES001" {
		t.Errorf("session not found code = %s, want SES001", got.Code)
	}
	if got := MapError(fmt.Errorf("login: %w", auth.ErrBadCredentials)); got.Code != "AUTH001" {
		t.Errorf("bad credentials code = %s, want AUTH001", got.Code)
	}
}

func TestMapError_Patterns(t *testing.T) {
	tests := []struct {
		err      string
		wantCode string
	}{
		{"file too large: 1000 bytes, limit 100", "FILE001"},
		{"empty file: data.csv", "FILE005"},
		{"unknown column \"price\"", "ARG001"},
		{"column \"name\" is not numeric", "ARG002"},
		{"column \"age\" is not categorical", "ARG002"},
		{"dial tcp: connection refused", "DB001"},
		{"rate limit exceeded", "RATE001"},
		{"something nobody anticipated", "ERR000"},
	}
	for _, tc := range tests {
		if got := MapError(errors.New(tc.err)); got.Code != tc.wantCode {
			t.Errorf("MapError(%q).Code = %s, want %s", tc.err, got.Code, tc.wantCode)
		}
	}
}

func TestMapError_Nil(t *testing.T) {
	if got := MapError(nil); got.Code != "" {
		t.Errorf("MapError(nil) = %+v, want zero", got)
	}
}

// ============================================================================
// FormatUserError / IsUserFacing
// ============================================================================

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(errors.New("file too large: over limit"))
	if !strings.Contains(got, "FILE001") {
		t.Errorf("formatted error should carry the code: %q", got)
	}
	if !strings.Contains(got, "(Code: ") {
		t.Errorf("unexpected format: %q", got)
	}
	if FormatUserError(nil) != "" {
		t.Error("nil error should format to empty string")
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(session.ErrNotFound) {
		t.Error("session errors are user facing")
	}
	if IsUserFacing(errors.New("segfault in the flux capacitor")) {
		t.Error("unmatched errors are not user facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil is not user facing")
	}
}
