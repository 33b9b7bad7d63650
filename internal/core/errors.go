// User-facing error messages with codes for support reference.
//
// Error codes are grouped by category:
//
//   - FILE001-FILE006: file handling (size, format, encoding, parsing)
//   - SES001: dataset session lifecycle
//   - ARG001-ARG003: bad operation arguments
//   - AUTH001: credential failures
//   - DB001-DB003: database connectivity
//   - RATE001: request throttling
//   - ERR000: fallback for unmatched errors
//
// Load failures carry a typed kind and are mapped directly; everything
// else is matched case-insensitively against substring patterns, first
// match wins, so more specific patterns come before general ones.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samhitalabs/sync/internal/auth"
	"github.com/samhitalabs/sync/internal/dataset"
	"github.com/samhitalabs/sync/internal/session"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001, FILE005, FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Split the file or sample it down before uploading",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Select a file that contains data",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select a data file to upload",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Operation Argument Errors (ARG001-ARG002)
	// =========================================================================
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "The named column does not exist in this dataset",
			Action:  "Check the column name against the dataset overview",
			Code:    "ARG001",
		},
	},
	{
		pattern: "is not numeric",
		msg: UserMessage{
			Message: "This operation needs a numeric column",
			Action:  "Pick a column with an integer or float type",
			Code:    "ARG002",
		},
	},
	{
		pattern: "is not categorical",
		msg: UserMessage{
			Message: "This operation needs a categorical column",
			Action:  "Pick a text or categorical column",
			Code:    "ARG002",
		},
	},
	{
		pattern: "is not a datetime",
		msg: UserMessage{
			Message: "This operation needs a datetime column",
			Action:  "Pick a column that was detected as datetime",
			Code:    "ARG002",
		},
	},
	{
		pattern: "payload",
		msg: UserMessage{
			Message: "The request body could not be parsed",
			Action:  "Check the request format and try again",
			Code:    "ARG003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is the fallback when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors from the loader, session store and auth layer map
// directly; other errors fall back to pattern matching.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		return mapLoadError(loadErr)
	}
	if errors.Is(err, session.ErrNotFound) {
		return UserMessage{
			Message: "No dataset is loaded for this session",
			Action:  "Upload a file to start a new analysis",
			Code:    "SES001",
		}
	}
	if errors.Is(err, auth.ErrBadCredentials) {
		return UserMessage{
			Message: "Invalid email or password",
			Action:  "Check your credentials and try again",
			Code:    "AUTH001",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

func mapLoadError(le *dataset.LoadError) UserMessage {
	switch le.Kind {
	case dataset.ErrUnsupportedFormat:
		return UserMessage{
			Message: fmt.Sprintf("Unsupported file format .%s", le.Format),
			Action:  le.Cause,
			Code:    "FILE002",
		}
	case dataset.ErrDecodingFailure:
		return UserMessage{
			Message: "The file's text encoding could not be decoded",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE003",
		}
	default:
		return UserMessage{
			Message: fmt.Sprintf("The .%s file could not be parsed", le.Format),
			Action:  "Check that the file is complete and well formed",
			Code:    "FILE004",
		}
	}
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error maps to a specific message
// rather than the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
