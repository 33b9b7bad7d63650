// Package dataset turns uploaded files into in-memory tables.
//
// The loader is a pure function from a named byte blob to a Table or a
// classified LoadError. It holds no state between calls; the caller owns
// both the input bytes and the resulting table.
package dataset

import "fmt"

// ColumnType is the inferred scalar type of a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDatetime
	TypeCategorical
)

// String returns the display name of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeDatetime:
		return "datetime"
	case TypeCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the type holds numeric values.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// IsCategoricalLike reports whether the type holds discrete labels.
func (t ColumnType) IsCategoricalLike() bool {
	return t == TypeString || t == TypeCategorical || t == TypeBool
}

// ErrorKind classifies load failures.
type ErrorKind int

const (
	// ErrUnsupportedFormat means the file suffix is not in the supported set,
	// or is explicitly excluded (.db/.sqlite).
	ErrUnsupportedFormat ErrorKind = iota

	// ErrDecodingFailure means no candidate text encoding decoded the content.
	ErrDecodingFailure

	// ErrParseFailure means a structural parser rejected the content.
	ErrParseFailure
)

// String returns the wire name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedFormat:
		return "unsupported_format"
	case ErrDecodingFailure:
		return "decoding_failure"
	case ErrParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// LoadError is the classified failure returned by Load.
// It preserves the underlying parser message for diagnostics.
type LoadError struct {
	Kind   ErrorKind
	Format string // lowercase file suffix, e.g. "xlsx"
	Cause  string // human-readable cause, never empty
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s (.%s): %s", e.Kind, e.Format, e.Cause)
}

// unsupported builds an unsupported-format error for the given suffix.
func unsupported(format, cause string) *LoadError {
	return &LoadError{Kind: ErrUnsupportedFormat, Format: format, Cause: cause}
}

// parseFailed wraps a parser error, preserving its message.
func parseFailed(format string, err error) *LoadError {
	return &LoadError{Kind: ErrParseFailure, Format: format, Cause: err.Error()}
}

// RawUpload is an uploaded file: a name and its byte content.
// The loader never mutates the bytes.
type RawUpload struct {
	Name string
	Data []byte
}
