package dataset

import (
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// sniffPrefixSize is how many bytes of a .txt upload are sampled when
// sniffing the field delimiter.
const sniffPrefixSize = 1024

// csvEncodings is the fixed fallback order for .csv uploads. The first
// encoding that decodes the bytes without fault wins.
var csvEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", unicode.UTF8},
	{"latin-1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// Loader converts raw uploads into tables. The zero value is ready to
// use with snapshot loading disabled.
type Loader struct {
	// AllowSnapshots enables loading of .pkl table snapshots. Snapshot
	// decoding trusts the producer of the bytes, so it stays off unless
	// the deployment explicitly accepts uploads from a trusted source.
	AllowSnapshots bool
}

// Load parses an uploaded file into a Table based on its file-name
// suffix. Every failure is returned as a *LoadError; Load never panics
// and never returns a raw parser fault.
func (l Loader) Load(up RawUpload) (*Table, error) {
	suffix := fileSuffix(up.Name)

	switch suffix {
	case "csv":
		return loadCSVWithFallback(up.Data)
	case "tsv":
		return loadDelimited(up.Data, '\t', suffix)
	case "txt":
		return loadDelimited(up.Data, sniffDelimiter(up.Data), suffix)
	case "xlsx":
		return loadXLSX(up.Data)
	case "xls":
		return loadXLS(up.Data)
	case "json":
		return loadJSON(up.Data)
	case "parquet":
		return loadParquet(up.Data)
	case "pkl":
		if !l.AllowSnapshots {
			return nil, unsupported(suffix, "table snapshots are disabled; enable them only for trusted sources")
		}
		return loadSnapshot(up.Data)
	case "db", "sqlite":
		return nil, unsupported(suffix, "SQLite files are not supported directly; export the table to CSV first")
	default:
		return nil, unsupported(suffix, "unsupported file format: ."+suffix)
	}
}

// fileSuffix returns the lowercase suffix after the final dot, or the
// whole lowercased name when there is no dot.
func fileSuffix(name string) string {
	lower := strings.ToLower(name)
	if i := strings.LastIndexByte(lower, '.'); i >= 0 {
		return lower[i+1:]
	}
	return lower
}

// loadCSVWithFallback tries the fixed encoding list in order. Decoding
// faults move on to the next candidate; a structural CSV error is a
// parse failure, since the bytes decoded fine and the content itself is
// malformed.
func loadCSVWithFallback(data []byte) (*Table, error) {
	for _, candidate := range csvEncodings {
		text, ok := decodeStrict(data, candidate.enc)
		if !ok {
			continue
		}
		return parseDelimited(text, ',', "csv")
	}
	return nil, &LoadError{
		Kind:   ErrDecodingFailure,
		Format: "csv",
		Cause:  "content did not decode with any supported encoding (utf-8, latin-1, cp1252, iso-8859-1)",
	}
}

// decodeStrict decodes bytes with the given encoding, reporting failure
// on any invalid sequence instead of substituting replacement runes.
func decodeStrict(data []byte, enc encoding.Encoding) (string, bool) {
	if enc == unicode.UTF8 {
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	// The single-byte charmaps substitute U+FFFD for unmapped bytes
	// rather than erroring; treat substitution as a decoding fault so
	// the fallback order stays meaningful.
	if strings.ContainsRune(string(decoded), utf8.RuneError) {
		return "", false
	}
	return string(decoded), true
}

// loadDelimited parses bytes as delimiter-separated text with no
// encoding fallback. Invalid UTF-8 bytes are replaced, not fatal.
func loadDelimited(data []byte, delim rune, format string) (*Table, error) {
	return parseDelimited(string(data), delim, format)
}

// parseDelimited parses decoded text into a table. The first record is
// the header. Records may be ragged; short rows are padded and long rows
// truncated to the header width by buildTable.
func parseDelimited(text string, delim rune, format string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	// Ragged rows are tolerated so near-valid exports still load.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, parseFailed(format, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return buildTable(records[0], records[1:]), nil
}

// sniffDelimiter picks a field separator for untyped text by scanning a
// fixed-size prefix decoded permissively (invalid bytes dropped).
// Priority: tab, then semicolon, then pipe, defaulting to comma.
func sniffDelimiter(data []byte) rune {
	prefix := data
	if len(prefix) > sniffPrefixSize {
		prefix = prefix[:sniffPrefixSize]
	}
	sample := strings.Map(func(r rune) rune {
		if r == utf8.RuneError {
			return -1
		}
		return r
	}, string(prefix))

	switch {
	case strings.ContainsRune(sample, '\t'):
		return '\t'
	case strings.ContainsRune(sample, ';'):
		return ';'
	case strings.ContainsRune(sample, '|'):
		return '|'
	default:
		return ','
	}
}
