package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// ============================================================================
// Suffix Dispatch Tests
// ============================================================================

func TestLoad_UnsupportedSuffix(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantIn   string
	}{
		{
			name:     "unknown extension named in error",
			fileName: "data.xyz",
			wantIn:   "xyz",
		},
		{
			name:     "no extension",
			fileName: "README",
			wantIn:   "readme",
		},
		{
			name:     "uppercase extension lowered",
			fileName: "data.XYZ",
			wantIn:   "xyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Loader{}.Load(RawUpload{Name: tt.fileName, Data: []byte("a,b\n1,2")})
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %v", err)
			}
			if le.Kind != ErrUnsupportedFormat {
				t.Errorf("expected ErrUnsupportedFormat, got %v", le.Kind)
			}
			if !strings.Contains(le.Error(), tt.wantIn) {
				t.Errorf("error %q does not name suffix %q", le.Error(), tt.wantIn)
			}
		})
	}
}

func TestLoad_SQLiteRejectedWithGuidance(t *testing.T) {
	for _, ext := range []string{"db", "sqlite"} {
		t.Run(ext, func(t *testing.T) {
			// Deliberately junk bytes: the loader must reject without
			// ever attempting to open the content.
			_, err := Loader{}.Load(RawUpload{Name: "data." + ext, Data: []byte{0x00, 0x01, 0x02}})
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %v", err)
			}
			if le.Kind != ErrUnsupportedFormat {
				t.Errorf("expected ErrUnsupportedFormat, got %v", le.Kind)
			}
			if !strings.Contains(le.Cause, "CSV") {
				t.Errorf("expected export-to-CSV guidance, got %q", le.Cause)
			}
		})
	}
}

// ============================================================================
// CSV Encoding Fallback Tests
// ============================================================================

func TestLoad_CSV_UTF8(t *testing.T) {
	table, err := Loader{}.Load(RawUpload{Name: "data.csv", Data: []byte("name,age\nréné,41\nmia,7\n")})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.NumCols() != 2 || table.NumRows() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", table.NumCols(), table.NumRows())
	}
	col, _ := table.Column("name")
	if got := col.Cell(0); got != "réné" {
		t.Errorf("expected réné, got %q", got)
	}
	age, _ := table.Column("age")
	if age.Type != TypeInt {
		t.Errorf("expected int column, got %v", age.Type)
	}
}

func TestLoad_CSV_Latin1Fallback(t *testing.T) {
	// 0xE9 is é in Latin-1 and an invalid standalone byte in UTF-8.
	data := []byte("name,qty\ncaf\xe9,3\n")
	table, err := Loader{}.Load(RawUpload{Name: "data.csv", Data: data})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	col, _ := table.Column("name")
	if got := col.Cell(0); got != "café" {
		t.Errorf("expected café via latin-1 fallback, got %q", got)
	}
}

func TestLoad_CSV_Windows1252Fallback(t *testing.T) {
	// 0x93/0x94 are curly quotes in cp1252 and C1 controls in Latin-1;
	// both decode, so the earlier latin-1 candidate wins. The point is
	// that the bytes load without a decoding failure.
	data := []byte("note\n\x93quoted\x94\n")
	table, err := Loader{}.Load(RawUpload{Name: "notes.csv", Data: data})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", table.NumRows())
	}
}

// ============================================================================
// TSV and TXT Sniffing Tests
// ============================================================================

func TestLoad_TSV(t *testing.T) {
	table, err := Loader{}.Load(RawUpload{Name: "data.tsv", Data: []byte("a\tb\tc\n1\t2\t3\n")})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.NumCols() != 3 || table.NumRows() != 1 {
		t.Fatalf("expected 3x1, got %dx%d", table.NumCols(), table.NumRows())
	}
}

func TestLoad_TXT_DelimiterSniffing(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCols int
		wantRows int
	}{
		{
			name:     "tab wins over semicolon",
			content:  "a\tb;x\tc\n1\t2\t3\n",
			wantCols: 3,
			wantRows: 1,
		},
		{
			name:     "semicolons only",
			content:  "a;b;c\n1;2;3",
			wantCols: 3,
			wantRows: 1,
		},
		{
			name:     "pipes only",
			content:  "a|b\n1|2\n3|4\n",
			wantCols: 2,
			wantRows: 2,
		},
		{
			name:     "defaults to comma",
			content:  "a,b,c\n1,2,3\n",
			wantCols: 3,
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Loader{}.Load(RawUpload{Name: "data.txt", Data: []byte(tt.content)})
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if table.NumCols() != tt.wantCols {
				t.Errorf("expected %d columns, got %d", tt.wantCols, table.NumCols())
			}
			if table.NumRows() != tt.wantRows {
				t.Errorf("expected %d rows, got %d", tt.wantRows, table.NumRows())
			}
		})
	}
}

func TestSniffDelimiter_PrefixOnly(t *testing.T) {
	// A tab past the 1024-byte sample must not influence the choice.
	content := strings.Repeat("x", sniffPrefixSize) + "\t"
	if got := sniffDelimiter([]byte(content)); got != ',' {
		t.Errorf("expected comma for tab beyond prefix, got %q", got)
	}
}

func TestSniffDelimiter_InvalidBytesDropped(t *testing.T) {
	// Invalid UTF-8 bytes in the sample are dropped, not fatal.
	data := append([]byte{0xff, 0xfe}, []byte("a;b;c\n")...)
	if got := sniffDelimiter(data); got != ';' {
		t.Errorf("expected semicolon, got %q", got)
	}
}

// ============================================================================
// Spreadsheet Tests
// ============================================================================

func buildXLSX(t *testing.T, cells [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range cells {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestLoad_XLSX(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"city", "pop"},
		{"oslo", 709037},
		{"bergen", 291940},
	})

	table, err := Loader{}.Load(RawUpload{Name: "cities.xlsx", Data: data})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.NumCols() != 2 || table.NumRows() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", table.NumCols(), table.NumRows())
	}
	pop, ok := table.Column("pop")
	if !ok {
		t.Fatal("pop column missing")
	}
	if pop.Type != TypeInt {
		t.Errorf("expected int column, got %v", pop.Type)
	}
	if pop.Ints[0] != 709037 {
		t.Errorf("expected 709037, got %d", pop.Ints[0])
	}
}

func TestLoad_MalformedSpreadsheet(t *testing.T) {
	for _, ext := range []string{"xlsx", "xls"} {
		t.Run(ext, func(t *testing.T) {
			_, err := Loader{}.Load(RawUpload{Name: "bad." + ext, Data: []byte("definitely not a workbook")})
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %v", err)
			}
			if le.Kind != ErrParseFailure {
				t.Errorf("expected ErrParseFailure, got %v", le.Kind)
			}
			if le.Cause == "" {
				t.Error("expected non-empty cause")
			}
		})
	}
}

// ============================================================================
// JSON Tests
// ============================================================================

func TestLoad_JSON_Records(t *testing.T) {
	data := []byte(`[{"a": 1, "b": "x"}, {"a": 2, "b": "y"}, {"a": 3}]`)
	table, err := Loader{}.Load(RawUpload{Name: "data.json", Data: data})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.NumCols() != 2 || table.NumRows() != 3 {
		t.Fatalf("expected 2x3, got %dx%d", table.NumCols(), table.NumRows())
	}
	b, _ := table.Column("b")
	if !b.IsMissing(2) {
		t.Error("expected missing cell for absent key")
	}
	a, _ := table.Column("a")
	if a.Type != TypeInt {
		t.Errorf("expected int column, got %v", a.Type)
	}
}

func TestLoad_JSON_Columns(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "object of arrays",
			data: `{"a": [1, 2], "b": ["x", "y"]}`,
		},
		{
			name: "object of index-keyed objects",
			data: `{"a": {"0": 1, "1": 2}, "b": {"1": "y", "0": "x"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Loader{}.Load(RawUpload{Name: "data.json", Data: []byte(tt.data)})
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if table.NumCols() != 2 || table.NumRows() != 2 {
				t.Fatalf("expected 2x2, got %dx%d", table.NumCols(), table.NumRows())
			}
			b, _ := table.Column("b")
			if got := b.Cell(1); got != "y" {
				t.Errorf("expected y in row order, got %q", got)
			}
		})
	}
}

func TestLoad_JSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "truncated", data: `[{"a": 1`},
		{name: "scalar document", data: `42`},
		{name: "ragged columns", data: `{"a": [1, 2], "b": ["x"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Loader{}.Load(RawUpload{Name: "data.json", Data: []byte(tt.data)})
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %v", err)
			}
			if le.Kind != ErrParseFailure {
				t.Errorf("expected ErrParseFailure, got %v", le.Kind)
			}
		})
	}
}

// ============================================================================
// Parquet Tests
// ============================================================================

func TestLoad_Parquet(t *testing.T) {
	type row struct {
		Name  string  `parquet:"name"`
		Score float64 `parquet:"score"`
	}
	buf := new(bytes.Buffer)
	if err := parquet.Write(buf, []row{
		{Name: "ada", Score: 9.5},
		{Name: "bo", Score: 7.25},
	}); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	table, err := Loader{}.Load(RawUpload{Name: "scores.parquet", Data: buf.Bytes()})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.NumCols() != 2 || table.NumRows() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", table.NumCols(), table.NumRows())
	}
	score, ok := table.Column("score")
	if !ok {
		t.Fatal("score column missing")
	}
	if score.Type != TypeFloat {
		t.Errorf("expected float column, got %v", score.Type)
	}
	if score.Floats[1] != 7.25 {
		t.Errorf("expected 7.25, got %v", score.Floats[1])
	}
}

func TestLoad_Parquet_Malformed(t *testing.T) {
	_, err := Loader{}.Load(RawUpload{Name: "bad.parquet", Data: []byte("not parquet at all")})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Kind != ErrParseFailure {
		t.Errorf("expected ErrParseFailure, got %v", le.Kind)
	}
}

// ============================================================================
// Snapshot Tests
// ============================================================================

func TestLoad_Snapshot_RoundTrip(t *testing.T) {
	src, err := Loader{}.Load(RawUpload{Name: "data.csv", Data: []byte("a,b\n1,x\n2,y\n")})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(src, &buf); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	got, err := Loader{AllowSnapshots: true}.Load(RawUpload{Name: "data.pkl", Data: buf.Bytes()})
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if got.NumCols() != src.NumCols() || got.NumRows() != src.NumRows() {
		t.Fatalf("shape changed through snapshot: %dx%d vs %dx%d",
			got.NumCols(), got.NumRows(), src.NumCols(), src.NumRows())
	}
	for j := range src.Columns {
		for i := 0; i < src.NumRows(); i++ {
			if src.Columns[j].Cell(i) != got.Columns[j].Cell(i) {
				t.Errorf("cell (%d,%d) changed: %q vs %q", i, j, src.Columns[j].Cell(i), got.Columns[j].Cell(i))
			}
		}
	}
}

func TestLoad_Snapshot_DisabledByDefault(t *testing.T) {
	_, err := Loader{}.Load(RawUpload{Name: "data.pkl", Data: []byte("anything")})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Kind != ErrUnsupportedFormat {
		t.Errorf("expected ErrUnsupportedFormat when snapshots are disabled, got %v", le.Kind)
	}
}

func TestLoad_Snapshot_Malformed(t *testing.T) {
	_, err := Loader{AllowSnapshots: true}.Load(RawUpload{Name: "data.pkl", Data: []byte("junk")})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Kind != ErrParseFailure {
		t.Errorf("expected ErrParseFailure, got %v", le.Kind)
	}
}
