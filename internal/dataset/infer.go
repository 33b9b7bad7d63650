package dataset

import (
	"strconv"
	"strings"
	"time"
)

// datetimeLayouts are tried in order when inferring datetime columns.
// Unambiguous ISO-style layouts come first.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// boolTokens maps accepted boolean spellings to values. Bare digits are
// deliberately excluded so numeric columns never infer as bool.
var boolTokens = map[string]bool{
	"true": true, "false": false,
	"t": true, "f": false,
	"yes": true, "no": false,
	"y": true, "n": false,
}

// buildTable constructs a typed table from a header and string cell rows.
// Short rows are padded with empty cells; long rows are truncated to the
// header width. Each column gets the narrowest type that parses every
// non-empty cell, falling back to string. Inference is best effort and
// never fails.
func buildTable(header []string, rows [][]string) *Table {
	names := normalizeHeaders(header)
	t := &Table{Columns: make([]Column, len(names))}

	for j, name := range names {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		t.Columns[j] = inferColumn(name, cells)
	}
	return t
}

// inferColumn picks a column type for string cells and converts them.
// Empty cells are missing regardless of the inferred type.
func inferColumn(name string, cells []string) Column {
	present := 0
	ints, floats, bools, times := true, true, true, true
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		present++
		if ints {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				ints = false
			}
		}
		if floats {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				floats = false
			}
		}
		if bools {
			if _, ok := boolTokens[strings.ToLower(cell)]; !ok {
				bools = false
			}
		}
		if times {
			if _, ok := parseDatetime(cell); !ok {
				times = false
			}
		}
	}

	// All-empty columns stay string.
	if present == 0 {
		ints, floats, bools, times = false, false, false, false
	}

	missing := make([]bool, len(cells))
	for i, cell := range cells {
		missing[i] = cell == ""
	}

	switch {
	case ints:
		col := Column{Name: name, Type: TypeInt, Ints: make([]int64, len(cells)), Missing: missing}
		for i, cell := range cells {
			if cell != "" {
				col.Ints[i], _ = strconv.ParseInt(cell, 10, 64)
			}
		}
		return col
	case floats:
		col := Column{Name: name, Type: TypeFloat, Floats: make([]float64, len(cells)), Missing: missing}
		for i, cell := range cells {
			if cell != "" {
				col.Floats[i], _ = strconv.ParseFloat(cell, 64)
			}
		}
		return col
	case bools:
		col := Column{Name: name, Type: TypeBool, Bools: make([]bool, len(cells)), Missing: missing}
		for i, cell := range cells {
			if cell != "" {
				col.Bools[i] = boolTokens[strings.ToLower(cell)]
			}
		}
		return col
	case times:
		col := Column{Name: name, Type: TypeDatetime, Times: make([]time.Time, len(cells)), Missing: missing}
		for i, cell := range cells {
			if cell != "" {
				col.Times[i], _ = parseDatetime(cell)
			}
		}
		return col
	default:
		return Column{Name: name, Type: TypeString, Strings: cells, Missing: missing}
	}
}

// parseDatetime tries the supported layouts in order.
func parseDatetime(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// normalizeHeaders replaces empty header cells with stable placeholder
// names and deduplicates repeated names by suffixing an ordinal.
func normalizeHeaders(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	unnamed := 0

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "unnamed_" + strconv.Itoa(unnamed)
			unnamed++
		}
		if n, dup := seen[name]; dup {
			base := name
			// Advance past suffixed names already taken, e.g. an
			// explicit "a_1" column next to duplicated "a" headers.
			for {
				name = base + "_" + strconv.Itoa(n)
				n++
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		names[i] = name
	}
	return names
}
