package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// loadJSON parses a records- or columns-oriented tabular JSON document.
//
// Records orientation is an array of objects:
//
//	[{"a": 1, "b": "x"}, {"a": 2, "b": "y"}]
//
// Columns orientation is an object of arrays, or an object of
// index-keyed objects:
//
//	{"a": [1, 2], "b": ["x", "y"]}
//	{"a": {"0": 1, "1": 2}, "b": {"0": "x", "1": "y"}}
func loadJSON(data []byte) (*Table, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, parseFailed("json", err)
	}

	switch v := doc.(type) {
	case []any:
		return jsonRecords(v)
	case map[string]any:
		return jsonColumns(v)
	default:
		return nil, parseFailed("json", errors.New("document is not a JSON array or object"))
	}
}

// jsonRecords builds a table from an array of objects. The header is the
// union of keys in first-appearance order; objects missing a key get a
// missing cell.
func jsonRecords(records []any) (*Table, error) {
	var header []string
	seen := make(map[string]bool)
	rows := make([][]string, 0, len(records))
	index := make(map[string]int)

	for i, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			return nil, parseFailed("json", fmt.Errorf("record %d is not an object", i))
		}
		// Keys of Go maps iterate unordered; sort new keys for a stable header.
		var added []string
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				added = append(added, k)
			}
		}
		sort.Strings(added)
		for _, k := range added {
			index[k] = len(header)
			header = append(header, k)
		}

		row := make([]string, len(header))
		for k, val := range obj {
			row[index[k]] = jsonCell(val)
		}
		rows = append(rows, row)
	}
	if len(header) == 0 {
		return &Table{}, nil
	}
	return buildTable(header, rows), nil
}

// jsonColumns builds a table from an object keyed by column name.
func jsonColumns(obj map[string]any) (*Table, error) {
	header := make([]string, 0, len(obj))
	for k := range obj {
		header = append(header, k)
	}
	sort.Strings(header)

	columns := make([][]string, len(header))
	rowCount := -1

	for j, name := range header {
		cells, err := jsonColumnCells(obj[name])
		if err != nil {
			return nil, parseFailed("json", fmt.Errorf("column %q: %w", name, err))
		}
		if rowCount >= 0 && len(cells) != rowCount {
			return nil, parseFailed("json", fmt.Errorf("column %q has %d values, expected %d", name, len(cells), rowCount))
		}
		rowCount = len(cells)
		columns[j] = cells
	}
	if rowCount <= 0 {
		return buildTable(header, nil), nil
	}

	rows := make([][]string, rowCount)
	for i := range rows {
		rows[i] = make([]string, len(header))
		for j := range header {
			rows[i][j] = columns[j][i]
		}
	}
	return buildTable(header, rows), nil
}

// jsonColumnCells flattens one column value: either an array, or an
// object keyed by integer row index.
func jsonColumnCells(v any) ([]string, error) {
	switch col := v.(type) {
	case []any:
		cells := make([]string, len(col))
		for i, val := range col {
			cells[i] = jsonCell(val)
		}
		return cells, nil
	case map[string]any:
		type entry struct {
			idx  int
			cell string
		}
		entries := make([]entry, 0, len(col))
		for k, val := range col {
			idx, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("row key %q is not an index", k)
			}
			entries = append(entries, entry{idx, jsonCell(val)})
		}
		sort.Slice(entries, func(a, b int) bool { return entries[a].idx < entries[b].idx })
		cells := make([]string, len(entries))
		for i, e := range entries {
			cells[i] = e.cell
		}
		return cells, nil
	default:
		return nil, errors.New("value is not an array or index-keyed object")
	}
}

// jsonCell renders a scalar JSON value as a cell string. Null becomes an
// empty cell (missing); nested structures are re-serialized.
func jsonCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
