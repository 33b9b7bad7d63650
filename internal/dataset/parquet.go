package dataset

import (
	"bytes"
	"errors"
	"io"

	"github.com/parquet-go/parquet-go"
)

// loadParquet parses columnar binary content. The file's leaf columns
// become table columns in schema order; values are rendered to cells and
// re-typed by the shared inference pass so parquet uploads behave like
// every other format.
func loadParquet(data []byte) (*Table, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, parseFailed("parquet", err)
	}

	fields := f.Schema().Fields()
	if len(fields) == 0 {
		return nil, parseFailed("parquet", errors.New("file has no columns"))
	}
	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = field.Name()
	}

	var out [][]string
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, 128)
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				cells := make([]string, len(header))
				for _, v := range row {
					col := int(v.Column())
					if col < 0 || col >= len(cells) || v.IsNull() {
						continue
					}
					cells[col] = v.String()
				}
				out = append(out, cells)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				rows.Close()
				return nil, parseFailed("parquet", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, parseFailed("parquet", err)
		}
	}

	return buildTable(header, out), nil
}
