package dataset

import (
	"bytes"
	"errors"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// loadXLSX parses an xlsx workbook, taking the first sheet. Malformed
// workbooks surface as parse failures with the reader's message.
func loadXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, parseFailed("xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseFailed("xlsx", errors.New("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, parseFailed("xlsx", err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return buildTable(rows[0], rows[1:]), nil
}

// loadXLS parses a legacy BIFF workbook, taking the first sheet.
func loadXLS(data []byte) (*Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, parseFailed("xls", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, parseFailed("xls", errors.New("workbook has no sheets"))
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		width := row.LastCol() + 1
		cells := make([]string, width)
		for j := row.FirstCol(); j < width; j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return buildTable(rows[0], rows[1:]), nil
}
