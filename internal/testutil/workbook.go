// Package testutil builds in-memory declaration workbooks for tests.
package testutil

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: the first row holds the column names.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook returns the bytes of an .xlsx file holding sheets in order.
// With no sheets the workbook has a single empty "Sheet1".
func Workbook(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, err
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("sheet %s row %d: %w", sheet.Name, r+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Declaration returns a workbook with a SAD sheet (headerCols plus the
// optional header row) and an Items sheet (itemCols plus items). A nil
// column list leaves that sheet out.
func Declaration(headerCols []string, header []string, itemCols []string, items ...[]string) ([]byte, error) {
	var sheets []Sheet
	if headerCols != nil {
		rows := [][]string{headerCols}
		if header != nil {
			rows = append(rows, header)
		}
		sheets = append(sheets, Sheet{Name: "SAD", Rows: rows})
	}
	if itemCols != nil {
		sheets = append(sheets, Sheet{Name: "Items", Rows: append([][]string{itemCols}, items...)})
	}
	return Workbook(sheets...)
}

// FormattedNumbers rewrites cells of sheet in an existing workbook as numbers
// displayed with the built-in number format numFmt (4 is "#,##0.00").
func FormattedNumbers(data []byte, sheet string, numFmt int, cells map[string]float64) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
	if err != nil {
		return nil, err
	}
	for cell, v := range cells {
		if err := f.SetCellFloat(sheet, cell, v, -1, 64); err != nil {
			return nil, fmt.Errorf("sheet %s cell %s: %w", sheet, cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return nil, fmt.Errorf("sheet %s cell %s: %w", sheet, cell, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
