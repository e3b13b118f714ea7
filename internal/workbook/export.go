package workbook

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/starford/warrantdesk/internal/models"
)

// ExportSheetName is the worksheet name of exported workbooks.
const ExportSheetName = "Sheet1"

// Export writes header and records to a new .xlsx workbook, one row per
// record in the given order, with each record's Notes placed in notesColumn.
func Export(header []string, notesColumn int, records []models.Record) ([]byte, error) {
	if notesColumn < 0 || notesColumn >= len(header) {
		return nil, fmt.Errorf("workbook: export: notes column %d out of range", notesColumn)
	}

	f := excelize.NewFile()
	defer f.Close()

	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := writeRow(f, 1, values); err != nil {
		return nil, err
	}
	for i, rec := range records {
		values := make([]any, len(header))
		for j := range values {
			v := ""
			if j < len(rec.Cells) {
				v = rec.Cells[j]
			}
			values[j] = cellValue(v)
		}
		values[notesColumn] = rec.Notes
		if err := writeRow(f, i+2, values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("workbook: export: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("workbook: export: %w", err)
	}
	if err := f.SetSheetRow(ExportSheetName, cell, &values); err != nil {
		return fmt.Errorf("workbook: export row %d: %w", row, err)
	}
	return nil
}

// maxExactInt is the largest integer a spreadsheet number holds exactly.
const maxExactInt = 1<<53 - 1

// cellValue restores numbers read as raw cell values. Only canonical
// spellings convert, so text such as "00123" or "1E3" stays text.
func cellValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		if n <= maxExactInt && n >= -maxExactInt {
			return n
		}
		return s
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) &&
		strconv.FormatFloat(v, 'f', -1, 64) == s {
		return v
	}
	return s
}
