// Package workbook reads warrant records from .xlsx workbooks and writes the
// reviewed records back out.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/starford/warrantdesk/internal/apperr"
	"github.com/starford/warrantdesk/internal/checksum"
	"github.com/starford/warrantdesk/internal/models"
)

// Column headers recognised in the input workbook.
const (
	ColumnCase           = "Processo"
	ColumnName           = "Nome"
	ColumnMother         = "Mãe"
	ColumnBirthDate      = "Nascimento"
	ColumnNationalID     = "CPF"
	ColumnStreet         = "Rua"
	ColumnHouseNumber    = "Casa"
	ColumnDistrict       = "Bairro"
	ColumnRegime         = "Regime"
	ColumnOffense        = "Espécie"
	ColumnClassification = "Tipificação"

	// DefaultNotesColumn is appended to the header when no notes column exists.
	DefaultNotesColumn = "observações"

	notesMarker   = "observa"
	unnamedPrefix = "Unnamed: "
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing required column")

type field struct {
	column   string
	required bool
	set      func(*models.Record, string)
}

var fields = []field{
	{ColumnCase, true, func(r *models.Record, v string) { r.CaseID = v }},
	{ColumnName, true, func(r *models.Record, v string) { r.Name = v }},
	{ColumnMother, false, func(r *models.Record, v string) { r.Mother = v }},
	{ColumnBirthDate, false, func(r *models.Record, v string) { r.BirthDate = v }},
	{ColumnNationalID, false, func(r *models.Record, v string) { r.NationalID = v }},
	{ColumnStreet, false, func(r *models.Record, v string) { r.Street = v }},
	{ColumnHouseNumber, false, func(r *models.Record, v string) { r.HouseNumber = v }},
	{ColumnDistrict, false, func(r *models.Record, v string) { r.District = v }},
	{ColumnRegime, false, func(r *models.Record, v string) { r.Regime = v }},
	{ColumnOffense, false, func(r *models.Record, v string) { r.Offense = v }},
	{ColumnClassification, false, func(r *models.Record, v string) { r.Classification = v }},
}

// Columns returns the recognised column headers in display order.
func Columns() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.column
	}
	return out
}

// Sheet is the parsed content of an input workbook.
type Sheet struct {
	SheetName   string
	Header      []string
	NotesColumn int
	Records     []models.Record
}

// Parse reads the first worksheet of an .xlsx workbook. Records come back
// sorted by name, ties broken by source row.
func Parse(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("workbook: open: %w: %v", apperr.ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook: %w: no worksheets", apperr.ErrInvalidWorkbook)
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("workbook: read rows: %w: %v", apperr.ErrInvalidWorkbook, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook: %w: empty worksheet", apperr.ErrInvalidWorkbook)
	}

	header := headerRow(rows)

	positions := make([]int, len(fields))
	for i, fd := range fields {
		positions[i] = indexOf(header, fd.column)
		if fd.required && positions[i] < 0 {
			return nil, fmt.Errorf("workbook: %w: %w: %s", apperr.ErrInvalidWorkbook, ErrMissingColumn, fd.column)
		}
	}

	notesCol := -1
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), notesMarker) {
			notesCol = i
			break
		}
	}
	if notesCol < 0 {
		header = append(header, DefaultNotesColumn)
		notesCol = len(header) - 1
	}
	birthCol := indexOf(header, ColumnBirthDate)

	records := make([]models.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cells := make([]string, len(header))
		copy(cells, row)
		if birthCol >= 0 {
			cells[birthCol] = birthCell(f, name, birthCol, i+2, cells[birthCol])
		}

		rec := models.Record{Row: i, Cells: cells, Notes: cells[notesCol]}
		for j, fd := range fields {
			if positions[j] >= 0 {
				fd.set(&rec, cells[positions[j]])
			}
		}
		if birthCol < 0 {
			rec.BirthDate = notAvailable
		}
		rec.ID = checksum.RecordID(rec.CaseID, rec.Name)
		records = append(records, rec)
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Name < records[b].Name
	})

	return &Sheet{
		SheetName:   name,
		Header:      header,
		NotesColumn: notesCol,
		Records:     records,
	}, nil
}

// headerRow trims the first row and widens it to the widest row so data
// past the last header cell is kept. Blank names become "Unnamed: N".
func headerRow(rows [][]string) []string {
	width := len(rows[0])
	for _, row := range rows[1:] {
		if !blank(row) {
			width = max(width, len(row))
		}
	}
	header := make([]string, width)
	for i := range header {
		if i < len(rows[0]) {
			header[i] = strings.TrimSpace(rows[0][i])
		}
		if header[i] == "" {
			header[i] = fmt.Sprintf("%s%d", unnamedPrefix, i)
		}
	}
	return header
}

// birthCell normalises a birth date. Numeric cells hold Excel serials;
// text cells go through FormatDate.
func birthCell(f *excelize.File, sheet string, col, row int, raw string) string {
	ref, err := excelize.CoordinatesToCellName(col+1, row)
	if err == nil {
		typ, err := f.GetCellType(sheet, ref)
		if err == nil && (typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset) {
			return formatSerial(raw)
		}
	}
	return FormatDate(raw)
}

// indexOf finds a header by case-insensitive name.
func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
