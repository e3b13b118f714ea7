package mcpserver

import (
	"strings"

	"github.com/starford/warrantdesk/internal/workbook"
)

// ColumnContract describes the spreadsheet layout warrantdesk understands.
func ColumnContract() string {
	var b strings.Builder
	b.WriteString(`# warrantdesk Column Contract

The first worksheet of an .xlsx workbook is read. The first row is the header;
every following non-empty row is one warrant record.

## Columns

Header names are matched case-insensitively after trimming whitespace.
Columns not listed here are kept as-is and written back on export.

`)
	for _, c := range workbook.Columns() {
		b.WriteString("- `" + c + "`")
		if c == workbook.ColumnCase || c == workbook.ColumnName {
			b.WriteString(" (required)")
		}
		b.WriteString("\n")
	}
	b.WriteString(`
## Notes column

The first header containing "observa" (e.g. ` + "`Observações`" + `) holds the notes.
If no such column exists, an ` + "`" + workbook.DefaultNotesColumn + "`" + ` column is added on export.

## Dates

` + "`Nascimento`" + ` accepts Excel date serials and day-first text dates
(dd/mm/yyyy, dd-mm-yyyy, yyyy-mm-dd). Values are shown as dd/mm/yyyy;
blank or unreadable values become ` + "`N/A`" + `.

## Record IDs

A record's ID is the hex MD5 of ` + "`<Processo>_<Nome>`" + `. Rows with the same
case number and name share one ID, and therefore one set of notes and one photo.
`)
	return b.String()
}
