package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	notAvailable = "N/A"
	dateLayout   = "02/01/2006"
)

// Day-first layouts are tried before month-first ones. Digit-only text is
// read as a compact date or a bare year before falling back to a serial.
var textLayouts = []string{
	"20060102",
	"2006",
	"02/01/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"01/02/2006",
	"1/2/06",
}

// maxSerial is 31/12/9999, the last date a spreadsheet can hold.
const maxSerial = 2958465

// earliestBirth and the current time bound accepted birth dates.
var earliestBirth = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// FormatDate normalises a birth date cell to dd/mm/yyyy. It accepts common
// textual layouts and Excel serial numbers; anything unparsable, before 1900
// or in the future yields "N/A".
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return notAvailable
	}
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return birthDate(t)
		}
	}
	return formatSerial(raw)
}

// formatSerial converts an Excel serial date.
func formatSerial(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !(serial >= 1 && serial <= maxSerial) {
		return notAvailable
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return notAvailable
	}
	return birthDate(t)
}

func birthDate(t time.Time) string {
	if t.Before(earliestBirth) || t.After(time.Now()) {
		return notAvailable
	}
	return t.Format(dateLayout)
}
