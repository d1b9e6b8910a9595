package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateTime is the normalized form of a statement date cell.
// Date is "" when the input could not be parsed; Time always carries a value.
type DateTime struct {
	Date string // "2006-01-02"
	Time string // "15:04"
}

// dd/mm/yyyy or dd-mm-yyyy, optionally followed by hh:mm.
var flexibleDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})(?:\s+(\d{1,2}):(\d{1,2}))?`)

// ParseFlexibleDate parses the date formats Spanish bank exports use.
// Day, month, hour and minute are zero-padded, so "1/2/2024" and
// "01/02/2024" normalize to the same date.
func ParseFlexibleDate(s string) DateTime {
	clean := strings.TrimSpace(s)
	m := flexibleDate.FindStringSubmatch(clean)
	if m == nil {
		return DateTime{Time: "00:00"}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	dt := DateTime{
		Date: fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Time: "00:00",
	}
	if m[4] != "" && m[5] != "" {
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		dt.Time = fmt.Sprintf("%02d:%02d", hour, minute)
	}
	return dt
}

// Spreadsheets store dates as day counts since 1899-12-30; the Unix epoch
// sits 25569 days into that count.
const excelEpochOffset = 25569

// DateFromSerial converts an Excel serial day number to an ISO date.
func DateFromSerial(serial int64) string {
	epochDays := serial - excelEpochOffset
	return time.Unix(epochDays*86400, 0).UTC().Format("2006-01-02")
}

// ParseCellDate parses a date cell that may hold either a formatted date
// string or a raw spreadsheet serial number.
func ParseCellDate(s string) DateTime {
	if dt := ParseFlexibleDate(s); dt.Date != "" {
		return dt
	}
	if serial, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil && serial > 0 {
		return DateTime{Date: DateFromSerial(serial), Time: "00:00"}
	}
	return DateTime{Time: "00:00"}
}
