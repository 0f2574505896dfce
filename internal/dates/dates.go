// Package dates normalizes the heterogeneous date text found in the
// start-date column of the recruiting spreadsheet.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISO is the canonical layout candidates are stored and logged with.
const ISO = "2006-01-02"

// parser is one strategy: it either claims the text and returns a calendar
// date, or declines and the next strategy is tried.
type parser func(string) (time.Time, bool)

// parsers are tried in priority order; the first match wins.
var parsers = []parser{
	parseDayMonthYear,
	parseMonthShortYear,
	parseLayout(ISO),
	parseLayout("02.01.2006"),
	parseLayout("02/01/2006"),
	parseLayout("02-01-2006"),
}

// Normalize parses raw spreadsheet date text into a canonical calendar date.
// Empty or whitespace-only input, unknown formats and calendar-invalid
// values (day 32, month 13) all return ok = false; bad dates are a data
// problem for the caller to log, never an error.
func Normalize(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, p := range parsers {
		if d, ok := p(raw); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

var (
	// dd.mm.yyyy, prefix match: trailing annotations in the cell are ignored.
	reDayMonthYear = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	// mm.yy shorthand: month and two-digit year, day implied as the 1st.
	reMonthShortYear = regexp.MustCompile(`^(\d{1,2})\.(\d{2})`)
)

func parseDayMonthYear(s string) (time.Time, bool) {
	m := reDayMonthYear.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return makeDate(year, month, day)
}

func parseMonthShortYear(s string) (time.Time, bool) {
	m := reMonthShortYear.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	// Two-digit year pivot: 00-49 land in the 2000s, 50-99 in the 1900s.
	if year < 50 {
		year += 2000
	} else {
		year += 1900
	}
	return makeDate(year, month, 1)
}

func parseLayout(layout string) parser {
	return func(s string) (time.Time, bool) {
		d, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return d, true
	}
}

// makeDate builds a UTC date and rejects values time.Date would silently
// normalize (e.g. 32.01 becoming 01.02).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
