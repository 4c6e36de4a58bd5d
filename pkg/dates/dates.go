// Package dates normalizes heterogeneous document dates to ISO calendar form
// and computes calendar distances from a caller-supplied "now".
//
// Two-digit years are resolved with a fixed pivot of fifty years around the
// current year. The same pivot applies to birth and expiry dates, so a birth
// year such as 69 read in the 2020s resolves to 2069 rather than 1969.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the canonical output form of every parsed date.
const ISOLayout = "2006-01-02"

// layouts are tried in order after the strict YYMMDD interpretation fails.
// Each padded layout is followed by its unpadded form so single-digit days
// and months keep the same day-first precedence.
var layouts = []string{
	"2006-01-02",
	"2006-1-2",
	"02-01-2006",
	"2-1-2006",
	"01-02-2006",
	"1-2-2006",
	"02/01/2006",
	"2/1/2006",
	"01/02/2006",
	"1/2/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02.01.2006",
	"2.1.2006",
	"20060102",
	"060102",
}

var yymmdd = regexp.MustCompile(`^\d{6}$`)

// Parse returns the ISO form of input, or false when no known layout yields a
// valid calendar date. now supplies the current year for two-digit years.
func Parse(input string, now time.Time) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	if yymmdd.MatchString(trimmed) {
		if t, ok := parseYYMMDD(trimmed, now.Year()); ok {
			return t.Format(ISOLayout), true
		}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(ISOLayout), true
		}
	}
	return "", false
}

// ResolveCentury maps a two-digit year onto a full year relative to currentYear.
// Years more than fifty ahead of the current two-digit year move back a
// century; years more than fifty behind move forward a century.
func ResolveCentury(twoDigitYear, currentYear int) int {
	c2 := currentYear % 100
	century := currentYear - c2
	switch {
	case twoDigitYear-c2 > 50:
		return century - 100 + twoDigitYear
	case c2-twoDigitYear > 50:
		return century + 100 + twoDigitYear
	default:
		return century + twoDigitYear
	}
}

func parseYYMMDD(s string, currentYear int) (time.Time, bool) {
	yy, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	dd, _ := strconv.Atoi(s[4:6])

	year := ResolveCentury(yy, currentYear)
	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (month 13, day 32); reject instead.
	if t.Year() != year || int(t.Month()) != mm || t.Day() != dd {
		return time.Time{}, false
	}
	return t, true
}

// MonthsUntil returns the calendar-month difference between now and an ISO
// date. Past dates yield negative values.
func MonthsUntil(iso string, now time.Time) (int, bool) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(iso))
	if err != nil {
		return 0, false
	}
	return (t.Year()-now.Year())*12 + int(t.Month()) - int(now.Month()), true
}

// Age returns the number of whole years elapsed between an ISO date and now.
func Age(iso string, now time.Time) (int, bool) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(iso))
	if err != nil {
		return 0, false
	}
	years := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		years--
	}
	return years, true
}
