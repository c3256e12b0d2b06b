package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Scalar coercion. Cells arrive with mixed decimal-separator conventions
// ("1.234,56" and "1,234.56" both occur in the same sheet) and several date
// formats. Coercion never fails outward: anything unparseable degrades to 0
// or to "no date".

var (
	// digits '.' 3+digits ',' digits anywhere: period is a thousands
	// separator, comma the decimal point.
	reEuroNumber = regexp.MustCompile(`\d+\.\d{3,},\d+`)
	// the whole string is digits '.' 3+digits: a thousands-separated integer.
	reDotThousands = regexp.MustCompile(`^\d+\.\d{3,}$`)
	// longest leading float prefix, the way parseFloat reads a string.
	reLeadingFloat = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

	reNonMoney = regexp.MustCompile(`[^0-9.,-]`)
)

// toNum coerces a raw cell into a number using the separator heuristic.
// Empty input and parse failures yield 0.
func toNum(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	switch {
	case reEuroNumber.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Contains(s, ",") && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	case reDotThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	return parseLeadingFloat(s)
}

// moneyNum is the looser coercion used when building line-item amounts:
// strip everything that is not a digit, period, comma or minus, replace the
// first comma with a period, parse. It intentionally stays separate from
// toNum; the two paths disagree on inputs like "1.234,56" and the ledger
// totals depend on that disagreement.
func moneyNum(raw string) float64 {
	s := raw
	if strings.TrimSpace(s) == "" {
		s = "0"
	}
	s = reNonMoney.ReplaceAllString(s, "")
	s = strings.Replace(s, ",", ".", 1)
	return parseLeadingFloat(s)
}

// parseLeadingFloat parses the longest numeric prefix of s, so "1.234.56"
// yields 1.234 and "3.5kg" yields 3.5. No prefix yields 0.
func parseLeadingFloat(s string) float64 {
	m := reLeadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return n
}

var (
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	reDMY     = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
)

// Layouts tried for dates that are neither ISO-prefixed nor day/month/year.
var freeFormLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/01/02",
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDateAny parses a delivery date. It tries, in order: ISO-style dates,
// day/month/year (or day-month-year) with two-digit years mapped into
// 2000+, and a short list of free-form layouts. An attempt that produces an
// invalid date falls through to the next one; ok is false when everything
// fails.
func parseDateAny(raw string) (time.Time, bool) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return time.Time{}, false
	}

	if reISODate.MatchString(t) {
		for _, layout := range isoLayouts {
			if d, err := time.ParseInLocation(layout, t, time.Local); err == nil {
				return d, true
			}
		}
	}

	if m := reDMY.FindStringSubmatch(t); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}

	for _, layout := range freeFormLayouts {
		if d, err := time.ParseInLocation(layout, t, time.Local); err == nil {
			return d, true
		}
	}

	return time.Time{}, false
}
