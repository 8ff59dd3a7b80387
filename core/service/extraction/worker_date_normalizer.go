package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CanonicalDate is a calendar date without a time of day.
type CanonicalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) CanonicalDate {
	y, m, d := t.Date()
	return CanonicalDate{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d CanonicalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is strictly earlier than other.
func (d CanonicalDate) Before(other CanonicalDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// DateLayouts are tried in order; the first layout that parses the whole
// cleaned string wins.
//
// Day-first numeric layouts come before month-first ones, so "03/04/2026" is
// read as 3 April. This follows the deployment locale and is a policy, not a
// guarantee: an ambiguous numeric date is never flagged.
//
// Commas are removed from both the input and the layouts before matching, so
// "2 Jan, 2006" and "2 Jan 2006" accept the same strings.
var DateLayouts = []string{
	"2/1/2006",        // DD/MM/YYYY
	"2-1-2006",        // DD-MM-YYYY
	"1/2/2006",        // MM/DD/YYYY
	"1-2-2006",        // MM-DD-YYYY
	"2006-1-2",        // YYYY-MM-DD
	"2 January 2006",  // 01 January 2023
	"2 Jan 2006",      // 01 Jan 2023
	"January 2, 2006", // January 01, 2023
	"Jan 2, 2006",     // Jan 01, 2023
	"2 Jan, 2006",     // 01 Jan, 2023
	"2006/1/2",        // YYYY/MM/DD
}

var (
	cleanedLayouts = func() []string {
		out := make([]string, len(DateLayouts))
		for i, l := range DateLayouts {
			out[i] = strings.ReplaceAll(l, ",", "")
		}
		return out
	}()

	ordinalSuffix = regexp.MustCompile(`(?i)(\d)(?:st|nd|rd|th)\b`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// cleanDateText drops ordinal suffixes and commas and collapses whitespace.
func cleanDateText(text string) string {
	s := ordinalSuffix.ReplaceAllString(text, "$1")
	s = strings.ReplaceAll(s, ",", "")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeDate parses loosely formatted date text into a calendar date.
// ok is false when no layout matches; callers keep the original text.
func NormalizeDate(text string) (date CanonicalDate, ok bool) {
	cleaned := cleanDateText(text)
	if cleaned == "" {
		return CanonicalDate{}, false
	}

	for _, layout := range cleanedLayouts {
		t, err := time.Parse(layout, cleaned)
		if err == nil {
			return DateOf(t), true
		}
	}
	return CanonicalDate{}, false
}

// CanonicalOrOriginal returns the YYYY-MM-DD form of text, or text unchanged
// when it cannot be normalized.
func CanonicalOrOriginal(text string) string {
	if d, ok := NormalizeDate(text); ok {
		return d.String()
	}
	return text
}
