package extraction

import "time"

// DefaultDateLayout formats today's date when no date is found (DD/MM/YYYY).
const DefaultDateLayout = "02/01/2006"

// DefaultTime is used when no time is found.
const DefaultTime = "12:00 PM"

const monthName = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\b`

// DateRules locate a date substring. Month names are matched case-sensitively
// (capitalized, as written in announcements); the "on"/"date" labels are not.
var DateRules = RuleTable{
	regexRule("numeric", `\b(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`),
	regexRule("day-month-year", `\b(\d{1,2}(?:st|nd|rd|th)?\s+`+monthName+`\s+\d{2,4})\b`),
	regexRule("labeled-day-month", `\b(?i:on|date)\s*[:\-]?\s*(\d{1,2}\s*(?:st|nd|rd|th)?\s+`+monthName+`(?:\s+\d{2,4})?)\b`),
	regexRule("labeled-numeric", `\b(?i:on|date)\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}(?:[-/]\d{2,4})?)\b`),
	regexRule("iso", `\b(\d{4}-\d{2}-\d{2})\b`),
	regexRule("month-day-year", `\b(`+monthName+`\s+\d{1,2}(?:st|nd|rd|th)?\b(?:\s*,?\s*\d{2,4}\b)?)`),
}

// TimeRules locate a time-of-day substring.
var TimeRules = RuleTable{
	regexRule("clock", `\b(\d{1,2}:\d{2}(?:\s*[AaPp][Mm])?)\b`),
	regexRule("hour-meridiem", `\b(\d{1,2}\s*[AaPp][Mm])\b`),
	regexRule("labeled", `\b(?i:at|time)\s*[:\-]?\s*(\d{1,2}(?::\d{2})?(?:\s*[AaPp][Mm])?)\b`),
	regexRule("range", `\b(\d{1,2}\s*(?:to|-|–|—)\s*\d{1,2}\s*[AaPp][Mm])\b`),
}

// DateTime is the result of date and time extraction.
type DateTime struct {
	Date Extracted
	Time Extracted
}

// UsedDefaultDate reports whether today's date was substituted.
func (d DateTime) UsedDefaultDate() bool {
	return d.Date.IsDefaulted()
}

// DateTimeExtractor finds an event date and time in text.
type DateTimeExtractor struct {
	now func() time.Time
}

// NewDateTimeExtractor creates an extractor; now supplies "today" for the
// default date and may be nil for time.Now.
func NewDateTimeExtractor(now func() time.Time) *DateTimeExtractor {
	if now == nil {
		now = time.Now
	}
	return &DateTimeExtractor{now: now}
}

// Extract searches date and time independently: a missing time never
// affects the date and vice versa.
func (x *DateTimeExtractor) Extract(text string) DateTime {
	var out DateTime

	if v, rule, ok := DateRules.First(text); ok {
		out.Date = matched(v, rule)
	} else {
		out.Date = defaulted(x.now().Format(DefaultDateLayout))
	}

	if v, rule, ok := TimeRules.First(text); ok {
		out.Time = matched(v, rule)
	} else {
		out.Time = defaulted(DefaultTime)
	}

	return out
}
