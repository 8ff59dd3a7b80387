package extraction

import "strings"

// DefaultVenue is used when no venue label is found.
const DefaultVenue = "Campus"

// venueRule captures everything after a label up to the end of the line or
// sentence.
func venueRule(name, label string) Rule {
	return regexRule(name, `(?i)\b`+label+`[:\s]+([^.\n]+)`)
}

// VenueRules are ordered from specific labels to generic ones. Verb phrases
// precede the noun labels so "held at Seminar Hall 2" yields the full name
// rather than "2". The bare "at" and "in" triggers occur in ordinary prose and
// only apply when nothing more specific is present.
var VenueRules = RuleTable{
	venueRule("venue", "venue"),
	venueRule("location", "location"),
	venueRule("held-at", `held\s+at`),
	venueRule("conducted-at", `conducted\s+at`),
	venueRule("organized-at", `organized\s+at`),
	venueRule("place", "place"),
	venueRule("hall", "hall"),
	venueRule("auditorium", "auditorium"),
	venueRule("room", "room"),
	venueRule("building", "building"),
	venueRule("at", "at"),
	venueRule("in", "in"),
}

// ExtractVenue returns the first labeled venue, trimmed, or DefaultVenue.
func ExtractVenue(text string) Extracted {
	for _, r := range VenueRules {
		v, ok := r.Match(text)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		return matched(v, r.Name)
	}
	return defaulted(DefaultVenue)
}
