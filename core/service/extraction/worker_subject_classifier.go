package extraction

import (
	"regexp"
	"strings"
)

// ExclusionPhrase vetoes an email when found in its subject or body.
const ExclusionPhrase = "pre placement"

// EventKeywords gate the cleaned subject; one substring hit is enough.
var EventKeywords = []string{
	"event", "register", "seminar", "workshop", "talk",
	"conference", "meetup", "hackathon", "fest",
}

var replyPrefix = regexp.MustCompile(`(?i)^(?:\s*(?:RE|FWD)\s*:\s*)+`)

// CleanSubject removes any run of leading "RE:" / "FWD:" prefixes.
func CleanSubject(subject string) string {
	return strings.TrimSpace(replyPrefix.ReplaceAllString(subject, ""))
}

// IsExcluded reports whether the subject or body mentions the exclusion phrase.
func IsExcluded(subject, body string) bool {
	return strings.Contains(strings.ToLower(subject), ExclusionPhrase) ||
		strings.Contains(strings.ToLower(body), ExclusionPhrase)
}

// MatchKeyword returns the first event keyword contained in the cleaned subject.
func MatchKeyword(cleanedSubject string) (string, bool) {
	lower := strings.ToLower(cleanedSubject)
	for _, kw := range EventKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// IsCandidate reports whether an email may describe an event: not excluded,
// and the cleaned subject carries an event keyword.
func IsCandidate(cleanedSubject, body string) bool {
	if IsExcluded(cleanedSubject, body) {
		return false
	}
	_, ok := MatchKeyword(cleanedSubject)
	return ok
}
