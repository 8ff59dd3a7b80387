package extraction

import (
	"net/url"
	"regexp"
	"strings"
)

const urlCapture = `(https?://\S+)`

// LinkRules look for a URL tied to registration intent. When none match,
// ExtractRegistrationLink falls back to the first URL in the text.
var LinkRules = RuleTable{
	regexRule("intent-label", `(?i)(?:register|registration|sign up|signup|apply|join|attend|rsvp)[:\s]+`+urlCapture),
	regexRule("link-label", `(?i)(?:click here|register here|link|url|form)[:\s]+`+urlCapture),
	regexRule("intent-nearby", `(?i)(?:register|registration|sign up|signup)[^\n.]*?\s+`+urlCapture),
	regexRule("form-host", `(?i)(https?://(?:forms\.gle|forms\.office\.com|forms\.google\.com)/\S+)`),
	regexRule("google-docs-form", `(?i)(https?://docs\.google\.com/forms/\S+)`),
}

var (
	anyURL = regexp.MustCompile(urlCapture)

	trailingPunct = regexp.MustCompile(`[.,;:!?]+$`)

	// A label word separated by whitespace, any case.
	spacedLabel = regexp.MustCompile(`(?i)\s+(?:registration|register|here|click|link)$`)

	// A capitalized registration label glued to the URL by HTML-to-text
	// conversion ("https://forms.gle/abcRegistration"). A label right after "/"
	// is a path segment and is kept.
	gluedLabel = regexp.MustCompile(`([^/\s])(?:Registration|Register)$`)
)

// CleanLink strips trailing punctuation and trailing label words from a
// captured URL. It is applied until the value stops changing.
func CleanLink(link string) string {
	link = strings.TrimSpace(link)
	for {
		next := trailingPunct.ReplaceAllString(link, "")
		next = spacedLabel.ReplaceAllString(next, "")
		next = gluedLabel.ReplaceAllString(next, "$1")
		next = strings.TrimSpace(next)
		if next == link {
			return link
		}
		link = next
	}
}

// isAbsoluteURL reports whether link is an absolute http(s) URL with a host.
func isAbsoluteURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ExtractRegistrationLink returns the registration URL in text, or an empty
// Defaulted value when the text contains no usable URL.
func ExtractRegistrationLink(text string) Extracted {
	if v, rule, ok := LinkRules.First(text); ok {
		if link := CleanLink(v); isAbsoluteURL(link) {
			return matched(link, rule)
		}
	}

	for _, m := range anyURL.FindAllString(text, -1) {
		if link := CleanLink(m); isAbsoluteURL(link) {
			return matched(link, "first-url")
		}
	}

	return defaulted("")
}
