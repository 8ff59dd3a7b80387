// Package extraction locates event fields (date, time, venue, registration link)
// in free-form email text and decides whether an email describes an upcoming event.
//
// Every extractor is an ordered rule table: rules are tried in sequence and the
// first success wins. When nothing matches, a documented default is returned and
// tagged as Defaulted so later stages can tell a found value from a substituted one.
package extraction

import "regexp"

// Provenance tells whether a value came from the text or from a default.
type Provenance int

const (
	Matched Provenance = iota
	Defaulted
)

func (p Provenance) String() string {
	if p == Defaulted {
		return "defaulted"
	}
	return "matched"
}

// Extracted is a value tagged with its provenance.
// Rule names the rule that produced a Matched value.
type Extracted struct {
	Value      string
	Provenance Provenance
	Rule       string
}

// IsDefaulted reports whether the value was substituted.
func (e Extracted) IsDefaulted() bool {
	return e.Provenance == Defaulted
}

func matched(value, rule string) Extracted {
	return Extracted{Value: value, Provenance: Matched, Rule: rule}
}

func defaulted(value string) Extracted {
	return Extracted{Value: value, Provenance: Defaulted}
}

// Rule is one entry of a prioritized rule table.
type Rule struct {
	Name  string
	Match func(text string) (string, bool)
}

// RuleTable is evaluated in order until the first rule matches.
type RuleTable []Rule

// First returns the value of the first matching rule and that rule's name.
func (t RuleTable) First(text string) (value, rule string, ok bool) {
	for _, r := range t {
		if v, hit := r.Match(text); hit {
			return v, r.Name, true
		}
	}
	return "", "", false
}

// Names lists rule names in priority order.
func (t RuleTable) Names() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.Name
	}
	return names
}

// regexRule builds a rule that returns the first capture group of pattern.
func regexRule(name, pattern string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Match: func(text string) (string, bool) {
			m := re.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
	}
}
