package domain

import (
	"strings"
	"time"
)

// Defaults applied when a field could not be extracted from the email body.
const (
	DefaultEventTime  = "12:00 PM"
	DefaultEventVenue = "Campus"
)

// RawEmail is the decoded input of the pipeline: a subject and the plain-text body.
type RawEmail struct {
	ID       string // provider message id, empty for ad-hoc input
	Subject  string
	BodyText string
}

// Attendee is a person who joined an event through the API.
type Attendee struct {
	Name         string    `json:"name"`
	MobileNumber string    `json:"mobileNumber"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// EventRecord is the structured event extracted from one qualifying email.
//
// Date holds the canonical YYYY-MM-DD form when the extracted text could be
// normalized, otherwise the extracted text as found.
type EventRecord struct {
	ID               string     `json:"_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Summary          string     `json:"summary"`
	Date             string     `json:"date"`
	Time             string     `json:"time"`
	Venue            string     `json:"venue"`
	RegistrationLink string     `json:"registrationLink"`
	CreatedAt        time.Time  `json:"createdAt"`
	Attendees        []Attendee `json:"attendees"`
	UsedDefaultDate  bool       `json:"usedDefaultDate"`
}

// Key returns the dedup identity of the record.
func (e *EventRecord) Key() DedupKey {
	return DedupKey{Title: e.Title, Date: e.Date}
}

// HasAttendee reports whether the mobile number already joined.
func (e *EventRecord) HasAttendee(mobile string) bool {
	mobile = strings.TrimSpace(mobile)
	for _, a := range e.Attendees {
		if a.MobileNumber == mobile {
			return true
		}
	}
	return false
}

// DedupKey identifies an event independently of the email it came from.
// Two records with equal keys describe the same event.
type DedupKey struct {
	Title string
	Date  string
}

// RejectReason explains why an email did not produce an event.
type RejectReason string

const (
	RejectNoSubject      RejectReason = "no-subject"
	RejectExcludedTopic  RejectReason = "excluded-topic"
	RejectNoKeywordMatch RejectReason = "no-keyword-match"
	RejectDatePassed     RejectReason = "event-date-passed"
)

func (r RejectReason) String() string {
	return string(r)
}
