package in

import (
	"context"
	"time"

	"event_scraper/core/domain"
)

// EventService serves the event API.
type EventService interface {
	ListEvents(ctx context.Context) ([]*domain.EventRecord, error)
	GetEvent(ctx context.Context, id string) (*domain.EventRecord, error)
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*domain.EventRecord, error)

	// Attendance
	JoinEvent(ctx context.Context, id string, req *JoinEventRequest) error
	ListAttendees(ctx context.Context, id string) ([]domain.Attendee, error)

	// Maintenance
	FixLinks(ctx context.Context) (int, error)
}

// CreateEventRequest is a manually submitted event.
type CreateEventRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Venue            string `json:"venue"`
	RegistrationLink string `json:"registrationLink"`
}

// JoinEventRequest registers a person for an event.
type JoinEventRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
}

// IngestService runs the email-to-event pipeline over one mailbox batch.
type IngestService interface {
	RunBatch(ctx context.Context) (*BatchReport, error)
}

// BatchReport summarizes one ingest run.
type BatchReport struct {
	RunID      string         `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	Duration   time.Duration  `json:"duration"`
	Found      int            `json:"found"`
	Inserted   int            `json:"inserted"`
	Duplicates int            `json:"duplicates"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	Rejected   map[string]int `json:"rejected"`
}
