package out

import (
	"context"
	"errors"

	"event_scraper/core/domain"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrAlreadyJoined = errors.New("attendee already joined")
	ErrDuplicateKey  = errors.New("event with same title and date exists")
)

// EventStore persists event records. The (title, date) identity is unique.
type EventStore interface {
	Exists(ctx context.Context, key domain.DedupKey) (bool, error)
	Insert(ctx context.Context, record *domain.EventRecord) (string, error)

	List(ctx context.Context) ([]*domain.EventRecord, error)
	Get(ctx context.Context, id string) (*domain.EventRecord, error)
	AddAttendee(ctx context.Context, id string, attendee domain.Attendee) error

	// Link repair
	FindLinksWithTrailingLabel(ctx context.Context) ([]*domain.EventRecord, error)
	UpdateLink(ctx context.Context, id, link string) error
}
