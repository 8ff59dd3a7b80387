package event

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"event_scraper/core/domain"
	"event_scraper/core/port/in"
	"event_scraper/core/port/out"
	"event_scraper/core/service/extraction"
	"event_scraper/pkg/apperr"

	"github.com/rs/zerolog"
)

var mobileNumber = regexp.MustCompile(`^[0-9]{10}$`)

// Service implements in.EventService
type Service struct {
	store out.EventStore
	now   func() time.Time
	log   zerolog.Logger
}

// NewService creates a new EventService
func NewService(store out.EventStore, now func() time.Time, log zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store: store,
		now:   now,
		log:   log.With().Str("component", "event-service").Logger(),
	}
}

var _ in.EventService = (*Service)(nil)

// =============================================================================
// Queries
// =============================================================================

func (s *Service) ListEvents(ctx context.Context) ([]*domain.EventRecord, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.DatabaseError("list events", err)
	}
	return events, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*domain.EventRecord, error) {
	ev, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("get event", err)
	}
	return ev, nil
}

func (s *Service) ListAttendees(ctx context.Context, id string) ([]domain.Attendee, error) {
	ev, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("get event", err)
	}
	if ev.Attendees == nil {
		return []domain.Attendee{}, nil
	}
	return ev.Attendees, nil
}

// =============================================================================
// Commands
// =============================================================================

// CreateEvent stores a manually submitted event. The date is normalized the
// same way as extracted dates; time and venue fall back to the pipeline
// defaults.
func (s *Service) CreateEvent(ctx context.Context, req *in.CreateEventRequest) (*domain.EventRecord, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.MissingField("title")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperr.MissingField("description")
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		return nil, apperr.MissingField("date")
	}

	link := extraction.CleanLink(req.RegistrationLink)
	rec := &domain.EventRecord{
		Title:            title,
		Description:      description,
		Date:             extraction.CanonicalOrOriginal(date),
		Time:             orDefault(req.Time, domain.DefaultEventTime),
		Venue:            orDefault(req.Venue, domain.DefaultEventVenue),
		RegistrationLink: link,
		CreatedAt:        s.now(),
		Attendees:        []domain.Attendee{},
	}

	id, err := s.store.Insert(ctx, rec)
	if errors.Is(err, out.ErrDuplicateKey) {
		return nil, apperr.AlreadyExists("event")
	}
	if err != nil {
		return nil, apperr.DatabaseError("insert event", err)
	}
	rec.ID = id
	s.log.Info().Str("event_id", id).Str("title", rec.Title).Msg("event created")
	return rec, nil
}

// JoinEvent adds an attendee. A mobile number can join an event once.
func (s *Service) JoinEvent(ctx context.Context, id string, req *in.JoinEventRequest) error {
	name := strings.TrimSpace(req.Name)
	mobile := strings.TrimSpace(req.MobileNumber)
	if name == "" || mobile == "" {
		return apperr.BadRequest("name and mobile number are required")
	}
	if !mobileNumber.MatchString(mobile) {
		return apperr.InvalidInput("mobileNumber", "must be a 10-digit mobile number")
	}

	err := s.store.AddAttendee(ctx, id, domain.Attendee{
		Name:         name,
		MobileNumber: mobile,
		JoinedAt:     s.now(),
	})
	if err != nil {
		return storeError("add attendee", err)
	}
	s.log.Info().Str("event_id", id).Msg("attendee joined")
	return nil
}

// FixLinks re-cleans stored registration links that end in a label word and
// returns how many were changed.
func (s *Service) FixLinks(ctx context.Context) (int, error) {
	events, err := s.store.FindLinksWithTrailingLabel(ctx)
	if err != nil {
		return 0, apperr.DatabaseError("find links", err)
	}

	fixed := 0
	for _, ev := range events {
		link := extraction.CleanLink(ev.RegistrationLink)
		if link == ev.RegistrationLink {
			continue
		}
		if err := s.store.UpdateLink(ctx, ev.ID, link); err != nil {
			return fixed, storeError("update link", err)
		}
		s.log.Info().Str("event_id", ev.ID).Str("link", link).Msg("registration link fixed")
		fixed++
	}
	return fixed, nil
}

func storeError(op string, err error) error {
	switch {
	case errors.Is(err, out.ErrEventNotFound):
		return apperr.NotFound("event")
	case errors.Is(err, out.ErrAlreadyJoined):
		return apperr.Conflict("you have already joined this event")
	default:
		return apperr.DatabaseError(op, err)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
