package event

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"event_scraper/core/domain"
	"event_scraper/core/port/out"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
	input   string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.calls++
	f.input = text
	return f.summary, f.err
}

type fakeMail struct {
	ids       []string
	emails    map[string]*domain.RawEmail
	fetchErr  map[string]error
	panicOn   string
	searchErr error
	fetched   []string
	keywords  []string
}

func (f *fakeMail) Search(_ context.Context, keywords []string, max int) ([]string, error) {
	f.keywords = keywords
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.ids) > max {
		return f.ids[:max], nil
	}
	return f.ids, nil
}

func (f *fakeMail) Fetch(_ context.Context, id string) (*domain.RawEmail, error) {
	f.fetched = append(f.fetched, id)
	if id == f.panicOn {
		panic("malformed payload")
	}
	if err := f.fetchErr[id]; err != nil {
		return nil, err
	}
	e, ok := f.emails[id]
	if !ok {
		return nil, fmt.Errorf("unknown message %s", id)
	}
	cp := *e
	return &cp, nil
}

var trailingLabel = regexp.MustCompile(`(?i)(?:registration|register|here|click|link)$`)

type fakeStore struct {
	mu        sync.Mutex
	seq       int
	events    map[string]*domain.EventRecord
	insertErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(map[string]*domain.EventRecord)}
}

func (s *fakeStore) Exists(_ context.Context, key domain.DedupKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Key() == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Insert(_ context.Context, rec *domain.EventRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	for _, e := range s.events {
		if e.Key() == rec.Key() {
			return "", out.ErrDuplicateKey
		}
	}
	s.seq++
	id := fmt.Sprintf("ev-%d", s.seq)
	cp := *rec
	cp.ID = id
	s.events[id] = &cp
	return id, nil
}

func (s *fakeStore) List(_ context.Context) ([]*domain.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var list []*domain.EventRecord
	for _, e := range s.events {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return list, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*domain.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, out.ErrEventNotFound
	}
	return e, nil
}

func (s *fakeStore) AddAttendee(_ context.Context, id string, a domain.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return out.ErrEventNotFound
	}
	if e.HasAttendee(a.MobileNumber) {
		return out.ErrAlreadyJoined
	}
	e.Attendees = append(e.Attendees, a)
	return nil
}

func (s *fakeStore) FindLinksWithTrailingLabel(_ context.Context) ([]*domain.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*domain.EventRecord
	for _, e := range s.events {
		if trailingLabel.MatchString(e.RegistrationLink) {
			list = append(list, e)
		}
	}
	return list, nil
}

func (s *fakeStore) UpdateLink(_ context.Context, id, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return out.ErrEventNotFound
	}
	e.RegistrationLink = link
	return nil
}

func (s *fakeStore) add(rec *domain.EventRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("ev-%d", s.seq)
	rec.ID = id
	s.events[id] = rec
	return id
}

type fakeMarker struct {
	done      map[string]bool
	lookupErr error
}

func newFakeMarker() *fakeMarker {
	return &fakeMarker{done: make(map[string]bool)}
}

func (m *fakeMarker) IsProcessed(_ context.Context, id string) (bool, error) {
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	return m.done[id], nil
}

func (m *fakeMarker) MarkProcessed(_ context.Context, id string) error {
	m.done[id] = true
	return nil
}

var errBoom = errors.New("boom")
