package event

import (
	"context"
	"strings"
	"testing"

	"event_scraper/core/domain"

	"github.com/rs/zerolog"
)

func newTestAssembler(s *fakeSummarizer) *Assembler {
	if s == nil {
		return NewAssembler(nil, fixedNow, zerolog.Nop())
	}
	return NewAssembler(s, fixedNow, zerolog.Nop())
}

func TestAssemblerRejections(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    domain.RejectReason
	}{
		{"empty subject", "", "Workshop on 20/03/2026", domain.RejectNoSubject},
		{"blank subject", "   ", "Workshop on 20/03/2026", domain.RejectNoSubject},
		{"excluded subject", "Pre Placement Talk", "Date: 20/03/2026", domain.RejectExcludedTopic},
		{"excluded body", "Company Talk", "This PRE PLACEMENT talk is on 20/03/2026", domain.RejectExcludedTopic},
		{"excluded despite past date", "pre placement workshop", "on 01/01/2020", domain.RejectExcludedTopic},
		{"no keyword", "Library timings", "Open 9 to 5", domain.RejectNoKeywordMatch},
		{"only prefixes", "RE: FWD:", "event", domain.RejectNoKeywordMatch},
		{"past date", "Tech Talk", "Join us on 10/03/2026 at 5 PM", domain.RejectDatePassed},
		{"unparseable date", "Coding Hackathon", "Final round on 7/4, see you there.", domain.RejectDatePassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := &fakeSummarizer{summary: "unused"}
			d := newTestAssembler(sum).Assemble(context.Background(), &domain.RawEmail{
				ID:       "m1",
				Subject:  tt.subject,
				BodyText: tt.body,
			})

			if d.Accepted() {
				t.Fatalf("expected rejection, got record %+v", d.Record)
			}
			if d.Reason != tt.want {
				t.Errorf("reason = %q, want %q", d.Reason, tt.want)
			}
			if d.Final() != StageRejected {
				t.Errorf("final stage = %s, want rejected", d.Final())
			}
			if sum.calls != 0 {
				t.Errorf("summarizer called %d times for a rejected email", sum.calls)
			}
		})
	}
}

func TestAssemblerBuildsRecord(t *testing.T) {
	sum := &fakeSummarizer{summary: "  A tech fest with talks and games.  "}
	a := newTestAssembler(sum)

	body := "The fest is on 20/03/2026 at 5:30 PM.\n" +
		"Venue: Main Auditorium, 2nd Floor.\n" +
		"Register here: https://forms.gle/abc123."

	d := a.Assemble(context.Background(), &domain.RawEmail{
		ID:       "m1",
		Subject:  "RE: Fwd: Annual Tech Fest 2026",
		BodyText: body,
	})
	if !d.Accepted() {
		t.Fatalf("rejected: %s", d.Reason)
	}

	rec := d.Record
	checks := []struct {
		field, got, want string
	}{
		{"title", rec.Title, "Annual Tech Fest 2026"},
		{"date", rec.Date, "2026-03-20"},
		{"time", rec.Time, "5:30 PM"},
		{"venue", rec.Venue, "Main Auditorium, 2nd Floor"},
		{"link", rec.RegistrationLink, "https://forms.gle/abc123"},
		{"summary", rec.Summary, "A tech fest with talks and games."},
		{"description", rec.Description, body},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	if rec.UsedDefaultDate {
		t.Error("date was found, UsedDefaultDate should be false")
	}
	if rec.Attendees == nil || len(rec.Attendees) != 0 {
		t.Errorf("attendees = %v, want empty non-nil", rec.Attendees)
	}
	if !rec.CreatedAt.Equal(fixedNow()) {
		t.Errorf("createdAt = %v", rec.CreatedAt)
	}
	if d.Fields.Keyword != "fest" {
		t.Errorf("keyword = %q", d.Fields.Keyword)
	}
	if d.SummaryFallback {
		t.Error("summary fallback should not be used")
	}

	wantStages := []Stage{
		StageReceived, StageSubjectChecked, StageContentExtracted,
		StageDateFiltered, StageAssembled, StageSummarized, StageDone,
	}
	if len(d.Stages) != len(wantStages) {
		t.Fatalf("stages = %v", d.Stages)
	}
	for i, s := range wantStages {
		if d.Stages[i] != s {
			t.Errorf("stage %d = %s, want %s", i, d.Stages[i], s)
		}
	}
}

func TestAssemblerDefaultedDateIsNeverRejected(t *testing.T) {
	d := newTestAssembler(&fakeSummarizer{summary: "ok"}).Assemble(context.Background(), &domain.RawEmail{
		Subject:  "Weekly Meetup",
		BodyText: "Come hang out with the community, pizza provided!",
	})

	if !d.Accepted() {
		t.Fatalf("rejected: %s", d.Reason)
	}
	if !d.Record.UsedDefaultDate {
		t.Error("expected defaulted date")
	}
	if d.Record.Date != "2026-03-15" {
		t.Errorf("date = %q, want today's date", d.Record.Date)
	}
	if d.Record.Time != domain.DefaultEventTime || d.Record.Venue != domain.DefaultEventVenue {
		t.Errorf("time/venue = %q/%q, want defaults", d.Record.Time, d.Record.Venue)
	}
	if d.Record.RegistrationLink != "" {
		t.Errorf("link = %q, want empty", d.Record.RegistrationLink)
	}
}

func TestAssemblerTodayIsFuture(t *testing.T) {
	d := newTestAssembler(nil).Assemble(context.Background(), &domain.RawEmail{
		Subject:  "Seminar",
		BodyText: "Happening 15/03/2026",
	})
	if !d.Accepted() {
		t.Fatalf("event dated today rejected: %s", d.Reason)
	}
}

func TestAssemblerSummaryFallback(t *testing.T) {
	body := "Workshop details. " + strings.Repeat("x", 300)

	tests := []struct {
		name string
		sum  *fakeSummarizer
	}{
		{"summarizer error", &fakeSummarizer{err: errBoom}},
		{"empty summary", &fakeSummarizer{summary: "   "}},
		{"no summarizer", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestAssembler(tt.sum).Assemble(context.Background(), &domain.RawEmail{
				Subject:  "Go Workshop",
				BodyText: body,
			})
			if !d.Accepted() {
				t.Fatalf("rejected: %s", d.Reason)
			}

			want := body[:200] + "..."
			if d.Record.Summary != want {
				t.Errorf("summary = %q, want %q", d.Record.Summary, want)
			}
			if !d.SummaryFallback {
				t.Error("expected SummaryFallback")
			}
			if d.Final() != StageDone {
				t.Errorf("final stage = %s", d.Final())
			}
		})
	}
}

func TestAssemblerDescriptionLimit(t *testing.T) {
	sum := &fakeSummarizer{summary: "ok"}
	body := strings.Repeat("é", 1500)

	d := newTestAssembler(sum).Assemble(context.Background(), &domain.RawEmail{
		Subject:  "Conference",
		BodyText: body,
	})
	if !d.Accepted() {
		t.Fatalf("rejected: %s", d.Reason)
	}
	if n := len([]rune(d.Record.Description)); n != 1000 {
		t.Errorf("description has %d runes, want 1000", n)
	}
	if sum.input != d.Record.Description {
		t.Error("summarizer should receive the description")
	}
}

func TestAssemblerIdempotentIdentity(t *testing.T) {
	a := newTestAssembler(&fakeSummarizer{summary: "ok"})
	email := &domain.RawEmail{
		Subject:  "Fwd: AI Seminar",
		BodyText: "Date: 2nd April 2026\nVenue: Hall B",
	}

	first := a.Assemble(context.Background(), email)
	second := a.Assemble(context.Background(), email)

	if !first.Accepted() || !second.Accepted() {
		t.Fatal("expected both runs to be accepted")
	}
	if first.Record.Key() != second.Record.Key() {
		t.Errorf("keys differ: %+v vs %+v", first.Record.Key(), second.Record.Key())
	}
	if first.Record.Key() != (domain.DedupKey{Title: "AI Seminar", Date: "2026-04-02"}) {
		t.Errorf("key = %+v", first.Record.Key())
	}
}

func TestStageString(t *testing.T) {
	if StageContentExtracted.String() != "content-extracted" {
		t.Errorf("got %s", StageContentExtracted)
	}
	if Stage(99).String() != "unknown" {
		t.Errorf("got %s", Stage(99))
	}
}
