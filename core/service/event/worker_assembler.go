// Package event turns decoded emails into event records and serves the event API.
package event

import (
	"context"
	"strings"
	"time"

	"event_scraper/core/domain"
	"event_scraper/core/port/out"
	"event_scraper/core/service/extraction"

	"github.com/rs/zerolog"
)

const (
	descriptionLimit  = 1000
	summaryInputLimit = 3000
	fallbackLimit     = 200
	fallbackSuffix    = "..."
)

// =============================================================================
// Pipeline stages
// =============================================================================

// Stage is a step of the email-to-event pipeline.
type Stage int

const (
	StageReceived Stage = iota
	StageSubjectChecked
	StageContentExtracted
	StageDateFiltered
	StageAssembled
	StageSummarized
	StageDone
	StageRejected
)

var stageNames = [...]string{
	"received",
	"subject-checked",
	"content-extracted",
	"date-filtered",
	"assembled",
	"summarized",
	"done",
	"rejected",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Fields records what each extractor found, with provenance.
type Fields struct {
	Keyword string
	Date    extraction.Extracted
	Time    extraction.Extracted
	Venue   extraction.Extracted
	Link    extraction.Extracted
}

// Decision is the outcome of assembling one email. Exactly one of Record and
// Reason is set.
type Decision struct {
	MessageID       string
	Record          *domain.EventRecord
	Reason          domain.RejectReason
	Stages          []Stage
	Fields          Fields
	SummaryFallback bool
}

// Accepted reports whether the email produced an event record.
func (d *Decision) Accepted() bool {
	return d.Record != nil
}

// Final returns the last stage reached.
func (d *Decision) Final() Stage {
	if len(d.Stages) == 0 {
		return StageReceived
	}
	return d.Stages[len(d.Stages)-1]
}

func (d *Decision) enter(s Stage) {
	d.Stages = append(d.Stages, s)
}

// =============================================================================
// Assembler
// =============================================================================

// Assembler runs one email through the gates and extractors and builds the
// event record. It holds no per-email state and is safe for sequential reuse.
type Assembler struct {
	summarizer out.Summarizer
	dates      *extraction.DateTimeExtractor
	future     *extraction.FutureFilter
	now        func() time.Time
	log        zerolog.Logger
}

// NewAssembler creates an assembler. summarizer may be nil, in which case the
// truncated description is used as the summary. now may be nil for time.Now.
func NewAssembler(summarizer out.Summarizer, now func() time.Time, log zerolog.Logger) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{
		summarizer: summarizer,
		dates:      extraction.NewDateTimeExtractor(now),
		future:     extraction.NewFutureFilter(now),
		now:        now,
		log:        log.With().Str("component", "assembler").Logger(),
	}
}

// Assemble decides whether email describes an upcoming event and, if so,
// builds its record. Rejection is a normal outcome, not an error.
func (a *Assembler) Assemble(ctx context.Context, email *domain.RawEmail) *Decision {
	d := &Decision{MessageID: email.ID}
	d.enter(StageReceived)

	log := a.log.With().Str("message_id", email.ID).Logger()

	// Subject gate
	if strings.TrimSpace(email.Subject) == "" {
		return a.reject(log, d, domain.RejectNoSubject)
	}
	if extraction.IsExcluded(email.Subject, email.BodyText) {
		return a.reject(log, d, domain.RejectExcludedTopic)
	}
	title := extraction.CleanSubject(email.Subject)
	kw, ok := extraction.MatchKeyword(title)
	if !ok {
		return a.reject(log, d, domain.RejectNoKeywordMatch)
	}
	d.Fields.Keyword = kw
	d.enter(StageSubjectChecked)
	log.Debug().Str("stage", StageSubjectChecked.String()).Str("title", title).Str("rule", kw).Msg("subject accepted")

	// Extraction
	dt := a.dates.Extract(email.BodyText)
	d.Fields.Date = dt.Date
	d.Fields.Time = dt.Time
	d.Fields.Venue = extraction.ExtractVenue(email.BodyText)
	d.Fields.Link = extraction.ExtractRegistrationLink(email.BodyText)
	d.enter(StageContentExtracted)
	for _, f := range []struct {
		name string
		val  extraction.Extracted
	}{
		{"date", d.Fields.Date},
		{"time", d.Fields.Time},
		{"venue", d.Fields.Venue},
		{"link", d.Fields.Link},
	} {
		log.Debug().
			Str("stage", StageContentExtracted.String()).
			Str("field", f.name).
			Str("value", f.val.Value).
			Str("rule", f.val.Rule).
			Bool("defaulted", f.val.IsDefaulted()).
			Msg("field extracted")
	}

	// Date gate: a defaulted date is never checked.
	if !dt.UsedDefaultDate() && !a.future.IsFuture(dt.Date.Value) {
		return a.reject(log, d, domain.RejectDatePassed)
	}
	d.enter(StageDateFiltered)

	description := strings.TrimSpace(truncateRunes(email.BodyText, descriptionLimit))
	d.Record = &domain.EventRecord{
		Title:            title,
		Description:      description,
		Date:             extraction.CanonicalOrOriginal(dt.Date.Value),
		Time:             dt.Time.Value,
		Venue:            d.Fields.Venue.Value,
		RegistrationLink: d.Fields.Link.Value,
		CreatedAt:        a.now(),
		Attendees:        []domain.Attendee{},
		UsedDefaultDate:  dt.UsedDefaultDate(),
	}
	d.enter(StageAssembled)

	d.Record.Summary, d.SummaryFallback = a.summarize(ctx, log, description)
	d.enter(StageSummarized)

	d.enter(StageDone)
	log.Info().
		Str("stage", StageDone.String()).
		Str("title", d.Record.Title).
		Str("date", d.Record.Date).
		Bool("used_default_date", d.Record.UsedDefaultDate).
		Bool("summary_fallback", d.SummaryFallback).
		Msg("event assembled")
	return d
}

func (a *Assembler) reject(log zerolog.Logger, d *Decision, reason domain.RejectReason) *Decision {
	d.Reason = reason
	d.enter(StageRejected)
	log.Info().
		Str("stage", StageRejected.String()).
		Str("reason", reason.String()).
		Str("date", d.Fields.Date.Value).
		Msg("email rejected")
	return d
}

// summarize returns the summary and whether the fallback was used.
func (a *Assembler) summarize(ctx context.Context, log zerolog.Logger, description string) (string, bool) {
	if a.summarizer != nil {
		summary, err := a.summarizer.Summarize(ctx, truncateRunes(description, summaryInputLimit))
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary), false
		}
		log.Warn().Err(err).Str("stage", StageSummarized.String()).Msg("summarizer failed, using truncated description")
	}
	return FallbackSummary(description), true
}

// FallbackSummary is the first 200 characters of the description followed by
// an ellipsis.
func FallbackSummary(description string) string {
	return truncateRunes(description, fallbackLimit) + fallbackSuffix
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
