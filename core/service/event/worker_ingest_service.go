package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event_scraper/core/domain"
	"event_scraper/core/port/in"
	"event_scraper/core/port/out"
	"event_scraper/core/service/extraction"
	"event_scraper/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SearchKeywords widen the mailbox query beyond the subject gate; emails that
// only match "competition" are fetched and then rejected by the classifier.
var SearchKeywords = append(append([]string{}, extraction.EventKeywords...), "competition")

type outcome int

const (
	outcomeInserted outcome = iota
	outcomeDuplicate
	outcomeRejected
	outcomeSkipped
)

// IngestService fetches one batch of candidate emails and stores the events
// they describe. Emails are processed sequentially, each in its own recovery
// scope.
type IngestService struct {
	mail       out.MailSource
	store      out.EventStore
	marker     out.ProcessedMarker
	assembler  *Assembler
	maxResults int
	log        zerolog.Logger
}

// NewIngestService creates the batch runner. marker may be nil.
func NewIngestService(
	mail out.MailSource,
	store out.EventStore,
	marker out.ProcessedMarker,
	assembler *Assembler,
	maxResults int,
	log zerolog.Logger,
) *IngestService {
	if maxResults <= 0 {
		maxResults = 50
	}
	return &IngestService{
		mail:       mail,
		store:      store,
		marker:     marker,
		assembler:  assembler,
		maxResults: maxResults,
		log:        log.With().Str("component", "ingest").Logger(),
	}
}

var _ in.IngestService = (*IngestService)(nil)

// RunBatch searches the mailbox and processes every returned message. Only a
// failed search or cancellation ends the batch early.
func (s *IngestService) RunBatch(ctx context.Context) (*in.BatchReport, error) {
	report := &in.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Rejected:  make(map[string]int),
	}
	log := s.log.With().Str("run_id", report.RunID).Logger()

	ids, err := s.mail.Search(ctx, SearchKeywords, s.maxResults)
	if err != nil {
		return report, apperr.ExternalError("mail", fmt.Errorf("search: %w", err))
	}
	report.Found = len(ids)
	log.Info().Int("found", report.Found).Msg("batch started")

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("batch interrupted")
			report.Duration = time.Since(report.StartedAt)
			return report, apperr.Internal(fmt.Errorf("batch interrupted: %w", err))
		}

		res, reason, err := s.processOne(ctx, log, id)
		if err != nil {
			report.Failed++
			log.Error().Err(err).Str("message_id", id).Msg("email failed")
			continue
		}

		switch res {
		case outcomeInserted:
			report.Inserted++
		case outcomeDuplicate:
			report.Duplicates++
		case outcomeRejected:
			report.Rejected[reason.String()]++
		case outcomeSkipped:
			report.Skipped++
		}
	}

	report.Duration = time.Since(report.StartedAt)
	log.Info().
		Int("found", report.Found).
		Int("inserted", report.Inserted).
		Int("duplicates", report.Duplicates).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Interface("rejected", report.Rejected).
		Dur("duration", report.Duration).
		Msg("batch completed")
	return report, nil
}

// processOne handles a single message. A panic is converted to an error so
// the rest of the batch continues.
func (s *IngestService) processOne(ctx context.Context, log zerolog.Logger, id string) (res outcome, reason domain.RejectReason, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing message %s: %v", id, r)
		}
	}()

	if s.marker != nil {
		done, mErr := s.marker.IsProcessed(ctx, id)
		if mErr != nil {
			log.Warn().Err(mErr).Str("message_id", id).Msg("processed marker lookup failed")
		} else if done {
			log.Debug().Str("message_id", id).Msg("already processed, skipping")
			return outcomeSkipped, "", nil
		}
	}

	email, err := s.mail.Fetch(ctx, id)
	if err != nil {
		return 0, "", fmt.Errorf("fetch message %s: %w", id, err)
	}
	if email.ID == "" {
		email.ID = id
	}

	d := s.assembler.Assemble(ctx, email)
	if !d.Accepted() {
		s.mark(ctx, log, id)
		return outcomeRejected, d.Reason, nil
	}

	res, err = s.persist(ctx, log, d.Record)
	if err != nil {
		return 0, "", err
	}
	s.mark(ctx, log, id)
	return res, "", nil
}

// persist inserts the record unless an event with the same identity exists.
func (s *IngestService) persist(ctx context.Context, log zerolog.Logger, rec *domain.EventRecord) (outcome, error) {
	exists, err := s.store.Exists(ctx, rec.Key())
	if err != nil {
		return 0, fmt.Errorf("check existing event: %w", err)
	}
	if exists {
		log.Info().Str("title", rec.Title).Str("date", rec.Date).Msg("event already exists")
		return outcomeDuplicate, nil
	}

	id, err := s.store.Insert(ctx, rec)
	if errors.Is(err, out.ErrDuplicateKey) {
		log.Info().Str("title", rec.Title).Str("date", rec.Date).Msg("event inserted concurrently")
		return outcomeDuplicate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	rec.ID = id
	log.Info().Str("event_id", id).Str("title", rec.Title).Msg("event added")
	return outcomeInserted, nil
}

func (s *IngestService) mark(ctx context.Context, log zerolog.Logger, id string) {
	if s.marker == nil {
		return
	}
	if err := s.marker.MarkProcessed(ctx, id); err != nil {
		log.Warn().Err(err).Str("message_id", id).Msg("failed to mark message processed")
	}
}
