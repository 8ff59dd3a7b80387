package event

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"event_scraper/core/domain"
	"event_scraper/pkg/apperr"

	"github.com/rs/zerolog"
)

func batchMail() *fakeMail {
	return &fakeMail{
		ids: []string{"a", "b", "c", "d", "e"},
		emails: map[string]*domain.RawEmail{
			"a": {Subject: "Cloud Workshop", BodyText: "On 20/03/2026 at 10 AM. Venue: Lab 3."},
			"b": {Subject: "Mess menu", BodyText: "Paneer on 20/03/2026"},
			"d": {Subject: "Fwd: Cloud Workshop", BodyText: "Reminder: on 20/03/2026 at 10 AM"},
		},
		fetchErr: map[string]error{"c": errors.New("decode body: illegal base64 data")},
		panicOn:  "e",
	}
}

func newTestIngest(mail *fakeMail, store *fakeStore, marker *fakeMarker) *IngestService {
	a := NewAssembler(&fakeSummarizer{summary: "summary"}, fixedNow, zerolog.Nop())
	if marker == nil {
		return NewIngestService(mail, store, nil, a, 50, zerolog.Nop())
	}
	return NewIngestService(mail, store, marker, a, 50, zerolog.Nop())
}

func TestRunBatchCountsEveryOutcome(t *testing.T) {
	mail := batchMail()
	store := newFakeStore()

	report, err := newTestIngest(mail, store, nil).RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if report.RunID == "" {
		t.Error("missing run id")
	}
	if report.Found != 5 {
		t.Errorf("found = %d, want 5", report.Found)
	}
	if report.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", report.Inserted)
	}
	if report.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", report.Duplicates)
	}
	if report.Failed != 2 {
		t.Errorf("failed = %d, want 2", report.Failed)
	}
	if report.Rejected["no-keyword-match"] != 1 {
		t.Errorf("rejected = %v", report.Rejected)
	}
	if report.Skipped != 0 {
		t.Errorf("skipped = %d without a marker", report.Skipped)
	}

	if len(mail.fetched) != 5 {
		t.Errorf("fetched %v, a failure must not stop the batch", mail.fetched)
	}
	if len(store.events) != 1 {
		t.Errorf("store has %d events, want 1", len(store.events))
	}
}

func TestRunBatchSearchKeywords(t *testing.T) {
	mail := &fakeMail{}
	if _, err := newTestIngest(mail, newFakeStore(), nil).RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	has := map[string]bool{}
	for _, k := range mail.keywords {
		has[k] = true
	}
	for _, k := range []string{"event", "fest", "hackathon", "competition"} {
		if !has[k] {
			t.Errorf("search keywords missing %q: %v", k, mail.keywords)
		}
	}
}

func TestRunBatchSecondRunIsIdempotent(t *testing.T) {
	store := newFakeStore()

	first, err := newTestIngest(batchMail(), store, nil).RunBatch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := newTestIngest(batchMail(), store, nil).RunBatch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if first.Inserted != 1 || second.Inserted != 0 {
		t.Errorf("inserted = %d then %d, want 1 then 0", first.Inserted, second.Inserted)
	}
	if second.Duplicates != 2 {
		t.Errorf("second run duplicates = %d, want 2", second.Duplicates)
	}
}

func TestRunBatchSkipsProcessedMessages(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()

	if _, err := newTestIngest(batchMail(), store, marker).RunBatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	mail := batchMail()
	report, err := newTestIngest(mail, store, marker).RunBatch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// a, b and d were decided; c and e failed and are retried.
	if report.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", report.Skipped)
	}
	if report.Failed != 2 {
		t.Errorf("failed = %d, want 2", report.Failed)
	}
	if len(mail.fetched) != 2 {
		t.Errorf("fetched = %v, want only the failed messages", mail.fetched)
	}
}

func TestRunBatchMarkerErrorDoesNotSkip(t *testing.T) {
	marker := newFakeMarker()
	marker.lookupErr = errBoom

	report, err := newTestIngest(batchMail(), newFakeStore(), marker).RunBatch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Inserted != 1 || report.Skipped != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunBatchStoreFailureIsPerEmail(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errBoom

	report, err := newTestIngest(batchMail(), store, nil).RunBatch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// a and d both fail to insert, plus the fetch failure and the panic.
	if report.Failed != 4 {
		t.Errorf("failed = %d, want 4", report.Failed)
	}
	if report.Rejected["no-keyword-match"] != 1 {
		t.Errorf("rejected = %v", report.Rejected)
	}
}

func TestRunBatchSearchError(t *testing.T) {
	mail := &fakeMail{searchErr: errBoom}

	_, err := newTestIngest(mail, newFakeStore(), nil).RunBatch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.GetHTTPStatus(err) != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apperr.GetHTTPStatus(err))
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("error should wrap the cause: %v", err)
	}
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mail := batchMail()
	report, err := newTestIngest(mail, newFakeStore(), nil).RunBatch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(mail.fetched) != 0 {
		t.Errorf("fetched %v after cancellation", mail.fetched)
	}
	if report.Found != 5 {
		t.Errorf("found = %d", report.Found)
	}
}
