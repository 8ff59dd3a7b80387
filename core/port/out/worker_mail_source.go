package out

import (
	"context"

	"event_scraper/core/domain"
)

// MailSource retrieves candidate emails from a mailbox.
type MailSource interface {
	// Search returns message ids whose subject contains any of the keywords,
	// newest first, at most max ids.
	Search(ctx context.Context, keywords []string, max int) ([]string, error)

	// Fetch loads one message and converts its body to plain text.
	// Decode failures are returned as errors for that message only.
	Fetch(ctx context.Context, id string) (*domain.RawEmail, error)
}
