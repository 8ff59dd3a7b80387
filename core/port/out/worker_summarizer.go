package out

import "context"

// Summarizer condenses an event description. Callers must tolerate failure.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
