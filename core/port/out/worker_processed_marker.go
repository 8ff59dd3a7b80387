package out

import "context"

// ProcessedMarker remembers mail messages that were already decided, so a
// later batch can skip fetching them again.
type ProcessedMarker interface {
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
}
