package llm

import (
	"context"

	"event_scraper/core/port/out"
)

const (
	summarySystemPrompt = "You are a helpful assistant that summarizes event descriptions. " +
		"Create a concise, informative summary in 2-3 sentences."
	summaryUserPrompt = "Please summarize this event description: "

	// summaryInputLimit caps the text sent to the model, in characters.
	summaryInputLimit = 3000
)

// EventSummarizer implements out.Summarizer with a chat model.
type EventSummarizer struct {
	client *Client
}

var _ out.Summarizer = (*EventSummarizer)(nil)

func NewEventSummarizer(client *Client) *EventSummarizer {
	return &EventSummarizer{client: client}
}

// Summarize returns a 2-3 sentence summary of an event description.
func (s *EventSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.client.CompleteWithSystem(ctx, summarySystemPrompt, summaryUserPrompt+truncateBody(text, summaryInputLimit))
}

// truncateBody cuts body to maxLen characters.
func truncateBody(body string, maxLen int) string {
	r := []rune(body)
	if len(r) <= maxLen {
		return body
	}
	return string(r[:maxLen])
}
