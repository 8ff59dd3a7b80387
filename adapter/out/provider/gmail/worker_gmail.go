// Package gmail provides the Gmail mail source.
package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"event_scraper/core/domain"
	"event_scraper/core/port/out"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrEmptyBody is returned when a message has no text/html or text/plain part.
var ErrEmptyBody = errors.New("message has no readable body")

// Provider implements out.MailSource for a single Gmail account.
type Provider struct {
	service *gmail.Service
	cb      *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

var _ out.MailSource = (*Provider)(nil)

// NewProvider creates a provider that calls Gmail with an authorized client.
func NewProvider(ctx context.Context, client *http.Client, log zerolog.Logger) (*Provider, error) {
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return NewProviderWithService(service, log), nil
}

// NewProviderWithService wraps an existing Gmail service.
func NewProviderWithService(service *gmail.Service, log zerolog.Logger) *Provider {
	log = log.With().Str("component", "gmail").Logger()

	settings := gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		IsSuccessful: func(err error) bool {
			var nce *nonCircuitError
			return err == nil || errors.As(err, &nce)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &Provider{
		service: service,
		cb:      gobreaker.NewCircuitBreaker(settings),
		log:     log,
	}
}

// BuildQuery returns a Gmail search query matching any keyword in the subject.
func BuildQuery(keywords []string) string {
	return "subject:(" + strings.Join(keywords, " OR ") + ")"
}

// Search lists message ids whose subject matches any keyword.
func (p *Provider) Search(ctx context.Context, keywords []string, max int) ([]string, error) {
	query := BuildQuery(keywords)

	var resp *gmail.ListMessagesResponse
	err := p.execute("Search", func() error {
		var apiErr error
		resp, apiErr = p.service.Users.Messages.List("me").
			Q(query).
			MaxResults(int64(max)).
			Context(ctx).
			Do()
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	p.log.Debug().Str("query", query).Int("count", len(ids)).Msg("messages listed")
	return ids, nil
}

// Fetch loads a message and converts its body to plain text.
func (p *Provider) Fetch(ctx context.Context, id string) (*domain.RawEmail, error) {
	var msg *gmail.Message
	err := p.execute("Fetch", func() error {
		var apiErr error
		msg, apiErr = p.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return parseMessage(msg)
}

// parseMessage extracts the subject and a plain-text body. The first
// text/html part is preferred; text/plain is used when no HTML exists.
func parseMessage(msg *gmail.Message) (*domain.RawEmail, error) {
	if msg == nil || msg.Payload == nil {
		return nil, fmt.Errorf("message has no payload")
	}

	email := &domain.RawEmail{
		ID:      msg.Id,
		Subject: getHeader(msg.Payload.Headers, "Subject"),
	}

	if data := findPart(msg.Payload, "text/html"); data != "" {
		raw, err := decodeBody(data)
		if err != nil {
			return nil, fmt.Errorf("decode html body: %w", err)
		}
		email.BodyText = HTMLToText(raw)
	} else if data := findPart(msg.Payload, "text/plain"); data != "" {
		raw, err := decodeBody(data)
		if err != nil {
			return nil, fmt.Errorf("decode text body: %w", err)
		}
		email.BodyText = normalizeText(raw)
	}

	if email.BodyText == "" {
		return nil, ErrEmptyBody
	}
	return email, nil
}

// findPart returns the encoded data of the first part with mimeType,
// searching depth-first.
func findPart(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if strings.EqualFold(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		return part.Body.Data
	}
	for _, p := range part.Parts {
		if data := findPart(p, mimeType); data != "" {
			return data
		}
	}
	return ""
}

// decodeBody accepts padded and unpadded base64url.
func decodeBody(data string) (string, error) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		b, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", err
		}
	}
	return string(b), nil
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// =============================================================================
// Circuit breaker
// =============================================================================

// execute runs fn through the breaker. Client errors do not trip it.
func (p *Provider) execute(operation string, fn func() error) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				switch apiErr.Code {
				case 400, 401, 403, 404:
					return nil, &nonCircuitError{err: err}
				}
			}
			return nil, err
		}
		return nil, nil
	})

	var nce *nonCircuitError
	if errors.As(err, &nce) {
		return nce.err
	}
	if err != nil {
		p.log.Warn().Err(err).Str("operation", operation).Str("state", p.cb.State().String()).Msg("gmail call failed")
	}
	return err
}

// nonCircuitError wraps errors that should not trip the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

// CircuitState returns the breaker state for health reporting.
func (p *Provider) CircuitState() string {
	return p.cb.State().String()
}
