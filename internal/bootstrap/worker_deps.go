package bootstrap

import (
	"context"
	"fmt"
	"time"

	"event_scraper/adapter/out/cache"
	"event_scraper/adapter/out/mongodb"
	"event_scraper/adapter/out/provider/gmail"
	"event_scraper/config"
	"event_scraper/core/agent/llm"
	in "event_scraper/core/port/in"
	"event_scraper/core/port/out"
	"event_scraper/core/service/event"
	"event_scraper/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Dependencies struct {
	Config  *config.Config
	Log     zerolog.Logger
	MongoDB *mongo.Client
	Redis   *redis.Client

	// Adapters
	EventStore *mongodb.EventAdapter
	Marker     out.ProcessedMarker
	MailSource out.MailSource
	Summarizer out.Summarizer

	// Services
	EventService  *event.Service
	IngestService in.IngestService

	mailProvider *gmail.Provider
}

// NewDependencies connects the stores and builds the services. When needMail
// is false a missing or broken Gmail setup only disables ingest.
func NewDependencies(ctx context.Context, cfg *config.Config, needMail bool) (*Dependencies, func(), error) {
	deps := &Dependencies{
		Config: cfg,
		Log:    logger.Default().Zerolog(),
	}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// MongoDB (event store)
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDBURI)
	if err != nil {
		return nil, nil, err
	}
	deps.MongoDB = mongoClient
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	})

	deps.EventStore = mongodb.NewEventAdapter(mongoClient.Database(cfg.MongoDBName), cfg.EventsCollection)
	if err := deps.EventStore.EnsureIndexes(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create event indexes: %w", err)
	}
	logger.Info("MongoDB connected (database=%s, collection=%s)", cfg.MongoDBName, cfg.EventsCollection)

	// Redis (processed markers, optional)
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed, processed markers disabled: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { _ = redisClient.Close() })
			deps.Marker = cache.NewRedisMarker(redisClient, time.Duration(cfg.ProcessedTTLHours)*time.Hour)
			logger.Info("Redis processed markers enabled (ttl=%dh)", cfg.ProcessedTTLHours)
		}
	}

	// OpenAI (summarizer, optional)
	if cfg.OpenAIAPIKey != "" {
		client := llm.NewClientWithConfig(llm.ClientConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     time.Duration(cfg.LLMTimeoutSec) * time.Second,
			Logger:      deps.Log,
		})
		deps.Summarizer = llm.NewEventSummarizer(client)
	} else {
		logger.Warn("OPENAI_API_KEY not set, summaries will use the description fallback")
	}

	// Gmail (mail source)
	mail, err := newMailSource(ctx, cfg, deps.Log)
	switch {
	case err != nil && needMail:
		cleanup()
		return nil, nil, err
	case err != nil:
		logger.Warn("Gmail not available, on-demand ingest disabled: %v", err)
	default:
		deps.MailSource = mail
		deps.mailProvider = mail
	}

	// Services
	deps.EventService = event.NewService(deps.EventStore, time.Now, deps.Log)

	if deps.MailSource != nil {
		assembler := event.NewAssembler(deps.Summarizer, time.Now, deps.Log)
		ingest := event.NewIngestService(
			deps.MailSource,
			deps.EventStore,
			deps.Marker,
			assembler,
			cfg.GmailMaxResults,
			deps.Log,
		)
		deps.IngestService = event.NewCoalescedIngest(ingest)
	}

	return deps, cleanup, nil
}

func newMailSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gmail.Provider, error) {
	httpClient, err := gmail.NewHTTPClient(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile)
	if err != nil {
		return nil, err
	}
	return gmail.NewProvider(ctx, httpClient, log)
}

// MongoCheck pings the primary.
func (d *Dependencies) MongoCheck(ctx context.Context) error {
	return d.MongoDB.Ping(ctx, readpref.Primary())
}

// RedisCheck pings Redis, or returns nil when Redis is not configured.
func (d *Dependencies) RedisCheck() func(ctx context.Context) error {
	if d.Redis == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return d.Redis.Ping(ctx).Err()
	}
}

// GmailCheck fails while the Gmail circuit breaker is open, or returns nil
// when Gmail is not configured.
func (d *Dependencies) GmailCheck() func(ctx context.Context) error {
	if d.mailProvider == nil {
		return nil
	}
	return func(ctx context.Context) error {
		if state := d.mailProvider.CircuitState(); state == "open" {
			return fmt.Errorf("gmail circuit %s", state)
		}
		return nil
	}
}
