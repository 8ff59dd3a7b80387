package bootstrap

import (
	"context"
	"strings"
	"time"

	"event_scraper/adapter/in/http"
	"event_scraper/config"
	in "event_scraper/core/port/in"
	"event_scraper/infra/middleware"
	"event_scraper/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	bodyLimit      = 1 * 1024 * 1024
	apiBodyLimit   = 64 * 1024
	joinRateLimit  = 20
	joinRateWindow = time.Minute
)

func NewAPI(ctx context.Context, cfg *config.Config) (*fiber.App, *Dependencies, func(), error) {
	deps, cleanup, err := NewDependencies(ctx, cfg, false)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, nil, err
	}

	health := http.NewHealthHandler().
		WithCheck("mongodb", deps.MongoCheck).
		WithCheck("redis", deps.RedisCheck()).
		WithCheck("gmail", deps.GmailCheck())

	app := NewApp(cfg, deps.EventService, deps.IngestService, health)

	logger.Info("API server initialized successfully")
	return app, deps, cleanup, nil
}

// NewApp builds the fiber application with the middleware stack and routes.
// ingest may be nil.
func NewApp(cfg *config.Config, events in.EventService, ingest in.IngestService, health *http.HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		StrictRouting:         false,
		CaseSensitive:         false,

		// go-json: faster drop-in for encoding/json
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:          bodyLimit,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       5 * time.Minute, // on-demand ingest
		ServerHeader:       "",
		DisableDefaultDate: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())

	// AllowCredentials requires explicit origins
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		allowOrigins = "*"
		allowCredentials = false
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health check (no auth required)
	health.Register(app)

	api := app.Group("/api", middleware.RequireJSON(), middleware.MaxBodySize(apiBodyLimit))

	auth := middleware.JWTAuth(cfg.JWTSecret)
	joinLimit := middleware.NewRateLimiter(joinRateLimit, joinRateWindow).Handler()

	http.NewEventHandler(events, ingest).Register(api, auth, joinLimit)

	return app
}
