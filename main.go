package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event_scraper/adapter/out/provider/gmail"
	"event_scraper/config"
	"event_scraper/internal/bootstrap"
	"event_scraper/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Load .env file if exists (for local development)
	envErr := godotenv.Load()

	mode := flag.String("mode", "all", "Run mode: api, worker, all, once, auth")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "event-scraper",
		Console: cfg.LogFormat == "console" || (cfg.LogFormat == "" && cfg.IsDevelopment()),
	})
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	if err := cfg.Validate(*mode); err != nil {
		logger.Fatal("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		runAPI(ctx, cfg, false)
	case "worker":
		runWorker(ctx, cfg)
	case "all":
		runAPI(ctx, cfg, true)
	case "once":
		runOnce(ctx, cfg)
	case "auth":
		runAuth(ctx, cfg)
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

// runAPI serves HTTP. With withWorker the scheduler shares the API's
// dependencies so on-demand and scheduled batches never overlap.
func runAPI(ctx context.Context, cfg *config.Config, withWorker bool) {
	app, deps, cleanup, err := bootstrap.NewAPI(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	var w *bootstrap.Worker
	if withWorker {
		w, err = bootstrap.NewWorkerWithDeps(deps)
		if err != nil {
			logger.Warn("Scheduler disabled: %v", err)
		} else {
			w.Start()
		}
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)

		if w != nil {
			w.Stop()
		}
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down: %v", err)
		} else {
			logger.Info("API server shut down gracefully")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Error("Failed to start server: %v", err)
	}
}

func runWorker(ctx context.Context, cfg *config.Config) {
	w, cleanup, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize worker: %v", err)
	}
	defer cleanup()

	logger.Info("Starting worker...")
	w.Start()

	<-ctx.Done()
	logger.Info("Shutting down worker (timeout: %v)...", shutdownTimeout)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Worker shut down gracefully")
	case <-time.After(shutdownTimeout):
		logger.Warn("Worker shutdown timed out, forcing exit")
	}
}

// runOnce runs one ingest batch and prints its report.
func runOnce(ctx context.Context, cfg *config.Config) {
	w, cleanup, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize worker: %v", err)
	}
	defer cleanup()

	report, err := w.RunOnce(ctx)
	if report != nil {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
	}
	if err != nil {
		cleanup()
		logger.Fatal("Ingest failed: %v", err)
	}
}

// runAuth performs the interactive Gmail consent flow and stores the token.
func runAuth(ctx context.Context, cfg *config.Config) {
	oauthCfg, err := gmail.LoadConfig(cfg.GmailCredentialsFile)
	if err != nil {
		logger.Fatal("Failed to load Gmail credentials: %v", err)
	}

	tok, err := gmail.Authorize(ctx, oauthCfg, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal("Authorization failed: %v", err)
	}

	if err := gmail.SaveToken(cfg.GmailTokenFile, tok); err != nil {
		logger.Fatal("Failed to save token: %v", err)
	}
	logger.Info("Token saved to %s", cfg.GmailTokenFile)
}
