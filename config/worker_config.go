package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	// MongoDB (event store)
	MongoDBURI       string
	MongoDBName      string
	EventsCollection string

	// Redis (processed message markers, optional)
	RedisURL          string
	ProcessedTTLHours int

	// OpenAI (summarizer)
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int

	// Gmail (mail source)
	GmailCredentialsFile string
	GmailTokenFile       string
	GmailMaxResults      int

	// Ingest scheduling
	IngestInterval time.Duration
	IngestTimeout  time.Duration
	IngestOnStart  bool

	// API
	JWTSecret      string
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", ""),

		MongoDBURI:       getEnv("MONGODB_URI", ""),
		MongoDBName:      getEnv("MONGODB_DATABASE", "campus_connect"),
		EventsCollection: getEnv("MONGODB_EVENTS_COLLECTION", "events"),

		RedisURL:          getEnv("REDIS_URL", ""),
		ProcessedTTLHours: getEnvInt("PROCESSED_TTL_HOURS", 24*30),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 150),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 30),

		GmailCredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credentials.json"),
		GmailTokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		GmailMaxResults:      getEnvInt("GMAIL_MAX_RESULTS", 50),

		IngestInterval: getEnvDuration("INGEST_INTERVAL", 6*time.Hour),
		IngestTimeout:  getEnvDuration("INGEST_TIMEOUT", 15*time.Minute),
		IngestOnStart:  getEnvBool("INGEST_ON_START", true),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	if cfg.IngestInterval <= 0 {
		return nil, fmt.Errorf("INGEST_INTERVAL must be positive, got %s", cfg.IngestInterval)
	}
	if cfg.GmailMaxResults <= 0 {
		return nil, fmt.Errorf("GMAIL_MAX_RESULTS must be positive, got %d", cfg.GmailMaxResults)
	}

	return cfg, nil
}

// Validate reports the settings required by the given run mode.
func (c *Config) Validate(mode string) error {
	var missing []string

	needStore := mode == "api" || mode == "worker" || mode == "all" || mode == "once"
	needMail := mode == "worker" || mode == "all" || mode == "once" || mode == "auth"

	if needStore && c.MongoDBURI == "" {
		missing = append(missing, "MONGODB_URI")
	}
	if needMail && c.GmailCredentialsFile == "" {
		missing = append(missing, "GMAIL_CREDENTIALS_FILE")
	}
	if (mode == "api" || mode == "all") && c.JWTSecret == "" && c.IsProduction() {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration for mode %q: %s", mode, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
