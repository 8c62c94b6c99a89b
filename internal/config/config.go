package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// AdminToken is the shared secret required on mutating endpoints.
	AdminToken string

	// DatabaseURL selects the Postgres store when set; empty keeps the
	// in-memory store.
	DatabaseURL string

	// Kafka sink for accepted records (feature-flagged).
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool

	// Retention policy.
	RetentionDefaultWindow   time.Duration
	RetentionCategoryWindows map[string]time.Duration
	RetentionArchiveGrace    time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; absence is fine

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	defaultWindow, err := parseDuration("RETENTION_DEFAULT_WINDOW", "2160h") // 90 days
	if err != nil {
		return nil, err
	}
	archiveGrace, err := parseDuration("RETENTION_ARCHIVE_GRACE", "720h") // 30 days
	if err != nil {
		return nil, err
	}
	categoryWindows, err := parseCategoryWindows(os.Getenv("RETENTION_CATEGORY_WINDOWS"))
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(envOrDefault("KAFKA_BROKERS", ""))
	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers:   kafkaBrokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "disaster-records"),
		KafkaEnabled:   kafkaEnabled,

		RetentionDefaultWindow:   defaultWindow,
		RetentionCategoryWindows: categoryWindows,
		RetentionArchiveGrace:    archiveGrace,
	}

	if cfg.AdminToken == "" {
		return nil, errors.New("ADMIN_TOKEN is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.RetentionDefaultWindow <= 0 {
		return nil, errors.New("RETENTION_DEFAULT_WINDOW must be positive")
	}
	if cfg.RetentionArchiveGrace <= 0 {
		return nil, errors.New("RETENTION_ARCHIVE_GRACE must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// parseCategoryWindows parses per-category retention overrides of the form
// "3=2160h,5=8760h", keyed by disaster category code.
func parseCategoryWindows(raw string) (map[string]time.Duration, error) {
	windows := make(map[string]time.Duration)
	if raw == "" {
		return windows, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid RETENTION_CATEGORY_WINDOWS entry %q", pair)
		}
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid RETENTION_CATEGORY_WINDOWS duration in %q", pair)
		}
		windows[strings.TrimSpace(key)] = d
	}
	return windows, nil
}
