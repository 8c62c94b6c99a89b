package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ADMIN_TOKEN", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "secret", cfg.AdminToken)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "disaster-records", cfg.KafkaSinkTopic)
	assert.Equal(t, 2160*time.Hour, cfg.RetentionDefaultWindow)
	assert.Equal(t, 720*time.Hour, cfg.RetentionArchiveGrace)
	assert.Empty(t, cfg.RetentionCategoryWindows)
}

func TestLoadRequiresAdminToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_TOKEN")
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATABASE_URL", "postgres://localhost/disaster")
	t.Setenv("RETENTION_DEFAULT_WINDOW", "720h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "postgres://localhost/disaster", cfg.DatabaseURL)
	assert.Equal(t, 720*time.Hour, cfg.RetentionDefaultWindow)
}

func TestLoadKafka(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "records-out")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "records-out", cfg.KafkaSinkTopic)
}

func TestLoadKafkaEnabledWithoutBrokers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoadCategoryWindows(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RETENTION_CATEGORY_WINDOWS", "3=2160h, 5=8760h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Duration{
		"3": 2160 * time.Hour,
		"5": 8760 * time.Hour,
	}, cfg.RetentionCategoryWindows)
}

func TestLoadCategoryWindowsInvalid(t *testing.T) {
	setRequiredEnv(t)

	for _, raw := range []string{"3", "3=", "3=fast", "3=-5h"} {
		t.Setenv("RETENTION_CATEGORY_WINDOWS", raw)
		_, err := Load()
		assert.Error(t, err, "input %q", raw)
	}
}

func TestLoadInvalidDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
