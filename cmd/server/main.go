package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/disaster-record-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/disaster-record-service/internal/adapter/kafka"
	"github.com/couchcryptid/disaster-record-service/internal/codec"
	"github.com/couchcryptid/disaster-record-service/internal/config"
	"github.com/couchcryptid/disaster-record-service/internal/dictionary"
	"github.com/couchcryptid/disaster-record-service/internal/ingest"
	"github.com/couchcryptid/disaster-record-service/internal/observability"
	"github.com/couchcryptid/disaster-record-service/internal/retention"
	"github.com/couchcryptid/disaster-record-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	registry := dictionary.NewRegistry()
	idCodec := codec.New(registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the record store (Postgres when DATABASE_URL is set).
	var recordStore store.RecordStore
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, clock)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		recordStore = pg
		logger.Info("postgres store enabled")
	} else {
		recordStore = store.NewMemoryStore(clock)
		logger.Info("in-memory store enabled")
	}

	// Kafka sink for accepted records (feature-flagged via KAFKA_ENABLED).
	var publisher ingest.Publisher
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = kp
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	pipeline := ingest.New(idCodec, recordStore, publisher, logger, metrics)
	retentionManager := retention.New(recordStore, retention.Policy{
		DefaultWindow:   cfg.RetentionDefaultWindow,
		CategoryWindows: cfg.RetentionCategoryWindows,
		ArchiveGrace:    cfg.RetentionArchiveGrace,
	}, clock, logger, metrics)

	handler := httpadapter.NewHandler(idCodec, registry, pipeline, recordStore, retentionManager, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, handler.Routes(cfg.AdminToken), logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
