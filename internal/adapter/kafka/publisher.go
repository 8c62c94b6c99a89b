// Package kafka publishes accepted disaster records to a sink topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/disaster-record-service/internal/config"
	"github.com/couchcryptid/disaster-record-service/internal/domain"
)

// Publisher produces one message per accepted record, keyed by identifier.
// It implements ingest.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishRecord serializes and publishes a single record.
func (p *Publisher) PublishRecord(ctx context.Context, record domain.DisasterRecord) error {
	msg, err := serializeToMessage(record)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a DisasterRecord into a Kafka message.
func serializeToMessage(record domain.DisasterRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize disaster record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "disaster_category", Value: []byte(record.DisasterCategoryCode)},
			{Key: "ingested_at", Value: []byte(record.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
