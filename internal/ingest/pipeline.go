// Package ingest admits disaster event submissions: it normalizes raw
// attribute tuples and pre-encoded identifiers into the same persisted
// form, enforcing dictionary validation through the codec on every write.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/disaster-record-service/internal/codec"
	"github.com/couchcryptid/disaster-record-service/internal/domain"
	"github.com/couchcryptid/disaster-record-service/internal/observability"
	"github.com/couchcryptid/disaster-record-service/internal/store"
)

// Mode selects how a submission carries its event: as raw attributes or as
// an already-encoded identifier.
type Mode string

const (
	ModeRaw     Mode = "raw"
	ModeEncoded Mode = "encoded"
)

// ErrInvalidMode reports an unrecognized submission mode.
var ErrInvalidMode = errors.New(`mode must be "raw" or "encoded"`)

// ParseMode validates a mode string from the request surface.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeRaw, ModeEncoded:
		return Mode(raw), nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidMode, raw)
	}
}

// Submission is one item to ingest. Raw mode reads Event; encoded mode
// reads ID plus the optional measurement fields, which are not part of the
// identifier and must travel alongside it.
type Submission struct {
	ID    string
	Event *domain.DisasterEvent

	Value      *float64
	Unit       string
	MediaPath  string
	RawPayload string
}

// Publisher forwards accepted records to downstream consumers. Optional;
// failures are logged and counted, never surfaced to the submitter.
type Publisher interface {
	PublishRecord(ctx context.Context, record domain.DisasterRecord) error
}

// ItemResult is the outcome of one batch item. Exactly one of Record and
// Err is set.
type ItemResult struct {
	Index  int
	Record *domain.DisasterRecord
	Err    error
}

// Pipeline validates, encodes/decodes, and persists submissions. It is the
// only writer of new records.
type Pipeline struct {
	codec     *codec.Codec
	store     store.RecordStore
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. publisher may be nil when no sink is configured.
func New(c *codec.Codec, s store.RecordStore, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		codec:     c,
		store:     s,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Submit ingests a single submission and returns the persisted record.
func (p *Pipeline) Submit(ctx context.Context, mode Mode, sub Submission) (domain.DisasterRecord, error) {
	record, err := p.submit(ctx, mode, sub)
	if err != nil {
		p.metrics.IngestRejected.WithLabelValues(string(mode)).Inc()
		return domain.DisasterRecord{}, err
	}
	p.metrics.IngestAccepted.WithLabelValues(string(mode)).Inc()
	return record, nil
}

// SubmitBatch applies the single-item path independently per entry. One
// item's failure never aborts the batch, and succeeded items are not
// rolled back.
func (p *Pipeline) SubmitBatch(ctx context.Context, mode Mode, subs []Submission) []ItemResult {
	p.metrics.BatchSize.Observe(float64(len(subs)))

	results := make([]ItemResult, len(subs))
	for i, sub := range subs {
		record, err := p.Submit(ctx, mode, sub)
		if err != nil {
			results[i] = ItemResult{Index: i, Err: err}
			continue
		}
		results[i] = ItemResult{Index: i, Record: &record}
	}
	return results
}

// submit normalizes the submission to both forms (identifier + attribute
// tuple) and persists it.
func (p *Pipeline) submit(ctx context.Context, mode Mode, sub Submission) (domain.DisasterRecord, error) {
	id, event, err := p.normalize(mode, sub)
	if err != nil {
		return domain.DisasterRecord{}, err
	}

	record, err := p.store.Insert(ctx, domain.DisasterRecord{ID: id, DisasterEvent: event})
	if err != nil {
		return domain.DisasterRecord{}, err
	}

	p.logger.Info("record ingested", "id", record.ID, "mode", string(mode),
		"disaster_category", record.DisasterCategoryCode)

	if p.publisher != nil {
		if err := p.publisher.PublishRecord(ctx, record); err != nil {
			p.metrics.SinkPublishErrors.Inc()
			p.logger.Warn("sink publish failed", "id", record.ID, "error", err)
		}
	}
	return record, nil
}

func (p *Pipeline) normalize(mode Mode, sub Submission) (string, domain.DisasterEvent, error) {
	switch mode {
	case ModeRaw:
		var event domain.DisasterEvent
		if sub.Event != nil {
			event = *sub.Event
		}
		id, err := p.codec.Encode(event)
		if err != nil {
			p.metrics.EncodeErrors.Inc()
			return "", domain.DisasterEvent{}, err
		}
		// Decode the identifier we just produced so the persisted tuple
		// is the canonical form with resolved names.
		canonical, err := p.codec.Decode(id)
		if err != nil {
			return "", domain.DisasterEvent{}, err
		}
		canonical.Value = event.Value
		canonical.Unit = event.Unit
		canonical.MediaPath = event.MediaPath
		canonical.RawPayload = event.RawPayload
		return id, canonical, nil

	case ModeEncoded:
		event, err := p.codec.Decode(sub.ID)
		if err != nil {
			p.metrics.DecodeErrors.Inc()
			return "", domain.DisasterEvent{}, err
		}
		event.Value = sub.Value
		event.Unit = sub.Unit
		event.MediaPath = sub.MediaPath
		event.RawPayload = sub.RawPayload
		return sub.ID, event, nil

	default:
		return "", domain.DisasterEvent{}, fmt.Errorf("%w: got %q", ErrInvalidMode, mode)
	}
}
