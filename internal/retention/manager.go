// Package retention ages disaster records out of storage. A sweep moves
// each record forward through the lifecycle state machine
// (active -> archived -> purged) and never backwards, so it is safe to run
// concurrently with ingestion: a record written mid-sweep is simply picked
// up on the next run.
package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-record-service/internal/domain"
	"github.com/couchcryptid/disaster-record-service/internal/observability"
	"github.com/couchcryptid/disaster-record-service/internal/store"
)

// Policy holds the retention windows. Categories without an override use
// the default window; archived records survive for the grace period before
// being purged.
type Policy struct {
	DefaultWindow   time.Duration
	CategoryWindows map[string]time.Duration
	ArchiveGrace    time.Duration
}

// WindowFor returns the retention window for a disaster category code.
func (p Policy) WindowFor(categoryCode string) time.Duration {
	if w, ok := p.CategoryWindows[categoryCode]; ok {
		return w
	}
	return p.DefaultWindow
}

// Report summarizes one sweep.
type Report struct {
	Scanned  int `json:"scanned"`
	Archived int `json:"archived"`
	Purged   int `json:"purged"`
}

// Manager runs on-demand retention sweeps over the record store.
type Manager struct {
	store   store.RecordStore
	policy  Policy
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Manager.
func New(s store.RecordStore, policy Policy, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		store:   s,
		policy:  policy,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Run sweeps every stored record once. Active records older than their
// category's window are archived; archived records past the grace period
// are purged. Records transitioned concurrently by another actor are
// skipped, not failed.
func (m *Manager) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	records, err := m.store.Snapshot(ctx)
	if err != nil {
		return Report{}, err
	}

	now := m.clock.Now().UTC()
	var report Report

	for _, record := range records {
		report.Scanned++

		switch record.State {
		case domain.StateActive:
			ref := record.EventTime
			if ref.IsZero() {
				ref = record.CreatedAt
			}
			if now.Sub(ref) <= m.policy.WindowFor(record.DisasterCategoryCode) {
				continue
			}
			applied, err := m.transition(ctx, record.ID, domain.StateActive, domain.StateArchived)
			if err != nil {
				return report, err
			}
			if applied {
				report.Archived++
			}

		case domain.StateArchived:
			if record.ArchivedAt == nil || now.Sub(*record.ArchivedAt) <= m.policy.ArchiveGrace {
				continue
			}
			applied, err := m.transition(ctx, record.ID, domain.StateArchived, domain.StatePurged)
			if err != nil {
				return report, err
			}
			if applied {
				report.Purged++
			}
		}
	}

	m.metrics.RetentionScanned.Add(float64(report.Scanned))
	m.metrics.RetentionArchived.Add(float64(report.Archived))
	m.metrics.RetentionPurged.Add(float64(report.Purged))
	m.metrics.RetentionDuration.Observe(time.Since(start).Seconds())

	m.logger.Info("retention sweep complete",
		"scanned", report.Scanned,
		"archived", report.Archived,
		"purged", report.Purged,
	)
	return report, nil
}

// transition applies a state change, tolerating records that were moved or
// removed by a concurrent actor since the snapshot was taken. It reports
// whether the transition was actually applied.
func (m *Manager) transition(ctx context.Context, id string, from, to domain.State) (bool, error) {
	err := m.store.TransitionState(ctx, id, from, to)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrStateConflict) {
		m.logger.Debug("record moved concurrently, skipping", "id", id, "from", string(from), "to", string(to))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
