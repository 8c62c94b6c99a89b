package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-record-service/internal/domain"
)

// MemoryStore is a mutex-guarded in-memory RecordStore. It favors clarity
// over performance and is the default when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.DisasterRecord
	clock   clockwork.Clock
}

// NewMemoryStore creates an empty in-memory store using the given clock
// for lifecycle timestamps.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.DisasterRecord),
		clock:   clock,
	}
}

func (s *MemoryStore) Insert(_ context.Context, record domain.DisasterRecord) (domain.DisasterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return domain.DisasterRecord{}, ErrDuplicateIdentifier
	}

	now := s.clock.Now().UTC()
	record.State = domain.StateActive
	record.CreatedAt = now
	record.UpdatedAt = now
	record.LastAccessedAt = now
	record.ArchivedAt = nil

	s.records[record.ID] = record
	return record, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.DisasterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return domain.DisasterRecord{}, ErrNotFound
	}
	record.LastAccessedAt = s.clock.Now().UTC()
	s.records[id] = record
	return record, nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) (int, []domain.DisasterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.DisasterRecord, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return total, nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return total, all, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) TransitionState(_ context.Context, id string, from, to domain.State) error {
	if !domain.ValidTransition(from, to) {
		return ErrStateConflict
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if record.State != from {
		return ErrStateConflict
	}

	if to == domain.StatePurged {
		delete(s.records, id)
		return nil
	}

	now := s.clock.Now().UTC()
	record.State = to
	record.UpdatedAt = now
	if to == domain.StateArchived {
		record.ArchivedAt = &now
	}
	s.records[id] = record
	return nil
}

func (s *MemoryStore) Snapshot(_ context.Context) ([]domain.DisasterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.DisasterRecord, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	return all, nil
}
