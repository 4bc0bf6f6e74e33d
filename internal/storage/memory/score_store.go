package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.ScoreResult // keyed by address, insertion order
}

// NewScoreStore creates a new in-memory score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		data: make(map[string][]*domain.ScoreResult),
	}
}

// Insert appends a score result.
func (s *ScoreStore) Insert(_ context.Context, result *domain.ScoreResult) error {
	if result == nil || result.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *result
	copy.SubScores = append([]domain.SubScore(nil), result.SubScores...)
	s.data[result.Address] = append(s.data[result.Address], &copy)
	return nil
}

// GetLatest retrieves the most recent result for an address.
func (s *ScoreStore) GetLatest(_ context.Context, address string) (*domain.ScoreResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := s.data[address]
	if len(results) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := results[0]
	for _, r := range results[1:] {
		if r.ComputedAt.After(latest.ComputedAt) {
			latest = r
		}
	}

	copy := *latest
	copy.SubScores = append([]domain.SubScore(nil), latest.SubScores...)
	return &copy, nil
}

// GetHistory retrieves all results for an address, ordered by computed_at ASC.
func (s *ScoreStore) GetHistory(_ context.Context, address string) ([]*domain.ScoreResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*domain.ScoreResult, 0, len(s.data[address]))
	for _, r := range s.data[address] {
		copy := *r
		copy.SubScores = append([]domain.SubScore(nil), r.SubScores...)
		results = append(results, &copy)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ComputedAt.Before(results[j].ComputedAt)
	})

	return results, nil
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
