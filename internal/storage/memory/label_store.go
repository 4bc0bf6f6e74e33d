package memory

import (
	"context"
	"sync"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/storage"
)

// LabelStore is an in-memory implementation of storage.LabelStore.
type LabelStore struct {
	mu   sync.RWMutex
	data map[string]domain.AddressLabel // keyed by address
}

// NewLabelStore creates a new in-memory label store.
func NewLabelStore() *LabelStore {
	return &LabelStore{
		data: make(map[string]domain.AddressLabel),
	}
}

// Upsert inserts or replaces a label for an address.
func (s *LabelStore) Upsert(_ context.Context, label *domain.AddressLabel) error {
	if label == nil || label.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[label.Address] = *label
	return nil
}

// GetByAddresses retrieves labels for the given addresses.
func (s *LabelStore) GetByAddresses(_ context.Context, addresses []string) (map[string]domain.AddressLabel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.AddressLabel)
	for _, a := range addresses {
		if l, ok := s.data[a]; ok {
			result[a] = l
		}
	}
	return result, nil
}

var _ storage.LabelStore = (*LabelStore)(nil)
