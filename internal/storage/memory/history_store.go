package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/idhash"
	"wallet-reputation-lab/internal/storage"
)

// storedRecord pairs a record with its insertion sequence so ties on
// timestamp keep ingestion order.
type storedRecord struct {
	record *domain.TransactionRecord
	seq    int
}

// HistoryStore is an in-memory implementation of storage.HistoryStore.
type HistoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]storedRecord // address -> record_id -> record
	seq  int
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		data: make(map[string]map[string]storedRecord),
	}
}

// InsertBulk adds records for an address atomically. Fails entire batch on any duplicate.
func (s *HistoryStore) InsertBulk(_ context.Context, address string, records []*domain.TransactionRecord) error {
	if address == "" {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[address]
	if existing == nil {
		existing = make(map[string]storedRecord)
		s.data[address] = existing
	}

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.TxHash == "" {
			return storage.ErrInvalidInput
		}
		key := idhash.ComputeRecordID(r.TxHash, r.LogIndex)
		if _, exists := existing[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		key := idhash.ComputeRecordID(r.TxHash, r.LogIndex)
		copy := *r
		s.seq++
		existing[key] = storedRecord{record: &copy, seq: s.seq}
	}

	return nil
}

// GetByAddress retrieves all records for an address, ordered by timestamp ASC.
func (s *HistoryStore) GetByAddress(_ context.Context, address string) ([]*domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := make([]storedRecord, 0, len(s.data[address]))
	for _, sr := range s.data[address] {
		stored = append(stored, sr)
	}

	sort.Slice(stored, func(i, j int) bool {
		if stored[i].record.Timestamp != stored[j].record.Timestamp {
			return stored[i].record.Timestamp < stored[j].record.Timestamp
		}
		return stored[i].seq < stored[j].seq
	})

	result := make([]*domain.TransactionRecord, 0, len(stored))
	for _, sr := range stored {
		copy := *sr.record
		result = append(result, &copy)
	}
	return result, nil
}

// DeleteByAddress removes all records for an address.
func (s *HistoryStore) DeleteByAddress(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, address)
	return nil
}

var _ storage.HistoryStore = (*HistoryStore)(nil)
