package storage

import (
	"context"

	"wallet-reputation-lab/internal/domain"
)

// HistoryStore provides access to wallet_transactions storage.
// Records are keyed by the (tx_hash, log_index) identity hash.
type HistoryStore interface {
	// InsertBulk adds records for an address atomically.
	// Fails the entire batch with ErrDuplicateKey on any duplicate.
	InsertBulk(ctx context.Context, address string, records []*domain.TransactionRecord) error

	// GetByAddress retrieves all records for an address, ordered by
	// timestamp ASC (ties by insertion order). Empty slice if none.
	GetByAddress(ctx context.Context, address string) ([]*domain.TransactionRecord, error)

	// DeleteByAddress removes all records for an address (re-ingestion).
	DeleteByAddress(ctx context.Context, address string) error
}

// LabelStore provides access to address_labels storage.
type LabelStore interface {
	// Upsert inserts or replaces a label for an address.
	Upsert(ctx context.Context, label *domain.AddressLabel) error

	// GetByAddresses retrieves labels for the given addresses. Addresses
	// without a stored label are simply absent from the returned map.
	GetByAddresses(ctx context.Context, addresses []string) (map[string]domain.AddressLabel, error)
}

// ScoreStore provides access to score_history storage (analytics).
type ScoreStore interface {
	// Insert appends a score result. Score history is append-only.
	Insert(ctx context.Context, result *domain.ScoreResult) error

	// GetLatest retrieves the most recent result for an address.
	// Returns ErrNotFound if the address was never scored.
	GetLatest(ctx context.Context, address string) (*domain.ScoreResult, error)

	// GetHistory retrieves all results for an address, ordered by
	// computed_at ASC.
	GetHistory(ctx context.Context, address string) ([]*domain.ScoreResult, error)
}
