package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/storage"
)

// LabelStore implements storage.LabelStore using PostgreSQL.
type LabelStore struct {
	pool *Pool
}

// NewLabelStore creates a new LabelStore.
func NewLabelStore(pool *Pool) *LabelStore {
	return &LabelStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LabelStore = (*LabelStore)(nil)

// Upsert inserts or replaces a label for an address.
func (s *LabelStore) Upsert(ctx context.Context, label *domain.AddressLabel) (err error) {
	defer observeQuery("label_upsert", time.Now(), &err)

	if label == nil || label.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO address_labels (address, kind, source, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			kind = EXCLUDED.kind,
			source = EXCLUDED.source,
			confidence = EXCLUDED.confidence,
			updated_at = NOW()
	`

	_, err = s.pool.Exec(ctx, query,
		label.Address, string(label.Kind), label.Source, label.Confidence,
	)
	if err != nil {
		return fmt.Errorf("upsert address label: %w", err)
	}
	return nil
}

// GetByAddresses retrieves labels for the given addresses. Addresses without
// a stored label are absent from the returned map.
func (s *LabelStore) GetByAddresses(ctx context.Context, addresses []string) (labels map[string]domain.AddressLabel, err error) {
	defer observeQuery("label_get_by_addresses", time.Now(), &err)

	result := make(map[string]domain.AddressLabel)
	if len(addresses) == 0 {
		return result, nil
	}

	query := `
		SELECT address, kind, source, confidence
		FROM address_labels
		WHERE address = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, addresses)
	if err != nil {
		return nil, fmt.Errorf("get address labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.AddressLabel
		var kind string

		if err := rows.Scan(&l.Address, &kind, &l.Source, &l.Confidence); err != nil {
			return nil, fmt.Errorf("scan address label row: %w", err)
		}
		l.Kind = domain.LabelKind(kind)
		result[l.Address] = l
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address label rows: %w", err)
	}

	return result, nil
}
