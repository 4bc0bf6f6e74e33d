package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/idhash"
	"wallet-reputation-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore using PostgreSQL.
type HistoryStore struct {
	pool *Pool
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(pool *Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// InsertBulk adds records for an address atomically. Fails entire batch on any duplicate.
func (s *HistoryStore) InsertBulk(ctx context.Context, address string, records []*domain.TransactionRecord) (err error) {
	defer observeQuery("history_insert_bulk", time.Now(), &err)

	if address == "" {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO wallet_transactions (
			record_id, address, tx_hash, log_index, ts,
			counterparty, direction, value_eth, asset, protocol, success
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		)
	`

	for _, r := range records {
		if r == nil || r.TxHash == "" {
			return storage.ErrInvalidInput
		}
		recordID := idhash.ComputeRecordID(r.TxHash, r.LogIndex)
		_, err = tx.Exec(ctx, query,
			recordID, address, r.TxHash, r.LogIndex, r.Timestamp,
			r.Counterparty, string(r.Direction), r.Value, r.Asset, r.Protocol, r.Success,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert wallet transaction in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByAddress retrieves all records for an address, ordered by timestamp ASC
// (ties broken by insertion order via the seq column).
func (s *HistoryStore) GetByAddress(ctx context.Context, address string) (records []*domain.TransactionRecord, err error) {
	defer observeQuery("history_get_by_address", time.Now(), &err)

	query := `
		SELECT
			tx_hash, log_index, ts,
			counterparty, direction, value_eth, asset, protocol, success
		FROM wallet_transactions
		WHERE address = $1
		ORDER BY ts ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("get wallet transactions by address: %w", err)
	}
	defer rows.Close()

	return scanTransactionRecords(rows)
}

// DeleteByAddress removes all records for an address.
func (s *HistoryStore) DeleteByAddress(ctx context.Context, address string) (err error) {
	defer observeQuery("history_delete_by_address", time.Now(), &err)

	query := `DELETE FROM wallet_transactions WHERE address = $1`

	if _, err = s.pool.Exec(ctx, query, address); err != nil {
		return fmt.Errorf("delete wallet transactions by address: %w", err)
	}
	return nil
}

// scanTransactionRecords scans multiple rows into a slice of TransactionRecord.
func scanTransactionRecords(rows pgx.Rows) ([]*domain.TransactionRecord, error) {
	var records []*domain.TransactionRecord

	for rows.Next() {
		var r domain.TransactionRecord
		var direction string

		err := rows.Scan(
			&r.TxHash, &r.LogIndex, &r.Timestamp,
			&r.Counterparty, &direction, &r.Value, &r.Asset, &r.Protocol, &r.Success,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet transaction row: %w", err)
		}
		r.Direction = domain.Direction(direction)

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transaction rows: %w", err)
	}

	return records, nil
}
