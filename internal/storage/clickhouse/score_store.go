package clickhouse

import (
	"context"
	"fmt"
	"time"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/observability"
	"wallet-reputation-lab/internal/storage"
)

// ScoreStore implements storage.ScoreStore using ClickHouse.
// Score history is append-only analytics data; MergeTree fits it naturally.
type ScoreStore struct {
	conn *Conn
}

// NewScoreStore creates a new ScoreStore.
func NewScoreStore(conn *Conn) *ScoreStore {
	return &ScoreStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

const scoreColumns = `
	address, computed_at, final_score, profile,
	activity_value, activity_weight, activity_degraded, activity_rationale,
	longevity_value, longevity_weight, longevity_degraded, longevity_rationale,
	diversity_value, diversity_weight, diversity_degraded, diversity_rationale,
	general_risk_value, general_risk_weight, general_risk_degraded, general_risk_rationale,
	asset_risk_value, asset_risk_weight, asset_risk_degraded, asset_risk_rationale
`

// Insert appends a score result.
func (s *ScoreStore) Insert(ctx context.Context, result *domain.ScoreResult) (err error) {
	defer observeQuery("score_insert", time.Now(), &err)

	if result == nil || result.Address == "" {
		return storage.ErrInvalidInput
	}
	if len(result.SubScores) != len(domain.IndicatorOrder) {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO score_history (%s)", scoreColumns))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	args := []any{
		result.Address, result.ComputedAt, uint8(result.FinalScore), result.Profile,
	}
	for _, sub := range result.SubScores {
		args = append(args, sub.Value, sub.Weight, boolToUint8(sub.Degraded), sub.Rationale)
	}

	if err := batch.Append(args...); err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent result for an address.
func (s *ScoreStore) GetLatest(ctx context.Context, address string) (result *domain.ScoreResult, err error) {
	defer observeQuery("score_get_latest", time.Now(), &err)

	query := fmt.Sprintf(`
		SELECT %s FROM score_history
		WHERE address = ?
		ORDER BY computed_at DESC
		LIMIT 1
	`, scoreColumns)

	rows, err := s.conn.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("query latest score: %w", err)
	}
	defer rows.Close()

	results, err := scanScoreResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, storage.ErrNotFound
	}
	return results[0], nil
}

// GetHistory retrieves all results for an address, ordered by computed_at ASC.
func (s *ScoreStore) GetHistory(ctx context.Context, address string) (results []*domain.ScoreResult, err error) {
	defer observeQuery("score_get_history", time.Now(), &err)

	query := fmt.Sprintf(`
		SELECT %s FROM score_history
		WHERE address = ?
		ORDER BY computed_at ASC
	`, scoreColumns)

	rows, err := s.conn.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	return scanScoreResults(rows)
}

// chRows is the subset of driver.Rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanScoreResults scans rows into ScoreResults, rebuilding the sub-score
// breakdown in canonical indicator order.
func scanScoreResults(rows chRows) ([]*domain.ScoreResult, error) {
	var results []*domain.ScoreResult

	for rows.Next() {
		var (
			r          domain.ScoreResult
			computedAt time.Time
			finalScore uint8
			values     [5]float64
			weights    [5]float64
			degraded   [5]uint8
			rationales [5]string
		)

		dest := []any{&r.Address, &computedAt, &finalScore, &r.Profile}
		for i := range domain.IndicatorOrder {
			dest = append(dest, &values[i], &weights[i], &degraded[i], &rationales[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan score history row: %w", err)
		}

		r.ComputedAt = computedAt
		r.FinalScore = int(finalScore)
		r.SubScores = make([]domain.SubScore, 0, len(domain.IndicatorOrder))
		for i, name := range domain.IndicatorOrder {
			r.SubScores = append(r.SubScores, domain.SubScore{
				Name:         name,
				Value:        values[i],
				Weight:       weights[i],
				Contribution: weights[i] * values[i],
				Degraded:     degraded[i] != 0,
				Rationale:    rationales[i],
			})
		}

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history rows: %w", err)
	}

	return results, nil
}

// observeQuery reports query latency and outcome. Deferred by store methods
// with a named error return.
func observeQuery(operation string, start time.Time, err *error) {
	observability.RecordDBQuery("clickhouse", operation, time.Since(start).Seconds(), *err)
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
