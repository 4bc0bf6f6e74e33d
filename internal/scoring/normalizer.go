package scoring

import (
	"sort"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/idhash"
)

// Normalize converts an unordered collection of raw transaction-like records
// into a canonical WalletHistory: deduplicated by (tx_hash, log_index)
// identity key, purged of records missing mandatory fields, sorted ascending
// by timestamp with ties kept in ingestion order.
//
// Partial bad data is tolerated: invalid records are excluded and counted on
// the returned history. A MalformedInputError is returned only when the
// entire input is unusable.
func Normalize(address string, raw []*domain.TransactionRecord) (*domain.WalletHistory, error) {
	if len(raw) == 0 {
		return nil, &MalformedInputError{Reason: "no records in input"}
	}

	h := &domain.WalletHistory{Address: address}

	seen := make(map[string]struct{}, len(raw))
	records := make([]*domain.TransactionRecord, 0, len(raw))
	for _, r := range raw {
		if r == nil || r.Timestamp <= 0 || r.Counterparty == "" {
			h.Dropped++
			continue
		}
		key := idhash.ComputeRecordID(r.TxHash, r.LogIndex)
		if _, dup := seen[key]; dup {
			h.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		copy := *r
		records = append(records, &copy)
	}

	if len(records) == 0 {
		return nil, &MalformedInputError{Reason: "all records invalid"}
	}

	// Stable sort keeps ingestion order for equal timestamps.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	h.Records = records
	return h, nil
}
