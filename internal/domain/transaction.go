package domain

// Direction indicates whether value moved into or out of the scored wallet.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// TransactionRecord is one normalized on-chain interaction of the scored
// wallet. Immutable once ingested.
type TransactionRecord struct {
	TxHash       string    // transaction hash
	LogIndex     int       // log index within the transaction (0 for plain transfers)
	Timestamp    int64     // Unix timestamp in seconds
	Counterparty string    // the other party (lowercase hex address)
	Direction    Direction // relative to the scored wallet
	Value        float64   // transferred value in normalized units (ETH)
	Asset        string    // asset identifier: "ETH" or token contract address
	Protocol     string    // protocol/contract identifier, empty for plain EOA transfers
	Success      bool      // false if the transaction reverted
}

// WalletHistory is the ordered transaction history for one address, the unit
// of input to the scoring engine. Records are sorted ascending by timestamp;
// ties keep ingestion order.
type WalletHistory struct {
	Address string
	Records []*TransactionRecord

	// Normalization transparency counters: records excluded for missing
	// mandatory fields and records removed as duplicates.
	Dropped    int
	Duplicates int
}

// Empty reports whether the history contains no usable records.
func (h *WalletHistory) Empty() bool {
	return h == nil || len(h.Records) == 0
}
