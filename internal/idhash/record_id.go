package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeRecordID computes a deterministic per-record identity key using SHA256.
// Formula: SHA256(lower(tx_hash)|log_index)
// Returns hex-encoded hash (64 characters).
// The normalizer deduplicates on this key; storage uses it as primary key.
func ComputeRecordID(txHash string, logIndex int) string {
	data := fmt.Sprintf("%s|%d", strings.ToLower(txHash), logIndex)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
