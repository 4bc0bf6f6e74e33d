package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a transaction record
	// whose (tx_hash, log_index) identity already exists. History is
	// append-only; re-ingestion goes through DeleteByAddress.
	ErrDuplicateKey = errors.New("duplicate key: record identity already stored")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
