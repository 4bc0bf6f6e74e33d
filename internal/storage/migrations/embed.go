package migrations

import "embed"

// postgresFS holds the wallet_transactions and address_labels schema.
//
//go:embed postgres/*.sql
var postgresFS embed.FS

// clickhouseFS holds the score_history analytics schema.
//
//go:embed clickhouse/*.sql
var clickhouseFS embed.FS
