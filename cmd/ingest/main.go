// Package main provides a batch ingester: it fetches wallet history and
// counterparty labels from Etherscan and stores them in PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"wallet-reputation-lab/internal/etherscan"
	"wallet-reputation-lab/internal/ingestion"
	"wallet-reputation-lab/internal/observability"
	"wallet-reputation-lab/internal/scoring"
	"wallet-reputation-lab/internal/storage"
	"wallet-reputation-lab/internal/storage/migrations"
	pgstore "wallet-reputation-lab/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	addresses := flag.String("addresses", "", "Comma-separated wallet addresses to ingest")
	apiKey := flag.String("etherscan-api-key", os.Getenv("ETHERSCAN_API_KEY"), "Etherscan API key")
	chainID := flag.Int("chain-id", etherscan.DefaultChainID, "EVM chain ID for the Etherscan V2 endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	refresh := flag.Bool("refresh", false, "Delete stored history before ingesting")

	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *addresses == "" {
		logger.Fatal("--addresses is required")
	}
	if *apiKey == "" {
		logger.Fatal("--etherscan-api-key is required")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	list := splitAddresses(*addresses)
	if len(list) == 0 {
		logger.Fatal("No valid addresses given")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	historyStore := pgstore.NewHistoryStore(pool)
	labelStore := pgstore.NewLabelStore(pool)

	client := etherscan.NewHTTPClient(*apiKey, etherscan.WithChainID(*chainID))
	fetcher := ingestion.NewFetcher(ingestion.FetcherOptions{
		API:    client,
		Logger: logger,
	})

	failures := 0
	for _, address := range list {
		if err := ingestOne(ctx, fetcher, historyStore, labelStore, address, *refresh, logger); err != nil {
			logger.Printf("ERROR: ingest %s: %v", address, err)
			observability.RecordIngestionError("ingest")
			failures++
		}
	}

	if failures > 0 {
		logger.Fatalf("Ingestion finished with %d failure(s)", failures)
	}
	logger.Printf("Ingestion complete: %d address(es)", len(list))
}

// ingestOne fetches, normalizes and stores one wallet.
func ingestOne(ctx context.Context, fetcher *ingestion.Fetcher, historyStore storage.HistoryStore, labelStore storage.LabelStore, address string, refresh bool, logger *log.Logger) error {
	if refresh {
		if err := historyStore.DeleteByAddress(ctx, address); err != nil {
			return err
		}
	}

	raw, err := fetcher.FetchHistory(ctx, address)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		logger.Printf("%s: no on-chain activity", address)
		return nil
	}

	history, err := scoring.Normalize(address, raw)
	if err != nil {
		return err
	}

	if err := historyStore.InsertBulk(ctx, address, history.Records); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Printf("%s: already ingested (use --refresh to re-ingest)", address)
			return nil
		}
		return err
	}

	labels := fetcher.FetchLabels(ctx, history.Records)
	for _, label := range labels {
		l := label
		if err := labelStore.Upsert(ctx, &l); err != nil {
			return err
		}
	}

	observability.RecordIngestion(len(raw), len(history.Records), history.Dropped, history.Duplicates, len(labels))

	logger.Printf("%s: stored %d records (%d dropped, %d duplicates), %d labels",
		address, len(history.Records), history.Dropped, history.Duplicates, len(labels))
	return nil
}

// splitAddresses parses and lowercases a comma-separated address list.
func splitAddresses(s string) []string {
	var list []string
	for _, a := range strings.Split(s, ",") {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			list = append(list, a)
		}
	}
	return list
}
