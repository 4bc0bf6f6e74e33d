// Package main provides the wallet reputation HTTP service: it ingests
// wallet history from Etherscan on demand, scores it and serves explainable
// results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wallet-reputation-lab/internal/api"
	"wallet-reputation-lab/internal/etherscan"
	"wallet-reputation-lab/internal/ingestion"
	"wallet-reputation-lab/internal/reference"
	"wallet-reputation-lab/internal/scoring"
	"wallet-reputation-lab/internal/storage"
	chstore "wallet-reputation-lab/internal/storage/clickhouse"
	"wallet-reputation-lab/internal/storage/memory"
	"wallet-reputation-lab/internal/storage/migrations"
	pgstore "wallet-reputation-lab/internal/storage/postgres"
)

// appStores holds all storage implementations.
type appStores struct {
	historyStore storage.HistoryStore
	labelStore   storage.LabelStore
	scoreStore   storage.ScoreStore
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	apiKey := flag.String("etherscan-api-key", os.Getenv("ETHERSCAN_API_KEY"), "Etherscan API key (empty disables upstream fetching)")
	chainID := flag.Int("chain-id", envIntOr("CHAIN_ID", etherscan.DefaultChainID), "EVM chain ID for the Etherscan V2 endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	engine, err := buildEngine()
	if err != nil {
		logger.Fatalf("Failed to build scoring engine: %v", err)
	}

	var fetcher *ingestion.Fetcher
	if *apiKey != "" {
		client := etherscan.NewHTTPClient(*apiKey, etherscan.WithChainID(*chainID))
		fetcher = ingestion.NewFetcher(ingestion.FetcherOptions{
			API:    client,
			Logger: log.New(os.Stdout, "[ingestion] ", log.LstdFlags|log.Lshortfile),
		})
		logger.Printf("Upstream fetching enabled (chain %d)", *chainID)
	} else {
		logger.Println("No Etherscan API key: serving stored history only")
	}

	server := api.NewServer(api.ServerOptions{
		Engine:       engine,
		Fetcher:      fetcher,
		HistoryStore: stores.historyStore,
		LabelStore:   stores.labelStore,
		ScoreStore:   stores.scoreStore,
		Logger:       logger,
	})

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// buildEngine creates the scoring engine with default weights and the
// bundled asset-risk table.
func buildEngine() (*scoring.Engine, error) {
	assets, err := reference.LoadAssetRisk()
	if err != nil {
		return nil, fmt.Errorf("load asset risk table: %w", err)
	}
	return scoring.NewEngine(scoring.DefaultConfig(), assets)
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*appStores, func(), error) {
	if useMemory {
		stores := &appStores{
			historyStore: memory.NewHistoryStore(),
			labelStore:   memory.NewLabelStore(),
			scoreStore:   memory.NewScoreStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL (source data: transactions + labels)
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse (analytics: score history)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &appStores{
		historyStore: pgstore.NewHistoryStore(pool),
		labelStore:   pgstore.NewLabelStore(pool),
		scoreStore:   chstore.NewScoreStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// envOr returns the env var value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envIntOr returns the env var parsed as int or a default.
func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
