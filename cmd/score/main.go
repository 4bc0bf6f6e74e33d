// Package main provides a one-shot scorer: it fetches a wallet's history
// from Etherscan, scores it and prints the explainable report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/etherscan"
	"wallet-reputation-lab/internal/ingestion"
	"wallet-reputation-lab/internal/reference"
	"wallet-reputation-lab/internal/reporting"
	"wallet-reputation-lab/internal/scoring"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	address := flag.String("address", "", "Wallet address to score")
	apiKey := flag.String("etherscan-api-key", os.Getenv("ETHERSCAN_API_KEY"), "Etherscan API key")
	chainID := flag.Int("chain-id", etherscan.DefaultChainID, "EVM chain ID for the Etherscan V2 endpoint")
	format := flag.String("format", "markdown", "Output format: markdown, csv or json")
	outputFile := flag.String("output", "", "Write output to file instead of stdout")

	flag.Parse()

	logger := log.New(os.Stderr, "[score] ", log.LstdFlags|log.Lshortfile)

	if *address == "" {
		logger.Fatal("--address is required")
	}
	if *apiKey == "" {
		logger.Fatal("--etherscan-api-key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	assets, err := reference.LoadAssetRisk()
	if err != nil {
		logger.Fatalf("Failed to load asset risk table: %v", err)
	}

	engine, err := scoring.NewEngine(scoring.DefaultConfig(), assets)
	if err != nil {
		logger.Fatalf("Failed to build scoring engine: %v", err)
	}

	client := etherscan.NewHTTPClient(*apiKey, etherscan.WithChainID(*chainID))
	fetcher := ingestion.NewFetcher(ingestion.FetcherOptions{
		API:    client,
		Logger: logger,
	})

	addr := strings.ToLower(strings.TrimSpace(*address))

	result, history, err := scoreAddress(ctx, engine, fetcher, addr)
	if err != nil {
		logger.Fatalf("Failed to score %s: %v", addr, err)
	}

	report := reporting.Build(result, history, nil)

	var out string
	switch *format {
	case "markdown":
		out = reporting.RenderMarkdown(report)
	case "csv":
		out = reporting.RenderCSV(report)
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatalf("Failed to marshal result: %v", err)
		}
		out = string(data) + "\n"
	default:
		logger.Fatalf("Unknown format %q (want markdown, csv or json)", *format)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(out), 0644); err != nil {
			logger.Fatalf("Failed to write output: %v", err)
		}
		logger.Printf("Report written to %s", *outputFile)
		return
	}
	fmt.Print(out)
}

// scoreAddress fetches, normalizes and scores one wallet.
func scoreAddress(ctx context.Context, engine *scoring.Engine, fetcher *ingestion.Fetcher, address string) (*domain.ScoreResult, *domain.WalletHistory, error) {
	raw, err := fetcher.FetchHistory(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	history := &domain.WalletHistory{Address: address}
	if len(raw) > 0 {
		history, err = scoring.Normalize(address, raw)
		if err != nil {
			return nil, nil, err
		}
	}

	labels := fetcher.FetchLabels(ctx, history.Records)

	return engine.Score(history, labels, time.Now().UTC()), history, nil
}
