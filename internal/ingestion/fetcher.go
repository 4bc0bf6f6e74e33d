package ingestion

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/etherscan"
)

// scamMarkers are substrings of public nametags that mark a counterparty
// as malicious (e.g. "Fake_Phishing", "Exploiter", "OFAC sanctioned").
var scamMarkers = []string{
	"phish", "hack", "scam", "drainer", "malicious",
	"exploit", "fraud", "blacklist", "ofac",
}

const (
	// defaultTopCounterparties bounds how many counterparties get a label
	// lookup per wallet; the most frequent ones dominate the risk signal.
	defaultTopCounterparties = 40

	// tagBatchSize is the Etherscan getaddresstag per-call address limit.
	tagBatchSize = 100
)

// Fetcher pulls raw wallet history and counterparty labels from Etherscan.
type Fetcher struct {
	api               etherscan.API
	topCounterparties int
	logger            *log.Logger
}

// FetcherOptions contains configuration for creating a Fetcher.
type FetcherOptions struct {
	API               etherscan.API
	TopCounterparties int
	Logger            *log.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	top := opts.TopCounterparties
	if top == 0 {
		top = defaultTopCounterparties
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Fetcher{
		api:               opts.API,
		topCounterparties: top,
		logger:            logger,
	}
}

// FetchHistory retrieves native transactions and ERC-20 transfers for an
// address in parallel and converts them to raw transaction records. The
// records are unnormalized: ordering and dedup happen downstream.
func (f *Fetcher) FetchHistory(ctx context.Context, address string) ([]*domain.TransactionRecord, error) {
	address = strings.ToLower(address)

	var (
		normal []etherscan.NormalTx
		tokens []etherscan.TokenTx
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		normal, err = f.api.TxList(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		tokens, err = f.api.TokenTransfers(gctx, address)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", address, err)
	}

	records := make([]*domain.TransactionRecord, 0, len(normal)+len(tokens))

	for _, tx := range normal {
		r, ok := convertNormalTx(address, tx)
		if !ok {
			continue
		}
		records = append(records, r)
	}

	// Token transfers share tx hashes with native rows; a per-hash counter
	// starting at 1 keeps their record identities distinct.
	transferSeq := make(map[string]int)
	for _, tx := range tokens {
		r, ok := convertTokenTx(address, tx, transferSeq)
		if !ok {
			continue
		}
		records = append(records, r)
	}

	f.logger.Printf("fetched %d native + %d token rows for %s (%d records)",
		len(normal), len(tokens), address, len(records))

	return records, nil
}

// FetchLabels looks up public nametags for the wallet's most frequent
// counterparties and classifies them. Label lookup is best-effort: any
// failure returns an empty map so scoring can degrade gracefully.
func (f *Fetcher) FetchLabels(ctx context.Context, records []*domain.TransactionRecord) map[string]domain.AddressLabel {
	labels := make(map[string]domain.AddressLabel)

	counterparties := topCounterparties(records, f.topCounterparties)
	if len(counterparties) == 0 {
		return labels
	}

	for start := 0; start < len(counterparties); start += tagBatchSize {
		end := start + tagBatchSize
		if end > len(counterparties) {
			end = len(counterparties)
		}

		tags, err := f.api.AddressTags(ctx, counterparties[start:end])
		if err != nil {
			f.logger.Printf("WARN: address tag lookup failed, degrading: %v", err)
			return map[string]domain.AddressLabel{}
		}

		for _, tag := range tags {
			if tag.Nametag == "" {
				continue
			}
			addr := strings.ToLower(tag.Address)
			labels[addr] = domain.AddressLabel{
				Address:    addr,
				Kind:       classifyNametag(tag.Nametag),
				Source:     "etherscan_nametag",
				Confidence: 0.8,
			}
		}
	}

	return labels
}

// convertNormalTx maps a txlist row to a record. Rows without a usable
// counterparty (contract creations) are skipped.
func convertNormalTx(address string, tx etherscan.NormalTx) (*domain.TransactionRecord, bool) {
	ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
	if err != nil || tx.Hash == "" {
		return nil, false
	}

	from := strings.ToLower(tx.From)
	to := strings.ToLower(tx.To)

	direction := domain.DirectionIn
	counterparty := from
	if from == address {
		direction = domain.DirectionOut
		counterparty = to
	}
	if counterparty == "" {
		return nil, false
	}

	return &domain.TransactionRecord{
		TxHash:       strings.ToLower(tx.Hash),
		LogIndex:     0,
		Timestamp:    ts,
		Counterparty: counterparty,
		Direction:    direction,
		Value:        weiToEth(tx.Value, 18),
		Asset:        "ETH",
		Protocol:     protocolFromFunction(tx.FunctionName),
		Success:      tx.IsError == "0",
	}, true
}

// convertTokenTx maps a tokentx row to a record.
func convertTokenTx(address string, tx etherscan.TokenTx, transferSeq map[string]int) (*domain.TransactionRecord, bool) {
	ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
	if err != nil || tx.Hash == "" {
		return nil, false
	}

	from := strings.ToLower(tx.From)
	to := strings.ToLower(tx.To)

	direction := domain.DirectionIn
	counterparty := from
	if from == address {
		direction = domain.DirectionOut
		counterparty = to
	}
	if counterparty == "" {
		return nil, false
	}

	decimals, err := strconv.Atoi(tx.TokenDecimal)
	if err != nil || decimals < 0 {
		decimals = 18
	}

	hash := strings.ToLower(tx.Hash)
	transferSeq[hash]++

	return &domain.TransactionRecord{
		TxHash:       hash,
		LogIndex:     transferSeq[hash],
		Timestamp:    ts,
		Counterparty: counterparty,
		Direction:    direction,
		Value:        weiToEth(tx.Value, decimals),
		Asset:        strings.ToLower(tx.ContractAddress),
		Protocol:     strings.ToLower(tx.TokenSymbol),
		Success:      true, // tokentx only reports executed transfers
	}, true
}

// weiToEth converts a decimal string in the smallest unit to a float using
// the given number of decimals. Malformed input yields 0.
func weiToEth(raw string, decimals int) float64 {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	v, _ := d.Shift(int32(-decimals)).Float64()
	return v
}

// protocolFromFunction derives a protocol identifier from the decoded
// function signature, e.g. "swapExactETHForTokens(...)" -> "swapexactethfortokens".
func protocolFromFunction(fn string) string {
	if fn == "" {
		return ""
	}
	if i := strings.Index(fn, "("); i > 0 {
		fn = fn[:i]
	}
	return strings.ToLower(strings.TrimSpace(fn))
}

// classifyNametag maps a public nametag to a label kind using scam markers.
func classifyNametag(nametag string) domain.LabelKind {
	lower := strings.ToLower(nametag)
	for _, marker := range scamMarkers {
		if strings.Contains(lower, marker) {
			return domain.LabelMalicious
		}
	}
	return domain.LabelBenign
}

// topCounterparties returns the most frequent counterparty addresses,
// most active first, capped at limit.
func topCounterparties(records []*domain.TransactionRecord, limit int) []string {
	counts := make(map[string]int)
	for _, r := range records {
		if r == nil || r.Counterparty == "" {
			continue
		}
		counts[strings.ToLower(r.Counterparty)]++
	}

	addrs := make([]string, 0, len(counts))
	for a := range counts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		if counts[addrs[i]] != counts[addrs[j]] {
			return counts[addrs[i]] > counts[addrs[j]]
		}
		return addrs[i] < addrs[j]
	})

	if len(addrs) > limit {
		addrs = addrs[:limit]
	}
	return addrs
}
