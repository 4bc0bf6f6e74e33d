// Package api exposes the scoring service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/ingestion"
	"wallet-reputation-lab/internal/observability"
	"wallet-reputation-lab/internal/reporting"
	"wallet-reputation-lab/internal/scoring"
	"wallet-reputation-lab/internal/storage"
)

// addressPattern matches a lowercased EVM address.
var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// Server wires the scoring engine, the upstream fetcher and storage behind
// a chi router.
type Server struct {
	engine       *scoring.Engine
	fetcher      *ingestion.Fetcher
	historyStore storage.HistoryStore
	labelStore   storage.LabelStore
	scoreStore   storage.ScoreStore
	logger       *log.Logger

	mu           sync.Mutex
	started      time.Time
	scoresServed int
}

// ServerOptions contains configuration for creating a Server.
type ServerOptions struct {
	Engine       *scoring.Engine
	Fetcher      *ingestion.Fetcher // nil disables upstream fetching
	HistoryStore storage.HistoryStore
	LabelStore   storage.LabelStore
	ScoreStore   storage.ScoreStore
	Logger       *log.Logger
}

// NewServer creates a new Server.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		engine:       opts.Engine,
		fetcher:      opts.Fetcher,
		historyStore: opts.HistoryStore,
		labelStore:   opts.LabelStore,
		scoreStore:   opts.ScoreStore,
		logger:       logger,
		started:      time.Now(),
	}
}

// Routes returns the HTTP router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", observability.Handler())

	r.Route("/wallet/{address}", func(r chi.Router) {
		r.Get("/score", s.handleScore)
		r.Get("/report", s.handleReport)
		r.Get("/history", s.handleScoreHistory)
	})

	return r
}

// ScoreResponse is the JSON shape of a scoring call.
type ScoreResponse struct {
	Address    string             `json:"address"`
	FinalScore int                `json:"final_score"`
	Profile    string             `json:"profile"`
	Degraded   bool               `json:"degraded"`
	ComputedAt time.Time          `json:"computed_at"`
	Breakdown  []SubScoreResponse `json:"breakdown"`
}

// SubScoreResponse is one indicator of the breakdown.
type SubScoreResponse struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Degraded     bool    `json:"degraded"`
	Rationale    string  `json:"rationale"`
}

// handleScore computes (or recomputes with ?refresh=true) the reputation
// score for an address and persists the result.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	address, ok := s.walletAddress(w, r)
	if !ok {
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"

	result, _, err := s.scoreWallet(r.Context(), address, refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toScoreResponse(result))
}

// handleReport renders the full markdown report for an address.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	address, ok := s.walletAddress(w, r)
	if !ok {
		return
	}

	result, history, err := s.scoreWallet(r.Context(), address, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	past, err := s.scoreStore.GetHistory(r.Context(), address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report := reporting.Build(result, history, past)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(reporting.RenderMarkdown(report)))
}

// handleScoreHistory returns all stored scores for an address, oldest first.
func (s *Server) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	address, ok := s.walletAddress(w, r)
	if !ok {
		return
	}

	results, err := s.scoreStore.GetHistory(r.Context(), address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]ScoreResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, toScoreResponse(res))
	}
	writeJSON(w, http.StatusOK, resp)
}

// scoreWallet loads or fetches wallet history, normalizes it, scores it and
// persists the result.
func (s *Server) scoreWallet(ctx context.Context, address string, refresh bool) (*domain.ScoreResult, *domain.WalletHistory, error) {
	start := time.Now()

	raw, err := s.loadOrFetchHistory(ctx, address, refresh)
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

	labels, err := s.loadLabels(ctx, history)
	if err != nil {
		return nil, nil, err
	}

	result := s.engine.Score(history, labels, time.Now().UTC())

	if err := s.scoreStore.Insert(ctx, result); err != nil {
		return nil, nil, err
	}

	observability.RecordScore(result.Profile, result.FinalScore, result.Degraded(), time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulScore.SetToCurrentTime()

	s.mu.Lock()
	s.scoresServed++
	s.mu.Unlock()

	return result, history, nil
}

// loadOrFetchHistory reads stored records, falling back to (or forced onto)
// the upstream fetcher.
func (s *Server) loadOrFetchHistory(ctx context.Context, address string, refresh bool) ([]*domain.TransactionRecord, error) {
	if refresh && s.fetcher != nil {
		if err := s.historyStore.DeleteByAddress(ctx, address); err != nil {
			return nil, err
		}
	} else {
		stored, err := s.historyStore.GetByAddress(ctx, address)
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 || s.fetcher == nil {
			return stored, nil
		}
	}

	if s.fetcher == nil {
		return nil, nil
	}

	fetched, err := s.fetcher.FetchHistory(ctx, address)
	if err != nil {
		observability.RecordIngestionError("fetch_history")
		return nil, err
	}
	if len(fetched) == 0 {
		return nil, nil
	}

	// Normalize before storing so the history table only carries records
	// with a stable identity.
	history, err := scoring.Normalize(address, fetched)
	if err != nil {
		return nil, err
	}

	if err := s.historyStore.InsertBulk(ctx, address, history.Records); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return nil, err
	}

	labels := s.fetcher.FetchLabels(ctx, history.Records)
	for _, label := range labels {
		l := label
		if err := s.labelStore.Upsert(ctx, &l); err != nil {
			return nil, err
		}
	}

	observability.RecordIngestion(len(fetched), len(history.Records), history.Dropped, history.Duplicates, len(labels))
	observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()

	return history.Records, nil
}

// loadLabels reads stored labels for the history's counterparties.
func (s *Server) loadLabels(ctx context.Context, history *domain.WalletHistory) (map[string]domain.AddressLabel, error) {
	if history.Empty() {
		return nil, nil
	}

	seen := make(map[string]struct{})
	addresses := make([]string, 0)
	for _, rec := range history.Records {
		if _, ok := seen[rec.Counterparty]; ok {
			continue
		}
		seen[rec.Counterparty] = struct{}{}
		addresses = append(addresses, rec.Counterparty)
	}

	return s.labelStore.GetByAddresses(ctx, addresses)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	ScoresServed int    `json:"scores_served"`
	Fetching     bool   `json:"upstream_fetching_enabled"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	served := s.scoresServed
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.started).String(),
		ScoresServed: served,
		Fetching:     s.fetcher != nil,
	})
}

// walletAddress validates and lowercases the address path parameter.
func (s *Server) walletAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := strings.ToLower(chi.URLParam(r, "address"))
	if !addressPattern.MatchString(address) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid address: must be 0x followed by 40 hex characters"})
		return "", false
	}
	return address, true
}

// ErrorResponse is the JSON error shape.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var malformed *scoring.MalformedInputError
	switch {
	case errors.As(err, &malformed):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: malformed.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	default:
		s.logger.Printf("request %s failed: %v", r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func toScoreResponse(result *domain.ScoreResult) ScoreResponse {
	resp := ScoreResponse{
		Address:    result.Address,
		FinalScore: result.FinalScore,
		Profile:    result.Profile,
		Degraded:   result.Degraded(),
		ComputedAt: result.ComputedAt,
	}
	for _, sub := range result.SubScores {
		resp.Breakdown = append(resp.Breakdown, SubScoreResponse{
			Name:         sub.Name,
			Value:        sub.Value,
			Weight:       sub.Weight,
			Contribution: sub.Contribution,
			Degraded:     sub.Degraded,
			Rationale:    sub.Rationale,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
