package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wallet-reputation-lab/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.etherscan.io/v2/api"
	DefaultChainID     = 1 // Ethereum mainnet
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// API is the subset of the Etherscan V2 surface the ingestion layer needs.
type API interface {
	TxList(ctx context.Context, address string) ([]NormalTx, error)
	TokenTransfers(ctx context.Context, address string) ([]TokenTx, error)
	AddressTags(ctx context.Context, addresses []string) ([]AddressTag, error)
}

// HTTPClient implements API against the Etherscan V2 REST endpoint.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	chainID     int
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = u
	}
}

// WithChainID selects the chain queried through the V2 multichain endpoint.
func WithChainID(id int) ClientOption {
	return func(c *HTTPClient) {
		c.chainID = id
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Etherscan client.
func NewHTTPClient(apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		chainID:     DefaultChainID,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ API = (*HTTPClient)(nil)

// TxList retrieves normal (native) transactions for an address, oldest first.
// An address with no transactions returns an empty slice, not an error.
func (c *HTTPClient) TxList(ctx context.Context, address string) ([]NormalTx, error) {
	params := url.Values{
		"module":     {"account"},
		"action":     {"txlist"},
		"address":    {address},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"sort":       {"asc"},
	}

	var result []NormalTx
	if err := c.call(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("txlist %s: %w", address, err)
	}
	return result, nil
}

// TokenTransfers retrieves ERC-20 transfer events for an address, oldest first.
func (c *HTTPClient) TokenTransfers(ctx context.Context, address string) ([]TokenTx, error) {
	params := url.Values{
		"module":     {"account"},
		"action":     {"tokentx"},
		"address":    {address},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"sort":       {"asc"},
	}

	var result []TokenTx
	if err := c.call(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("tokentx %s: %w", address, err)
	}
	return result, nil
}

// AddressTags retrieves public nametags for up to 100 addresses per call.
func (c *HTTPClient) AddressTags(ctx context.Context, addresses []string) ([]AddressTag, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	params := url.Values{
		"module":  {"nametag"},
		"action":  {"getaddresstag"},
		"address": {strings.Join(addresses, ",")},
	}

	var result []AddressTag
	if err := c.call(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("getaddresstag: %w", err)
	}
	return result, nil
}

// call performs a GET request with retries and exponential backoff, then
// unmarshals the envelope's result field into result.
func (c *HTTPClient) call(ctx context.Context, params url.Values, result any) error {
	start := time.Now()
	err := c.doCall(ctx, params, result)
	observability.RecordAPICall(params.Get("action"), time.Since(start).Seconds(), err)
	return err
}

func (c *HTTPClient) doCall(ctx context.Context, params url.Values, result any) error {
	params.Set("chainid", fmt.Sprintf("%d", c.chainID))
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var envelope struct {
			Status  string          `json:"status"`
			Message string          `json:"message"`
			Result  json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			lastErr = fmt.Errorf("unmarshal envelope: %w", err)
			continue
		}

		if envelope.Status != "1" {
			// "No transactions found" is an empty result set, not a failure.
			if strings.Contains(envelope.Message, "No transactions found") ||
				strings.Contains(envelope.Message, "No records found") {
				return nil
			}
			// Rate limit reports arrive as status 0 with a string result.
			if strings.Contains(string(envelope.Result), "rate limit") {
				lastErr = fmt.Errorf("api rate limit: %s", envelope.Message)
				continue
			}
			// API errors are not retried
			return fmt.Errorf("api error: %s: %s", envelope.Message, string(envelope.Result))
		}

		if result != nil && len(envelope.Result) > 0 {
			if err := json.Unmarshal(envelope.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
