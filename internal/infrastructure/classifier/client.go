package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/posmatch/backend/internal/domain"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 1 << 20

// Config holds classification service client settings
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client handles communication with the natural-language classification service.
// It performs exactly one round trip per call and never retries.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	catalog     domain.ProductCatalog
	logger      *zap.Logger
}

// NewClient creates a new classification client. The catalog projection is
// read from catalog on every request.
func NewClient(cfg Config, catalog domain.ProductCatalog, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, burst),
		catalog:     catalog,
		logger:      logger,
	}
}

// doRequest executes an HTTP POST request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "POSMatch/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassifierTransport, err)
	}

	return resp, nil
}

// Classify sends the query with the catalog projection and returns the
// identifiers the service recommends, most relevant first.
func (c *Client) Classify(ctx context.Context, query string) ([]string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrClassifierTransport, err)
	}

	payload, err := json.Marshal(MapToRequest(query, c.catalog.Projection()))
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrClassifierDecode, err)
	}

	resp, err := c.doRequest(ctx, c.baseURL+"/v1/recommend", payload)
	if err != nil {
		c.logger.Warn("classifier request failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrClassifierTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("classifier returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)))
		return nil, fmt.Errorf("%w: status %d", domain.ErrClassifierStatus, resp.StatusCode)
	}

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassifierDecode, err)
	}

	content := strings.TrimSpace(envelope.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", domain.ErrClassifierDecode)
	}

	ids, err := ParseIdentifiers(content)
	if err != nil {
		c.logger.Warn("classifier content rejected", zap.String("content", string(truncate([]byte(content), 512))), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("classifier answered", zap.String("query", query), zap.Strings("identifiers", ids))
	return ids, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
