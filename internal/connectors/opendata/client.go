package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// maxRetries bounds retries of a page after 429 responses.
const maxRetries = 3

// SearchResponse is the records search response format.
type SearchResponse struct {
	NHits   int      `json:"nhits"`
	Records []Record `json:"records"`
}

// Record is a single search hit.
type Record struct {
	RecordID string         `json:"recordid"`
	Fields   map[string]any `json:"fields"`
}

// Client fetches pages from the records search endpoint.
type Client struct {
	http    *http.Client
	pace    *pacer
	cfg     Config
}

// NewClient creates a client for cfg.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.applyDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		http:    httpClient,
		pace:    newPacer(cfg.RequestsPerSecond),
		cfg:     cfg,
	}
}

// FetchPage fetches the page of records starting at start.
func (c *Client) FetchPage(ctx context.Context, start int) (*SearchResponse, error) {
	for attempt := 0; ; attempt++ {
		if err := c.pace.wait(ctx); err != nil {
			return nil, err
		}

		page, retryAfter, err := c.fetch(ctx, start)
		if err == nil {
			return page, nil
		}
		if retryAfter < 0 || attempt >= maxRetries {
			return nil, err
		}
		c.pace.backoff(retryAfter)
	}
}

// fetch performs one request. retryAfter is non-negative only for 429 responses.
func (c *Client) fetch(ctx context.Context, start int) (*SearchResponse, time.Duration, error) {
	u := c.cfg.BaseURL + "?" + c.cfg.query(start).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, -1, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, -1, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, time.Duration(secs) * time.Second, domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, -1, fmt.Errorf("%w: status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, string(body))
	}

	var page SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, -1, fmt.Errorf("decode page: %w", err)
	}
	return &page, -1, nil
}
