package opendata

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// ConnectorType identifies this connector.
const ConnectorType = "opendata"

// Connector fetches event records from OpenDataSoft.
type Connector struct {
	client *Client
	cfg    Config
	mu     sync.Mutex
	closed bool
}

// New creates a connector. A nil httpClient uses a default client.
func New(cfg Config, httpClient *http.Client) *Connector {
	cfg.applyDefaults()
	return &Connector{
		client: NewClient(cfg, httpClient),
		cfg:    cfg,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// Validate fetches a single page to check the endpoint answers.
func (c *Connector) Validate(ctx context.Context) error {
	if c.isClosed() {
		return fmt.Errorf("%w: connector closed", domain.ErrSourceUnavailable)
	}
	_, err := c.client.FetchPage(ctx, 0)
	return err
}

// FullSync pages through every matching record, up to MaxRecords.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawEvent, <-chan error) {
	events := make(chan domain.RawEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		if c.isClosed() {
			errs <- fmt.Errorf("%w: connector closed", domain.ErrSourceUnavailable)
			return
		}

		page, err := c.client.FetchPage(ctx, 0)
		if err != nil {
			errs <- fmt.Errorf("fetch first page: %w", err)
			return
		}
		total := page.NHits
		logger.Info("opendata: %d events found", total)

		start := 0
		for {
			for _, rec := range page.Records {
				if rec.Fields == nil {
					continue
				}
				ev := domain.RawEvent{
					Source: ConnectorType,
					URI:    c.cfg.BaseURL + "#" + rec.RecordID,
					Fields: rec.Fields,
				}
				select {
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				case events <- ev:
				}
			}

			start += c.cfg.PageSize
			if len(page.Records) == 0 || start >= total || start >= c.cfg.MaxRecords {
				return
			}

			logger.Debug("opendata: fetching from %d", start)
			page, err = c.client.FetchPage(ctx, start)
			if err != nil {
				errs <- fmt.Errorf("fetch page at %d: %w", start, err)
				return
			}
		}
	}()

	return events, errs
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
