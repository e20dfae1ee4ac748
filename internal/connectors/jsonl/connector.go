// Package jsonl provides a connector reading pre-processed events from a
// JSON Lines file, one object per line.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// ConnectorType identifies this connector.
const ConnectorType = "jsonl"

// maxLineSize bounds a single record; long descriptions can exceed bufio's default.
const maxLineSize = 4 * 1024 * 1024

// Connector reads events from a JSON Lines file.
type Connector struct {
	path string
}

// New creates a connector for the file at path.
func New(path string) *Connector {
	return &Connector{path: path}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// Validate checks the file exists and is a regular file.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, c.path)
	}
	return nil
}

// FullSync emits every non-blank line as a raw event. A malformed line
// aborts the sync.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawEvent, <-chan error) {
	events := make(chan domain.RawEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		f, err := os.Open(c.path)
		if err != nil {
			errs <- fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			var fields map[string]any
			if err := json.Unmarshal([]byte(text), &fields); err != nil {
				errs <- fmt.Errorf("%w: %s:%d: %w", domain.ErrInvalidInput, c.path, line, err)
				return
			}

			ev := domain.RawEvent{
				Source: ConnectorType,
				URI:    fmt.Sprintf("%s:%d", c.path, line),
				Fields: fields,
			}
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case events <- ev:
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("read %s: %w", c.path, err)
		}
	}()

	return events, errs
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}
