// Package mcp serves the ask service to AI assistants over the Model Context
// Protocol, on stdio or streamable HTTP.
package mcp

import (
	"errors"

	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

// ErrMissingAskService is returned by NewServer when Ports.Ask is nil.
var ErrMissingAskService = errors.New("mcp: ask service is required")

// Ports are the services behind the tools and resources.
type Ports struct {
	Ask driving.AskService
}

func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
