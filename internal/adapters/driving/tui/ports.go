// Package tui is the full-screen chat over the ask service.
package tui

import (
	"errors"

	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

// ErrMissingAskService is returned by NewApp when Ports.Ask is nil.
var ErrMissingAskService = errors.New("tui: ask service is required")

// Ports are the services the chat drives.
type Ports struct {
	Ask driving.AskService
}

func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
