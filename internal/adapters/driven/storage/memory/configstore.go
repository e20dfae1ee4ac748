// Package memory provides in-memory stores for tests and ephemeral runs.
package memory

import (
	"github.com/custodia-labs/agenda/internal/adapters/driven/config/values"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings for the lifetime of the process.
type ConfigStore struct {
	*values.Table
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{Table: values.New()}
}

func (s *ConfigStore) Set(key string, value any) error {
	return s.Update(key, value, nil)
}

// Load is a no-op; there is nothing to re-read.
func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
