package driving

import "github.com/custodia-labs/agenda/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied on top of the config file.
	Get() (*domain.AppSettings, error)

	// Set stores a single dotted key, validating known keys.
	Set(key, value string) error

	// Keys lists the settable keys in display order.
	Keys() []string

	// Validate checks the settings can produce a working pipeline.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Path returns the config file location.
	Path() string
}
