package opendata

import (
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// Default configuration values.
const (
	DefaultBaseURL           = "https://public.opendatasoft.com/api/records/1.0/search/"
	DefaultDataset           = "evenements-publics-openagenda"
	DefaultPageSize          = 300
	DefaultMaxRecords        = 10000
	DefaultRequestsPerSecond = 2.0
	DefaultLookback          = 365 * 24 * time.Hour
)

// Config holds connector settings.
type Config struct {
	BaseURL    string
	Dataset    string
	City       string
	Lang       string
	PageSize   int
	MaxRecords int

	// Since drops events starting before this instant. Zero disables the refinement.
	Since time.Time

	RequestsPerSecond float64
}

// ConfigFromSettings builds a Config from application settings, looking back
// one year from now.
func ConfigFromSettings(s domain.OpenDataSettings, now time.Time) Config {
	cfg := Config{
		BaseURL:           s.BaseURL,
		Dataset:           s.Dataset,
		City:              s.City,
		Lang:              s.Lang,
		PageSize:          s.PageSize,
		MaxRecords:        s.MaxRecords,
		Since:             now.Add(-DefaultLookback),
		RequestsPerSecond: s.RequestsPerSecond,
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxRecords <= 0 {
		c.MaxRecords = DefaultMaxRecords
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
}

// query returns the search parameters for the page starting at start.
func (c *Config) query(start int) url.Values {
	q := url.Values{}
	q.Set("dataset", c.Dataset)
	q.Set("q", "*")
	q.Set("rows", strconv.Itoa(c.PageSize))
	q.Set("start", strconv.Itoa(start))
	q.Set("facet", "date_start")
	if c.City != "" {
		q.Set("refine.location_city", c.City)
	}
	if c.Lang != "" {
		q.Set("refine.lang", c.Lang)
	}
	if !c.Since.IsZero() {
		q.Set("refine.date_start", "["+c.Since.UTC().Format("2006-01-02T15:04:05")+" TO *]")
	}
	return q
}
