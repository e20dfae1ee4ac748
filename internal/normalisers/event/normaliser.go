package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/normalisers/html"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// DefaultMaxAge drops events whose first occurrence started longer ago.
const DefaultMaxAge = 365 * 24 * time.Hour

// Normaliser converts raw event records into domain events.
type Normaliser struct {
	now    func() time.Time
	maxAge time.Duration
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithClock sets the clock used for the age cut-off.
func WithClock(now func() time.Time) Option {
	return func(n *Normaliser) {
		n.now = now
	}
}

// WithMaxAge sets the age cut-off. Zero or negative disables it.
func WithMaxAge(d time.Duration) Option {
	return func(n *Normaliser) {
		n.maxAge = d
	}
}

// New creates a normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{
		now:    time.Now,
		maxAge: DefaultMaxAge,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise builds an Event from a raw record. Records without an
// identifier or text, and events older than the cut-off, are rejected
// with domain.ErrInvalidInput.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawEvent) (*domain.Event, error) {
	if raw == nil || raw.Fields == nil {
		return nil, domain.ErrInvalidInput
	}
	f := raw.Fields

	ev := &domain.Event{
		EventID:         firstText(f, "event_id", "uid"),
		Title:           firstText(f, "title", "title_fr"),
		Description:     firstText(f, "description", "description_fr"),
		LongDescription: firstText(f, "long_description", "longdescription_fr"),
		OCRText:         firstText(f, "ocr_text"),
		FirstDate:       parseDate(f["firstdate_begin"]),
	}

	if n.maxAge > 0 && !ev.FirstDate.IsZero() && ev.FirstDate.Before(n.now().Add(-n.maxAge)) {
		return nil, fmt.Errorf("%w: event %s started %s, older than cut-off",
			domain.ErrInvalidInput, ev.EventID, ev.FirstDate.Format("02/01/2006"))
	}

	if pre := toText(f["vectorise_text"]); pre != "" {
		ev.DatesText = toText(f["dates_text"])
		ev.GeoText = toText(f["geo_text"])
		ev.AgeText = toText(f["age_text"])
		ev.VectoriseText = html.Clean(pre)
	} else {
		ev.DatesText = datesText(f)
		ev.GeoText = geoText(f)
		ev.AgeText = ageText(f)
		ev.VectoriseText = html.Clean(strings.Join([]string{
			ev.Title,
			ev.Description,
			ev.LongDescription,
			ev.OCRText,
			ev.DatesText,
			ev.GeoText,
			ev.AgeText,
		}, " "))
	}

	if ev.EventID == "" {
		ev.EventID = raw.URI
	}
	if ev.VectoriseText == "" {
		return nil, fmt.Errorf("%w: record %s has no text", domain.ErrInvalidInput, raw.URI)
	}
	return ev, nil
}
