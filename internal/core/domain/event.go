package domain

import "time"

// Event is a normalised public event record.
// It is immutable once ingested.
type Event struct {
	// EventID is the upstream identifier (OpenAgenda uid).
	EventID string `json:"event_id"`

	// Title is the human-readable event title.
	Title string `json:"title"`

	// Description is the short description.
	Description string `json:"description,omitempty"`

	// LongDescription is the long description, possibly with HTML.
	LongDescription string `json:"long_description,omitempty"`

	// OCRText is text extracted from the event image, when available.
	OCRText string `json:"ocr_text,omitempty"`

	// DatesText is the human-readable rendering of the event dates.
	DatesText string `json:"dates_text"`

	// GeoText is the human-readable rendering of the event location.
	GeoText string `json:"geo_text"`

	// AgeText is the human-readable age range, when known.
	AgeText string `json:"age_text,omitempty"`

	// VectoriseText is the cleaned concatenation that gets embedded.
	VectoriseText string `json:"vectorise_text"`

	// FirstDate is the start of the first occurrence, zero when unknown.
	FirstDate time.Time `json:"first_date,omitempty"`
}

// Chunk is a retrievable window of an event's vectorise text.
// The i-th chunk of a snapshot corresponds to the i-th index vector.
type Chunk struct {
	// Position is the ordinal position within the snapshot.
	Position int `json:"position"`

	// EventID links back to the source Event.
	EventID string `json:"event_id"`

	Title     string `json:"title"`
	DatesText string `json:"dates_text"`
	GeoText   string `json:"geo_text"`

	// VectoriseText is a copy of the source event's full text.
	VectoriseText string `json:"vectorise_text"`

	// Text is the literal window taken from VectoriseText.
	Text string `json:"chunk"`

	// FullVectoriseText and ContextChunk are optional audit fields
	// consulted before VectoriseText when building context texts.
	FullVectoriseText string `json:"full_vectorise_text,omitempty"`
	ContextChunk      string `json:"context_chunk,omitempty"`
}

// DefaultSessionID is used when a caller does not identify its conversation.
const DefaultSessionID = "default"

// RawEvent is an untyped record fetched by a connector, before normalisation.
type RawEvent struct {
	// Source identifies the connector that produced the record.
	Source string

	// URI locates the record (page URL, file path and line).
	URI string

	// Fields holds the record's key/value pairs as decoded from JSON.
	Fields map[string]any
}
