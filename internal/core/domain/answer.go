package domain

import "time"

// RetrievalMode records how the chunks behind an answer were selected.
type RetrievalMode string

// Available retrieval modes.
const (
	// RetrievalModeVector means the query was embedded and searched.
	RetrievalModeVector RetrievalMode = "vector"

	// RetrievalModeFollowUp means a vague follow-up reused the session's last chunk.
	RetrievalModeFollowUp RetrievalMode = "follow_up"
)

// String returns the string representation.
func (m RetrievalMode) String() string {
	return string(m)
}

// Question is a request to the ask pipeline.
type Question struct {
	// Text is the user's question.
	Text string

	// SessionID scopes follow-up resolution. Empty means DefaultSessionID.
	SessionID string

	// TopK overrides the configured number of chunks to retrieve when > 0.
	// Zero means the configured default; a negative value retrieves nothing.
	TopK int

	// TodayOnly keeps only chunks whose dates mention the current day,
	// falling back to all chunks when none do.
	TodayOnly bool
}

// Answer is the grounded response to a Question.
type Answer struct {
	// Question echoes the asked question.
	Question string `json:"question"`

	// Response is the generated text.
	Response string `json:"response"`

	// Context is the audit trail of texts shown to the model.
	Context []string `json:"context"`

	// Retrieved holds the chunks that grounded the prompt, in rank order.
	Retrieved []Chunk `json:"retrieved,omitempty"`

	// Mode records how Retrieved was selected.
	Mode RetrievalMode `json:"mode"`

	// Prompt is the exact prompt sent to the generator.
	Prompt string `json:"-"`

	// AskedAt is the time used for the prompt's date lines.
	AskedAt time.Time `json:"asked_at"`
}

// SnapshotInfo identifies a persisted (index, metadata) pair.
type SnapshotInfo struct {
	// BuildID is shared by the index file and the metadata store.
	BuildID string `json:"build_id"`

	// Count is the number of vectors, equal to the number of chunks.
	Count int `json:"count"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// BuiltAt is when ingestion produced the snapshot.
	BuiltAt time.Time `json:"built_at"`
}

// IngestStats summarises an ingestion run.
type IngestStats struct {
	EventsRead    int
	EventsSkipped int
	Chunks        int
	Snapshot      SnapshotInfo
	Duration      time.Duration
}

// SourcePreviewLength is the number of characters shown per source text.
const SourcePreviewLength = 150

// Preview returns text cut to n characters, with "..." appended when cut.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
