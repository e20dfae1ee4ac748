package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
	"github.com/custodia-labs/agenda/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// followUpTriggers mark a question as referring to the previously surfaced event.
var followUpTriggers = []string{
	"cet événement",
	"cet atelier",
	"cette activité",
	"plus de détails",
}

// IsFollowUp reports whether question contains a vague follow-up phrase.
func IsFollowUp(question string) bool {
	lower := strings.ToLower(question)
	for _, t := range followUpTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// AskOptions tunes the ask pipeline.
type AskOptions struct {
	// TopK is the default number of chunks retrieved per question.
	TopK int

	// Generate is passed to the LLM on every call.
	Generate driven.GenerateOptions

	// Now supplies the prompt date. Defaults to time.Now.
	Now func() time.Time
}

// AskService answers questions over the currently loaded snapshot.
type AskService struct {
	snapshot atomic.Pointer[driven.Snapshot]

	store     driven.SnapshotStore
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	sessions  driven.SessionStore
	topK      int
	genOpts   driven.GenerateOptions
	now       func() time.Time
	rebuildMu sync.Mutex
	slots     slotLocks

	mu          sync.RWMutex
	lastContext []string
}

// NewAskService creates an ask service. No snapshot is loaded until
// Rebuild or Install is called.
func NewAskService(
	store driven.SnapshotStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	sessions driven.SessionStore,
	opts AskOptions,
) *AskService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AskService{
		store:    store,
		embedder: embedder,
		llm:      llm,
		sessions: sessions,
		topK:     opts.TopK,
		genOpts:  opts.Generate,
		now:      opts.Now,
	}
}

// Ask retrieves grounding chunks for the question and generates an answer.
func (s *AskService) Ask(ctx context.Context, q domain.Question) (*domain.Answer, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	logger.Section("Ask")
	logger.Debug("Question: %q (session %q)", text, q.SessionID)

	sessionID := q.SessionID
	if sessionID == "" {
		sessionID = domain.DefaultSessionID
	}

	k := q.TopK
	if k == 0 {
		k = s.topK
	}

	now := s.now()
	var retrieved []domain.Chunk
	mode := domain.RetrievalModeFollowUp
	if IsFollowUp(text) {
		retrieved = s.followUp(ctx, sessionID, q.TodayOnly, now)
	}
	if retrieved == nil {
		var err error
		mode = domain.RetrievalModeVector
		if retrieved, err = s.search(ctx, text, k); err != nil {
			return nil, err
		}
		if q.TodayOnly {
			retrieved = FilterEventsToday(retrieved, now)
		}
		unlock := s.slots.lock(sessionID)
		s.remember(ctx, sessionID, retrieved)
		unlock()
	}

	prompt, contexts := AssemblePrompt(text, retrieved, now)
	s.setLastContext(contexts)
	logger.Debug("Prompt: %d chunks, %d bytes", len(retrieved), len(prompt))

	start := time.Now()
	response, err := s.llm.Generate(ctx, prompt, s.genOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	logger.Debug("Generated %d bytes in %s", len(response), time.Since(start))

	return &domain.Answer{
		Question:  text,
		Response:  response,
		Context:   contexts,
		Retrieved: retrieved,
		Mode:      mode,
		Prompt:    prompt,
		AskedAt:   now,
	}, nil
}

// followUp resolves a vague follow-up to the session's remembered chunk.
// The read and the write back happen under the session's slot lock so a
// concurrent ask cannot be overwritten with a stale chunk. It returns nil
// when nothing is remembered.
func (s *AskService) followUp(ctx context.Context, sessionID string, todayOnly bool, now time.Time) []domain.Chunk {
	unlock := s.slots.lock(sessionID)
	defer unlock()

	last, ok, err := s.sessions.Last(ctx, sessionID)
	if err != nil {
		logger.Warn("session %q unreadable, falling back to search: %v", sessionID, err)
		return nil
	}
	if !ok {
		return nil
	}
	logger.Debug("Mode: follow-up on %q", last.Title)

	retrieved := []domain.Chunk{last}
	if todayOnly {
		retrieved = FilterEventsToday(retrieved, now)
	}
	s.remember(ctx, sessionID, retrieved)
	return retrieved
}

// remember stores the top chunk as the session's slot. Callers hold the
// slot lock. An empty retrieval leaves the slot unchanged.
func (s *AskService) remember(ctx context.Context, sessionID string, retrieved []domain.Chunk) {
	if len(retrieved) == 0 {
		return
	}
	if err := s.sessions.SetLast(ctx, sessionID, retrieved[0]); err != nil {
		logger.Warn("session %q not updated: %v", sessionID, err)
	}
}

// search embeds the question and returns the chunks of the k nearest
// vectors in the live snapshot.
func (s *AskService) search(ctx context.Context, text string, k int) ([]domain.Chunk, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: no snapshot loaded", domain.ErrIndexUnavailable)
	}
	if k <= 0 {
		return []domain.Chunk{}, nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	hits, err := snap.Index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrEmbedding, err)
	}

	retrieved := make([]domain.Chunk, 0, len(hits))
	for _, h := range hits {
		if c, ok := snap.Chunk(h.Position); ok {
			retrieved = append(retrieved, c)
		}
	}
	logger.Debug("Mode: vector, %d hits", len(retrieved))
	return retrieved, nil
}

// Rebuild loads the persisted snapshot and swaps it in. On failure the
// previous snapshot stays live.
func (s *AskService) Rebuild(ctx context.Context) (domain.SnapshotInfo, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrIndexUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		logger.Error("rebuild failed, keeping current snapshot: %v", err)
		return domain.SnapshotInfo{}, err
	}

	s.Install(snap)
	return snap.Info, nil
}

// Install swaps in an already validated snapshot.
func (s *AskService) Install(snap *driven.Snapshot) {
	s.snapshot.Store(snap)
	logger.Infow("snapshot installed",
		"build_id", snap.Info.BuildID,
		"count", snap.Info.Count,
		"dimensions", snap.Info.Dimensions)
}

// Snapshot returns the serving snapshot, or nil.
func (s *AskService) Snapshot() *driven.Snapshot {
	return s.snapshot.Load()
}

// Health reports whether a snapshot is loaded and which models serve it.
func (s *AskService) Health(_ context.Context) driving.HealthStatus {
	status := driving.HealthStatus{
		EmbeddingModel: s.embedder.ModelName(),
		LLMModel:       s.llm.ModelName(),
	}
	if snap := s.snapshot.Load(); snap != nil {
		status.Ready = true
		status.Snapshot = snap.Info
	}
	return status
}

// LastContext returns a copy of the context texts of the most recent Ask.
func (s *AskService) LastContext() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lastContext))
	copy(out, s.lastContext)
	return out
}

func (s *AskService) setLastContext(contexts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastContext = contexts
}
