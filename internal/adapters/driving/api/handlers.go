package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
	"github.com/custodia-labs/agenda/internal/logger"
)

// EmptyQuestionMessage is returned when /ask receives a blank question.
const EmptyQuestionMessage = "La question ne peut pas être vide."

// RebuildMessage is returned when /rebuild succeeds.
const RebuildMessage = "Index et métadonnées rechargés."

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
	TodayOnly bool   `json:"today_only,omitempty"`
}

// AskResponse is the body of a successful POST /ask.
type AskResponse struct {
	Question string   `json:"question"`
	Response string   `json:"response"`
	Context  []string `json:"context"`
}

// RebuildResponse is the body of a successful /rebuild.
type RebuildResponse struct {
	Status   string              `json:"status"`
	Message  string              `json:"message"`
	Snapshot domain.SnapshotInfo `json:"snapshot"`
}

// MetadataResponse is the body of GET /metadata.
type MetadataResponse struct {
	Context []string `json:"context"`
}

// Handler serves the ask pipeline.
type Handler struct {
	ask driving.AskService
}

// NewHandler creates a handler backed by ask.
func NewHandler(ask driving.AskService) *Handler {
	return &Handler{ask: ask}
}

// Ask answers a question.
func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidInput, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		RespondError(c, http.StatusBadRequest, CodeInvalidInput, errors.New(EmptyQuestionMessage))
		return
	}

	answer, err := h.ask.Ask(c.Request.Context(), domain.Question{
		Text:      req.Question,
		SessionID: req.SessionID,
		TopK:      req.TopK,
		TodayOnly: req.TodayOnly,
	})
	if err != nil {
		logger.Errorw("ask failed", "session", req.SessionID, "error", err)
		respondDomainError(c, err)
		return
	}

	contexts := answer.Context
	if contexts == nil {
		contexts = []string{}
	}
	RespondOK(c, AskResponse{
		Question: answer.Question,
		Response: answer.Response,
		Context:  contexts,
	})
}

// Rebuild reloads the persisted snapshot.
func (h *Handler) Rebuild(c *gin.Context) {
	info, err := h.ask.Rebuild(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, RebuildResponse{
		Status:   "success",
		Message:  RebuildMessage,
		Snapshot: info,
	})
}

// Health reports the serving state. Not ready answers 503.
func (h *Handler) Health(c *gin.Context) {
	status := h.ask.Health(c.Request.Context())
	if !status.Ready {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	RespondOK(c, status)
}

// Metadata returns the context texts of the most recent ask.
func (h *Handler) Metadata(c *gin.Context) {
	contexts := h.ask.LastContext()
	if contexts == nil {
		contexts = []string{}
	}
	RespondOK(c, MetadataResponse{Context: contexts})
}
