package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// Error codes returned in the envelope.
const (
	CodeInvalidInput     = "invalid_input"
	CodeIndexUnavailable = "index_unavailable"
	CodeUpstream         = "upstream_error"
	CodeInternal         = "internal_error"
)

// APIError is the body of a failed request.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope with the given status.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondOK writes payload with status 200.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// statusFor maps domain errors to an HTTP status and envelope code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, domain.ErrIndexUnavailable):
		return http.StatusServiceUnavailable, CodeIndexUnavailable
	case domain.IsAdapterError(err):
		return http.StatusBadGateway, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondDomainError picks the status from err.
func respondDomainError(c *gin.Context, err error) {
	status, code := statusFor(err)
	RespondError(c, status, code, err)
}
