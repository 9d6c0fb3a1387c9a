package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qcteam/teamcal/internal/domain"
)

// Error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// respondDomainError maps a use-case error onto the envelope.
func respondDomainError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		details := make([]string, len(ve.Errs))
		for i, e := range ve.Errs {
			details[i] = e.Error()
		}
		RespondWithError(c, http.StatusBadRequest, &APIError{
			Code:    ErrCodeInvalidInput,
			Message: "Task is invalid",
			Details: details,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrConfirmationNotFound):
		RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, err.Error()))
	case errors.Is(err, domain.ErrConfirmationPending):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, err.Error()))
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidDepartment),
		errors.Is(err, domain.ErrNoFieldsToUpdate):
		BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "Internal server error"))
	}
}
