package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openorgs/orgd/internal/apperr"
	auditdomain "github.com/openorgs/orgd/internal/audit/domain"
	"github.com/openorgs/orgd/internal/tokens"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts errors pushed onto the gin context
// into a JSON error response. Handlers that already wrote a body are
// left alone.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, apperr.ErrNotAuthorized), errors.Is(err, tokens.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "not_authorized",
			Message: messageOf(err, "unauthorized"),
		}
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: messageOf(err, "conflict"),
		}
	case errors.Is(err, apperr.ErrBadRequest),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidOrganization):
		return http.StatusBadRequest, errorPayload{
			Type:    "bad_request",
			Message: messageOf(err, "bad request"),
		}
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: messageOf(err, "not found"),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func messageOf(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	return payload.Type, strconv.Itoa(status)
}
