package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusForError maps a service error onto an HTTP status.
// The second result tells whether the error message is safe to show to the client.
func statusForError(err error) (int, bool) {
	switch {
	case errors.Is(err, apperrors.ErrOperationInProgress):
		return http.StatusConflict, true
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict, true
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidDate):
		return http.StatusBadRequest, true
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, apperrors.ErrRateUnavailable):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, apperrors.ErrNoCurrencyAvailable), errors.Is(err, apperrors.ErrCredentialMissing):
		return http.StatusPreconditionFailed, true
	case errors.Is(err, apperrors.ErrFetchFailed):
		return http.StatusBadGateway, false
	default:
		return http.StatusInternalServerError, false
	}
}

// respondWithError writes the error response for err and logs it at a level matching its status.
// fallback is the message used when the error text must not leak to the client.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status, expose := statusForError(err)
	msg := fallback
	if expose {
		msg = err.Error()
	}

	body := gin.H{"error": msg}
	if errors.Is(err, apperrors.ErrOperationInProgress) {
		body["retry"] = true
	}

	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	} else {
		logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}

// requireUserID returns the authenticated user or writes a 401.
func requireUserID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
