package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. The error code,
// when present, travels in the body so clients can branch on it
// without parsing messages.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	}

	body := gin.H{"error": err.Error()}
	if code := apperrors.CodeOf(err); code != "" {
		body["code"] = code
	}

	if status == http.StatusInternalServerError {
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		body["error"] = fallbackMsg
	} else {
		logger.Warn(fallbackMsg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}

// bindError reports a request binding failure.
func bindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

// parseDateQuery reads a date query parameter, accepting either a bare
// date (2026-03-31) or RFC 3339. A missing parameter yields def.
func parseDateQuery(c *gin.Context, name string, def time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid " + name + " date: " + raw)
	}
	return d, nil
}

// requireDateQuery is parseDateQuery with no default.
func requireDateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(name + " query parameter is required")
	}
	return parseDateQuery(c, name, time.Time{})
}
