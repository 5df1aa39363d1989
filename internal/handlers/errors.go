package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/service"
)

// handleServiceError maps a service error onto an HTTP response.
// Anything that is not a BusinessError becomes an opaque 500.
func handleServiceError(w http.ResponseWriter, err error, op string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		status := statusForCode(businessErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("operation", op),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", status))

		body := map[string]any{
			"error":   businessErr.Code,
			"message": businessErr.Message,
		}
		if len(businessErr.Details) > 0 {
			body["details"] = businessErr.Details
		}
		responseWithJSON(w, status, body)
		return
	}

	logger.Error("HTTP: internal error", err, zap.String("operation", op))
	responseWithError(w, http.StatusInternalServerError, "internal server error")
}

func statusForCode(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
