package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"agri-mandi/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("error_code", code).Str("message", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// respondError maps a service error onto an HTTP status and writes it.
// DomainError codes translate to specific statuses; anything else is an
// internal error.
func respondError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	status := http.StatusBadRequest
	switch domainErr.Code {
	case model.ErrCodeOrderNotFound, model.ErrCodeProductNotFound, model.ErrCodeAddressNotFound:
		status = http.StatusNotFound
	case model.ErrCodePermissionDenied:
		status = http.StatusForbidden
	case model.ErrCodeInvalidTransition, model.ErrCodeStockConflict:
		status = http.StatusConflict
	case model.ErrCodeInternalError:
		status = http.StatusInternalServerError
	}

	writeError(w, status, domainErr.Code, domainErr.Message, logger)
}
