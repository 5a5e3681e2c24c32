package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/tcaws"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{tcaws.ErrNotFound, http.StatusNotFound, "not_found", "Object not found"},
	{tcaws.ErrPermission, http.StatusForbidden, "forbidden", "Access to the object was denied"},
	{tcaws.ErrInvalidInput, http.StatusBadRequest, "invalid_input", "Invalid request"},
	{tcaws.ErrUnsupported, http.StatusNotImplemented, "unsupported", "Operation not supported by this backend"},
	{tcaws.ErrNetwork, http.StatusBadGateway, "bad_gateway", "Object store unreachable"},
	{tcaws.ErrUpstream, http.StatusBadGateway, "bad_gateway", "Object store returned an error"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout", "Object store timed out"},
}

// StatusFor returns the HTTP status and error code err maps to.
func StatusFor(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.message
		}
	}
	return http.StatusInternalServerError, "internal_error", "Internal server error"
}

// HandleError writes appropriate error response based on error type
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := StatusFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request error",
		"request_id", RequestIDFromContext(r.Context()),
		"status", status,
		"error", err,
	)

	WriteError(w, status, code, message)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
