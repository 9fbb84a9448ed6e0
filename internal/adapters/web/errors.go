package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError maps service-layer errors onto HTTP statuses: validation
// failures are 400, configuration failures (bad rates and such) are 422,
// missing records are 404, everything else is 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     vErr.Error(),
			Code:      "VALIDATION_FAILED",
			Field:     vErr.Field,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}
	var cErr *core.ConfigurationError
	if errors.As(err, &cErr) {
		writeError(w, r, cErr.Error(), "CONFIGURATION_INVALID", http.StatusUnprocessableEntity)
		return
	}
	if strings.Contains(err.Error(), "not found") {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
