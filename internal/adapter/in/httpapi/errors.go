package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"microblog/internal/service"
	"microblog/pkg/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes the uniform error envelope: one shape, one status code
// per error kind.
func writeError(w http.ResponseWriter, statusCode int, kind, message string) {
	writeJSON(w, statusCode, errorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// handleServiceError maps service sentinels onto the HTTP error taxonomy.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())

	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", err.Error())

	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "post not found")

	default:
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "internal error")
	}
}
