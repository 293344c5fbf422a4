package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kendinapp/kendin-backend/internal/apperr"
	"github.com/kendinapp/kendin-backend/internal/logger"
)

const msgInvalidBody = "Invalid request body"

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func respondSuccess(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, successResponse{Success: true})
}

// writeError maps err to its status and writes its message. Server-side
// failures are logged with the full cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error("request failed", "error", err)
	}
	respondError(w, status, err.Error())
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperr.Validation(msgInvalidBody)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.Validation(msgInvalidBody)
	}
	return nil
}
