// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

// WriteServiceError maps a service error to its HTTP status and writes it
func WriteServiceError(w http.ResponseWriter, err error) {
	WriteErrorResponse(w, err.Error(), StatusForError(err))
}

// StatusForError returns the HTTP status for a service error
func StatusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPeriodNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRefreshUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
