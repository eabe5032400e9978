// Package api provides helper functions for HTTP API responses.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "sitecanvas-backend/pkg/errors"
)

// Success sends a successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends an error response with a consistent JSON shape.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RespondError maps an application error to its HTTP status and writes it.
// Internal errors are logged with their cause and masked in the response body.
func RespondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := pkgerrors.HTTPStatusOf(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		Error(w, status, "internal server error")
		return
	}
	Error(w, status, err.Error())
}
