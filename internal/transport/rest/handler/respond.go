package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"webgenie/internal/analyzer"
	"webgenie/internal/auth"
	"webgenie/internal/generator"
	"webgenie/internal/logging"
	"webgenie/internal/preview"
	"webgenie/internal/repository"
	"webgenie/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// decodeJSON reads the request body into dst and writes the error response
// itself when that fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, preview.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, errSignInRequired):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, preview.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, auth.ErrInvalidSignup),
		errors.Is(err, service.ErrInvalidProject),
		errors.Is(err, preview.ErrUnknownDevice),
		errors.Is(err, generator.ErrEmptyPrompt),
		errors.Is(err, generator.ErrPromptTooLong),
		errors.Is(err, analyzer.ErrInvalidURL),
		errors.Is(err, analyzer.ErrBlockedAddress),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, generator.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, generator.ErrUpstream),
		errors.Is(err, generator.ErrEmptyResponse),
		errors.Is(err, analyzer.ErrPageStatus),
		errors.Is(err, analyzer.ErrPageOversized):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var (
	errBadRequest     = errors.New("bad request")
	errSignInRequired = errors.New("sign in to analyze a url")
)

// writeServiceError writes err with its mapped status. Internal errors are
// logged and never echoed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
