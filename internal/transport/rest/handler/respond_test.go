package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"webgenie/internal/analyzer"
	"webgenie/internal/auth"
	"webgenie/internal/generator"
	"webgenie/internal/preview"
	"webgenie/internal/repository"
	"webgenie/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("loading: %w", preview.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrEmailTaken, http.StatusConflict},
		{preview.ErrSessionClosed, http.StatusGone},
		{preview.ErrUnknownDevice, http.StatusBadRequest},
		{service.ErrInvalidProject, http.StatusBadRequest},
		{analyzer.ErrInvalidURL, http.StatusBadRequest},
		{fmt.Errorf("fetching: %w", analyzer.ErrBlockedAddress), http.StatusBadRequest},
		{errSignInRequired, http.StatusUnauthorized},
		{generator.ErrPromptTooLong, http.StatusBadRequest},
		{generator.ErrRateLimited, http.StatusTooManyRequests},
		{generator.ErrDisabled, http.StatusServiceUnavailable},
		{generator.ErrEmptyResponse, http.StatusBadGateway},
		{analyzer.ErrPageStatus, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestWriteServiceError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, httptest.NewRequest("GET", "/", nil), errors.New("dsn=secret"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
