package handler

import (
	"fmt"
	"net/http"

	"webgenie/internal/analyzer"
	"webgenie/internal/logging"
	"webgenie/internal/service"
	"webgenie/internal/transport/rest/middleware"
)

type analyzeRequest struct {
	HTML *string `json:"html"`
	URL  *string `json:"url"`
}

// AnalyzeHandler scores documents and pages.
type AnalyzeHandler struct {
	projects *service.ProjectService
}

func NewAnalyzeHandler(projects *service.ProjectService) *AnalyzeHandler {
	return &AnalyzeHandler{projects: projects}
}

// Analyze handles POST /api/v1/analyze with exactly one of html or url.
// Importing a url needs a signed-in user.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	switch {
	case req.HTML != nil && req.URL != nil:
		writeServiceError(w, r, fmt.Errorf("%w: send either html or url, not both", errBadRequest))
	case req.URL != nil:
		ctx := r.Context()
		if middleware.GetUserID(ctx) == "" {
			writeServiceError(w, r, errSignInRequired)
			return
		}
		result, err := analyzer.AnalyzePage(ctx, logging.FromContext(ctx), *req.URL)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case req.HTML != nil:
		writeJSON(w, http.StatusOK, h.projects.AnalyzeHTML(r.Context(), *req.HTML))
	default:
		writeServiceError(w, r, fmt.Errorf("%w: html or url is required", errBadRequest))
	}
}
