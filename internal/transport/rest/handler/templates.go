package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"webgenie/internal/service"
	"webgenie/internal/transport/rest/middleware"
)

// TemplateHandler exposes the template gallery.
type TemplateHandler struct {
	templates *service.TemplateService
	projects  *service.ProjectService
}

func NewTemplateHandler(templates *service.TemplateService, projects *service.ProjectService) *TemplateHandler {
	return &TemplateHandler{templates: templates, projects: projects}
}

// List handles GET /api/v1/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// Get handles GET /api/v1/templates/{id}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Use handles POST /api/v1/templates/{id}/projects: it copies the template
// into a new project of the caller.
func (h *TemplateHandler) Use(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.templates.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	p, err := h.projects.Create(ctx, middleware.GetUserID(ctx), service.ProjectFromTemplate(t))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
