package handler

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"

	"webgenie/internal/logging"
	"webgenie/internal/model"
	"webgenie/internal/repository"
	"webgenie/internal/service"
	"webgenie/internal/site"
)

// pageTemplates maps a page name to the template file layered over the base
// layout.
var pageTemplates = map[string]string{
	"home":     "html/home.html",
	"editor":   "html/editor.html",
	"projects": "html/projects.html",
	"auth":     "html/auth.html",
	"page":     "html/page.html",
	"error":    "html/error.html",
	"examples": "html/examples.html",
}

type pageData struct {
	Title             string
	GenerationEnabled bool
	ProjectID         string
	ProjectName       string
	InitialHTML       string
	Mode              string
	Body              template.HTML
	Message           string
	PreviewOrigin     string
	Templates         []model.Template
}

// PageHandler renders the HTML pages of the application.
type PageHandler struct {
	templates         map[string]*template.Template
	site              *site.Pages
	projects          *service.ProjectService
	gallery           *service.TemplateService
	generationEnabled bool
	origin            DocumentOrigin
}

// NewPageHandler parses every page template from files, which must hold
// html/base.html and the pages listed in pageTemplates.
func NewPageHandler(files fs.FS, pages *site.Pages, projects *service.ProjectService, gallery *service.TemplateService, generationEnabled bool, origin DocumentOrigin) (*PageHandler, error) {
	templates := make(map[string]*template.Template, len(pageTemplates))
	for name, file := range pageTemplates {
		tmpl, err := template.ParseFS(files, "html/base.html", file)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &PageHandler{
		templates:         templates,
		site:              pages,
		projects:          projects,
		gallery:           gallery,
		generationEnabled: generationEnabled,
		origin:            origin,
	}, nil
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", pageData{
		Title:             "Build a website in seconds",
		GenerationEnabled: h.generationEnabled,
	})
}

// Editor handles GET /editor. The project is loaded client side with the
// user's token.
func (h *PageHandler) Editor(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "editor", pageData{
		Title:         "Editor",
		ProjectID:     r.URL.Query().Get("project"),
		InitialHTML:   service.StarterTemplate,
		PreviewOrigin: h.origin.String(),
	})
}

// Examples handles GET /examples, the template gallery.
func (h *PageHandler) Examples(w http.ResponseWriter, r *http.Request) {
	templates, err := h.gallery.List(r.Context())
	if err != nil {
		h.serverError(w, r, "Failed to list templates", err)
		return
	}
	h.render(w, r, http.StatusOK, "examples", pageData{Title: "Examples", Templates: templates})
}

// Template handles GET /template/{id}: the editor opened on a copy of the
// template. Saving creates a new project.
func (h *PageHandler) Template(w http.ResponseWriter, r *http.Request) {
	t, err := h.gallery.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, "Failed to load template", err)
		return
	}
	h.render(w, r, http.StatusOK, "editor", pageData{
		Title:         t.Name,
		ProjectName:   t.Name,
		InitialHTML:   service.TemplateDocument(t),
		PreviewOrigin: h.origin.String(),
	})
}

// Projects handles GET /projects
func (h *PageHandler) Projects(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "projects", pageData{Title: "Projects"})
}

// Login handles GET /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "auth", pageData{Title: "Log in", Mode: "login"})
}

// Signup handles GET /signup
func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "auth", pageData{Title: "Sign up", Mode: "signup"})
}

// Content handles the Markdown pages: GET /about, /features, /pricing.
func (h *PageHandler) Content(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.site.Get(slug)
		if err != nil {
			h.NotFound(w, r)
			return
		}
		h.render(w, r, http.StatusOK, "page", pageData{Title: page.Title, Body: page.Body})
	}
}

// Public handles GET /p/{id}: a public project rendered under the sandbox
// policy.
func (h *PageHandler) Public(w http.ResponseWriter, r *http.Request) {
	if h.origin.redirect(w, r) {
		return
	}
	p, err := h.projects.GetPublic(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, "Failed to load public project", err)
		return
	}
	writeDocument(w, service.Document(p))
}

// NotFound renders the 404 page.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", pageData{
		Title:   "Page not found",
		Message: "The page you are looking for does not exist.",
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PageHandler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).ErrorContext(r.Context(), msg, slog.Any("error", err))
	h.render(w, r, http.StatusInternalServerError, "error", pageData{
		Title:   "Something went wrong",
		Message: "The page could not be loaded. Please try again later.",
	})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates[name].ExecuteTemplate(&buf, "base", data); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to render page",
			slog.String("page", name),
			slog.Any("error", err),
			slog.String("trace", string(debug.Stack())),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
