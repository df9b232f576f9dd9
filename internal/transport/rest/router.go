package rest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"webgenie/internal/auth"
	"webgenie/internal/logging"
	"webgenie/internal/preview"
	"webgenie/internal/service"
	"webgenie/internal/site"
	"webgenie/internal/transport/rest/handler"
	"webgenie/internal/transport/rest/middleware"
	"webgenie/internal/transport/ws"
)

// Generator is the site generation dependency of the router.
type Generator interface {
	handler.Generator
	Enabled() bool
}

// Container holds all dependencies for the router
type Container struct {
	Logger         *slog.Logger
	Auth           *auth.Service
	Projects       *service.ProjectService
	Templates      *service.TemplateService
	Generator      Generator
	Sessions       *preview.Manager
	WSHub          *ws.Hub
	Pages          *site.Pages
	UI             fs.FS
	AllowedOrigins string
	// PreviewOrigin serves user documents; empty means the app host.
	PreviewOrigin string
}

// NewRouter creates the application handler with all endpoints and the
// middleware chain around them.
func NewRouter(c *Container) (http.Handler, error) {
	r := mux.NewRouter()

	origin, err := handler.NewDocumentOrigin(c.PreviewOrigin)
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.Auth)
	analyzeHandler := handler.NewAnalyzeHandler(c.Projects)
	generateHandler := handler.NewGenerateHandler(c.Generator)
	projectHandler := handler.NewProjectHandler(c.Projects)
	templateHandler := handler.NewTemplateHandler(c.Templates, c.Projects)
	previewHandler := handler.NewPreviewHandler(c.Sessions, c.Projects, c.WSHub, origin)
	wsHandler := ws.NewHandler(c.WSHub, c.Sessions, c.Auth, nil)
	pageHandler, err := handler.NewPageHandler(c.UI, c.Pages, c.Projects, c.Templates, c.Generator.Enabled(), origin)
	if err != nil {
		return nil, err
	}

	static, err := fs.Sub(c.UI, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.Auth)

	r.HandleFunc("/health", handler.Health).Methods("GET")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// API v1 routes
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// WebSocket route (token in query param for owned sessions)
	v1.HandleFunc("/preview/sessions/{id}/ws", wsHandler.ServeWS).Methods("GET")

	// Anonymous or signed-in routes
	open := v1.NewRoute().Subrouter()
	open.Use(authMW.OptionalUser)

	open.HandleFunc("/analyze", analyzeHandler.Analyze).Methods("POST")
	open.HandleFunc("/generate", generateHandler.Generate).Methods("POST")
	open.HandleFunc("/templates", templateHandler.List).Methods("GET")
	open.HandleFunc("/templates/{id}", templateHandler.Get).Methods("GET")
	open.HandleFunc("/preview/sessions", previewHandler.Create).Methods("POST")
	open.HandleFunc("/preview/sessions/{id}", previewHandler.Get).Methods("GET")
	open.HandleFunc("/preview/sessions/{id}", previewHandler.Close).Methods("DELETE")
	open.HandleFunc("/preview/sessions/{id}/content", previewHandler.SetContent).Methods("PUT")
	open.HandleFunc("/preview/sessions/{id}/device", previewHandler.SetDevice).Methods("PUT")
	open.HandleFunc("/preview/sessions/{id}/refresh", previewHandler.Refresh).Methods("POST")
	open.HandleFunc("/preview/sessions/{id}/surfaces/{surfaceId}/loaded", previewHandler.Loaded).Methods("POST")

	// Project routes (require user)
	projects := v1.NewRoute().Subrouter()
	projects.Use(authMW.RequireUser)

	projects.HandleFunc("/projects", projectHandler.List).Methods("GET")
	projects.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	projects.HandleFunc("/projects/{id}", projectHandler.Get).Methods("GET")
	projects.HandleFunc("/projects/{id}", projectHandler.Update).Methods("PUT")
	projects.HandleFunc("/projects/{id}", projectHandler.Delete).Methods("DELETE")
	projects.HandleFunc("/projects/{id}/analysis", projectHandler.Analysis).Methods("GET")
	projects.HandleFunc("/projects/{id}/download", projectHandler.Download).Methods("GET")
	projects.HandleFunc("/templates/{id}/projects", templateHandler.Use).Methods("POST")

	// Pages
	r.HandleFunc("/", pageHandler.Home).Methods("GET")
	r.HandleFunc("/editor", pageHandler.Editor).Methods("GET")
	r.HandleFunc("/projects", pageHandler.Projects).Methods("GET")
	r.HandleFunc("/login", pageHandler.Login).Methods("GET")
	r.HandleFunc("/signup", pageHandler.Signup).Methods("GET")
	r.HandleFunc("/examples", pageHandler.Examples).Methods("GET")
	r.HandleFunc("/template/{id}", pageHandler.Template).Methods("GET")
	for _, slug := range c.Pages.Slugs() {
		r.HandleFunc("/"+slug, pageHandler.Content(slug)).Methods("GET")
	}
	r.HandleFunc("/p/{id}", pageHandler.Public).Methods("GET")
	r.HandleFunc("/preview/{id}/surfaces/{surfaceId}", previewHandler.Surface).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
			return
		}
		pageHandler.NotFound(w, req)
	})

	var h http.Handler = r
	h = middleware.LimitBody(middleware.MaxBodyBytes)(h)
	h = middleware.CORS(c.AllowedOrigins)(h)
	h = middleware.SecurityHeaders(origin.String())(h)
	h = logging.Middleware(c.Logger)(h)
	return h, nil
}
