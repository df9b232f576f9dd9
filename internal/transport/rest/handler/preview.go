package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"webgenie/internal/logging"
	"webgenie/internal/preview"
	"webgenie/internal/service"
	"webgenie/internal/transport/rest/middleware"
)

// StatePublisher pushes session state to connected browsers.
type StatePublisher interface {
	BroadcastState(sessionID string, state preview.State)
}

type createSessionRequest struct {
	HTML      *string `json:"html"`
	Device    string  `json:"device"`
	ProjectID string  `json:"projectId"`
}

type contentRequest struct {
	HTML string `json:"html"`
}

type deviceRequest struct {
	Device string `json:"device"`
}

type sessionResponse struct {
	ID         string        `json:"id"`
	ProjectID  string        `json:"projectId,omitempty"`
	State      preview.State `json:"state"`
	SurfaceURL string        `json:"surfaceUrl,omitempty"`
	SocketURL  string        `json:"socketUrl"`
}

type loadedResponse struct {
	Accepted bool          `json:"accepted"`
	State    preview.State `json:"state"`
}

// PreviewHandler exposes the preview sessions over HTTP.
type PreviewHandler struct {
	sessions  *preview.Manager
	projects  *service.ProjectService
	publisher StatePublisher
	origin    DocumentOrigin
}

func NewPreviewHandler(sessions *preview.Manager, projects *service.ProjectService, publisher StatePublisher, origin DocumentOrigin) *PreviewHandler {
	return &PreviewHandler{sessions: sessions, projects: projects, publisher: publisher, origin: origin}
}

// Create handles POST /api/v1/preview/sessions
func (h *PreviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	device, err := preview.ParseDevice(req.Device)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var html string
	if req.ProjectID != "" {
		p, err := h.projects.Get(ctx, userID, req.ProjectID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		html = service.Document(p)
	}
	if req.HTML != nil {
		html = *req.HTML
	}

	session, err := h.sessions.Create(ctx, preview.SessionOptions{
		OwnerID:   userID,
		ProjectID: req.ProjectID,
		HTML:      html,
		Device:    device,
	})
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Initial preview mount failed",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
	}

	writeJSON(w, http.StatusCreated, h.response(session))
}

// Get handles GET /api/v1/preview/sessions/{id}
func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.response(session))
}

// Close handles DELETE /api/v1/preview/sessions/{id}
func (h *PreviewHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Close(r.Context(), session.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetContent handles PUT /api/v1/preview/sessions/{id}/content
func (h *PreviewHandler) SetContent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.apply(w, r, session, session.SetContent(r.Context(), req.HTML))
}

// SetDevice handles PUT /api/v1/preview/sessions/{id}/device
func (h *PreviewHandler) SetDevice(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req deviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	device, err := preview.ParseDevice(req.Device)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.apply(w, r, session, session.SetDevice(r.Context(), device))
}

// Refresh handles POST /api/v1/preview/sessions/{id}/refresh
func (h *PreviewHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.apply(w, r, session, session.Remount(r.Context()))
}

// Loaded handles POST /api/v1/preview/sessions/{id}/surfaces/{surfaceId}/loaded
func (h *PreviewHandler) Loaded(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	accepted := session.Loaded(mux.Vars(r)["surfaceId"])
	state := session.State()
	if accepted {
		h.publisher.BroadcastState(session.ID, state)
	}
	writeJSON(w, http.StatusOK, loadedResponse{Accepted: accepted, State: state})
}

// Surface handles GET /preview/{id}/surfaces/{surfaceId}: the sandboxed
// document of the active surface. Replaced surfaces are gone for good.
// The unguessable surface id is the capability; frames cannot send tokens.
func (h *PreviewHandler) Surface(w http.ResponseWriter, r *http.Request) {
	if h.origin.redirect(w, r) {
		return
	}
	vars := mux.Vars(r)
	session, err := h.sessions.Get(vars["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	surface, ok := session.Surface(vars["surfaceId"])
	if !ok {
		http.Error(w, "preview surface is no longer active", http.StatusGone)
		return
	}

	writeDocument(w, surface.HTML)
}

// apply answers a state-changing request: the state on success, the mapped
// error otherwise. Browsers are notified either way.
func (h *PreviewHandler) apply(w http.ResponseWriter, r *http.Request, session *preview.Session, err error) {
	state := session.State()
	h.publisher.BroadcastState(session.ID, state)

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.response(session))
}

// session resolves {id} and checks that the caller may use it.
func (h *PreviewHandler) session(w http.ResponseWriter, r *http.Request) (*preview.Session, bool) {
	session, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if session.OwnerID != "" && session.OwnerID != middleware.GetUserID(r.Context()) {
		writeServiceError(w, r, service.ErrForbidden)
		return nil, false
	}
	return session, true
}

func (h *PreviewHandler) response(s *preview.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		State:     s.State(),
		SocketURL: "/api/v1/preview/sessions/" + s.ID + "/ws",
	}
	if resp.State.SurfaceID != "" {
		resp.SurfaceURL = h.origin.URL(SurfacePath(s.ID, resp.State.SurfaceID))
	}
	return resp
}
