package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"webgenie/internal/logging"
	"webgenie/internal/model"
	"webgenie/internal/preview"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2 << 20
	sendBuffer     = 32
)

// TokenValidator resolves a bearer token to its user.
type TokenValidator interface {
	ValidateToken(token string) (*model.UserClaims, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	sessions *preview.Manager
	tokens   TokenValidator
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket handler. checkOrigin may be nil to accept
// same-host origins only.
func NewHandler(hub *Hub, sessions *preview.Manager, tokens TokenValidator, checkOrigin func(*http.Request) bool) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
		tokens:   tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeWS handles GET /api/v1/preview/sessions/{id}/ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	logger := logging.FromContext(ctx)
	id := mux.Vars(r)["id"]

	session, err := h.sessions.Get(id)
	if err != nil {
		http.Error(w, "preview session not found", http.StatusNotFound)
		return
	}

	if session.OwnerID != "" {
		claims, err := h.tokens.ValidateToken(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if claims.UserID != session.OwnerID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	conn := &Connection{
		SessionID: id,
		Send:      make(chan []byte, sendBuffer),
	}

	session.Observe(func(active *preview.Surface, state preview.State) {
		h.hub.Register(conn)
		if active != nil {
			h.hub.Send(conn, MsgMount, MountPayload{Surface: active})
		}
		h.hub.Send(conn, MsgState, state)
	})

	logger.InfoContext(ctx, "Preview browser connected", slog.String("session_id", id))

	go h.writePump(wsConn, conn)
	go h.readPump(ctx, logger, wsConn, conn)
}

func (h *Handler) readPump(ctx context.Context, logger *slog.Logger, wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		logger.InfoContext(ctx, "Preview browser disconnected", slog.String("session_id", conn.SessionID))
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.WarnContext(ctx, "WebSocket error", slog.Any("error", err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(conn, errors.New("malformed message"))
			continue
		}

		if err := h.handleMessage(ctx, conn, msg); err != nil {
			if errors.Is(err, preview.ErrSessionNotFound) || errors.Is(err, preview.ErrSessionClosed) {
				h.reply(conn, err)
				return
			}
			logger.WarnContext(ctx, "Preview message failed",
				slog.String("type", string(msg.Type)),
				slog.Any("error", err),
			)
			h.reply(conn, err)
		}
	}
}

// handleMessage applies one browser message to the session and publishes
// the resulting state.
func (h *Handler) handleMessage(ctx context.Context, conn *Connection, msg Message) error {
	session, err := h.sessions.Get(conn.SessionID)
	if err != nil {
		return err
	}

	switch msg.Type {
	case MsgLoaded:
		var p LoadedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errors.New("malformed loaded payload")
		}
		if !session.Loaded(p.SurfaceID) {
			return nil
		}

	case MsgContent:
		var p ContentPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errors.New("malformed content payload")
		}
		if err := session.SetContent(ctx, p.HTML); err != nil {
			return err
		}

	case MsgDevice:
		var p DevicePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errors.New("malformed device payload")
		}
		device, err := preview.ParseDevice(p.Device)
		if err != nil {
			return err
		}
		if err := session.SetDevice(ctx, device); err != nil {
			return err
		}

	case MsgRefresh:
		if err := session.Remount(ctx); err != nil {
			return err
		}

	default:
		return errors.New("unknown message type " + string(msg.Type))
	}

	h.hub.BroadcastState(conn.SessionID, session.State())
	return nil
}

func (h *Handler) reply(conn *Connection, err error) {
	h.hub.Send(conn, MsgError, ErrorPayload{Error: err.Error()})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
