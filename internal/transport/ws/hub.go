// Package ws streams preview surfaces to browsers over websockets.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"webgenie/internal/preview"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server to browser
const (
	MsgMount   MessageType = "mount"
	MsgUnmount MessageType = "unmount"
	MsgState   MessageType = "state"
	MsgError   MessageType = "error"
)

// Browser to server
const (
	MsgLoaded  MessageType = "loaded"
	MsgContent MessageType = "content"
	MsgDevice  MessageType = "device"
	MsgRefresh MessageType = "refresh"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MountPayload replaces the surface RemoveID (empty on first mount) with Surface.
type MountPayload struct {
	RemoveID string           `json:"removeId,omitempty"`
	Surface  *preview.Surface `json:"surface"`
}

type UnmountPayload struct {
	RemoveID string `json:"removeId"`
}

type LoadedPayload struct {
	SurfaceID string `json:"surfaceId"`
}

type ContentPayload struct {
	HTML string `json:"html"`
}

type DevicePayload struct {
	Device string `json:"device"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	Send      chan []byte
}

// Hub fans preview messages out to the browsers watching each session.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[*Connection]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[*Connection]struct{}),
		logger: logger.With("component", "ws"),
	}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[conn.SessionID] == nil {
		h.conns[conn.SessionID] = make(map[*Connection]struct{})
	}
	h.conns[conn.SessionID][conn] = struct{}{}
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.conns[conn.SessionID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.conns, conn.SessionID)
	}
}

// Connections returns the number of browsers watching sessionID.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// Broadcast sends msg to every browser of sessionID. A browser whose buffer
// is full is disconnected; it reconnects and receives the active surface.
func (h *Hub) Broadcast(sessionID string, msgType MessageType, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("Failed to encode message", slog.String("type", string(msgType)), slog.Any("error", err))
		return
	}

	var slow []*Connection
	h.mu.RLock()
	for conn := range h.conns[sessionID] {
		select {
		case conn.Send <- data:
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.RUnlock()

	h.evict(slow, msgType)
}

// Send queues msg for one browser. It is a no-op once conn is unregistered.
func (h *Hub) Send(conn *Connection, msgType MessageType, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("Failed to encode message", slog.String("type", string(msgType)), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	_, registered := h.conns[conn.SessionID][conn]
	full := false
	if registered {
		select {
		case conn.Send <- data:
		default:
			full = true
		}
	}
	h.mu.RUnlock()

	if full {
		h.evict([]*Connection{conn}, msgType)
	}
}

func (h *Hub) evict(conns []*Connection, msgType MessageType) {
	for _, conn := range conns {
		h.logger.Warn("Disconnecting slow connection",
			slog.String("session_id", conn.SessionID),
			slog.String("type", string(msgType)),
		)
		h.Unregister(conn)
	}
}

// BroadcastState pushes the session state to its browsers.
func (h *Hub) BroadcastState(sessionID string, state preview.State) {
	h.Broadcast(sessionID, MsgState, state)
}

// Container returns the preview container of sessionID. It matches
// preview.ContainerFactory.
func (h *Hub) Container(sessionID string) preview.Container {
	return &sessionContainer{hub: h, sessionID: sessionID}
}

// sessionContainer attaches surfaces by telling every connected browser to
// replace its frame. With no browser connected the swap trivially succeeds;
// a browser that connects later receives the active surface.
type sessionContainer struct {
	hub       *Hub
	sessionID string
}

func (c *sessionContainer) Swap(_ context.Context, old, next *preview.Surface) error {
	var removeID string
	if old != nil {
		removeID = old.ID
	}

	if next == nil {
		c.hub.Broadcast(c.sessionID, MsgUnmount, UnmountPayload{RemoveID: removeID})
		return nil
	}
	c.hub.Broadcast(c.sessionID, MsgMount, MountPayload{RemoveID: removeID, Surface: next})
	return nil
}

func encode(msgType MessageType, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
