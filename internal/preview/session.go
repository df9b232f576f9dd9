package preview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("preview session not found")
	ErrSessionClosed   = errors.New("preview session closed")
)

const defaultIdleTimeout = 30 * time.Minute

// ContainerFactory builds the container surfaces of one session mount into.
type ContainerFactory func(sessionID string) Container

// Session is one editing session and its reconciler.
type Session struct {
	ID        string
	OwnerID   string
	ProjectID string
	CreatedAt time.Time

	*Reconciler

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionOptions describe a new session.
type SessionOptions struct {
	OwnerID   string
	ProjectID string
	HTML      string
	Device    Device
}

// Manager owns the live editing sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	logger      *slog.Logger
	containers  ContainerFactory
	idleTimeout time.Duration
	now         func() time.Time
}

func NewManager(logger *slog.Logger, containers ContainerFactory, idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	if containers == nil {
		containers = func(string) Container { return NewMemoryContainer() }
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		logger:      logger,
		containers:  containers,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create starts a session and mounts its first surface. A mount failure is
// logged and returned together with the session, which stays usable.
func (m *Manager) Create(ctx context.Context, opts SessionOptions) (*Session, error) {
	id := uuid.NewString()
	logger := m.logger.With(slog.String("session_id", id))

	device := opts.Device
	if !device.Valid() {
		device = Desktop
	}

	now := m.now()
	s := &Session{
		ID:         id,
		OwnerID:    opts.OwnerID,
		ProjectID:  opts.ProjectID,
		CreatedAt:  now,
		Reconciler: NewReconciler(logger, m.containers(id), opts.HTML, device),
		lastSeen:   now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	logger.InfoContext(ctx, "Preview session created",
		slog.String("device", string(device)),
		slog.String("project_id", opts.ProjectID),
	)

	return s, s.Mount(ctx)
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Close ends a session and detaches its surface.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	m.logger.InfoContext(ctx, "Preview session closed", slog.String("session_id", id))
	return s.Reconciler.Close(ctx)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle closes every session not used within the idle timeout and
// reports how many were closed.
func (m *Manager) EvictIdle(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTimeout)

	var stale []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		if err := m.Close(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.logger.WarnContext(ctx, "Failed to close idle session", slog.String("session_id", id), slog.Any("error", err))
		}
	}

	if len(stale) > 0 {
		m.logger.InfoContext(ctx, "Evicted idle preview sessions", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// Run evicts idle sessions periodically until ctx is done, then closes all
// remaining sessions.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			m.EvictIdle(ctx)
		}
	}
}

func (m *Manager) closeAll(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		_ = s.Reconciler.Close(ctx)
	}
}
