package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the observable preview state of one editing session.
type State struct {
	HTML      string `json:"html"`
	Device    Device `json:"device"`
	Width     string `json:"width"`
	IsLoading bool   `json:"isLoading"`
	SurfaceID string `json:"surfaceId,omitempty"`
}

// Reconciler keeps exactly one rendering surface in its container that
// reflects the current html and device. Every change discards the surface
// and mounts a fresh one.
type Reconciler struct {
	mu sync.Mutex

	logger    *slog.Logger
	container Container
	newID     func() string
	now       func() time.Time

	html    string
	device  Device
	loading bool

	// active is the newest surface. attached is what the container holds;
	// they differ only after a failed swap.
	active   *Surface
	attached *Surface
	closed   bool
}

func NewReconciler(logger *slog.Logger, container Container, html string, device Device) *Reconciler {
	if !device.Valid() {
		device = Desktop
	}
	return &Reconciler{
		logger:    logger,
		container: container,
		newID:     uuid.NewString,
		now:       time.Now,
		html:      html,
		device:    device,
		loading:   true,
	}
}

// Mount attaches the first surface.
func (r *Reconciler) Mount(ctx context.Context) error {
	return r.Remount(ctx)
}

// SetContent replaces the document and remounts.
func (r *Reconciler) SetContent(ctx context.Context, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrSessionClosed
	}
	r.html = html
	r.loading = true
	return r.remountLocked(ctx)
}

// SetDevice changes the viewport and remounts.
func (r *Reconciler) SetDevice(ctx context.Context, device Device) error {
	if !device.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, device)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrSessionClosed
	}
	r.device = device
	r.loading = true
	return r.remountLocked(ctx)
}

// Remount discards the current surface and mounts a new one built from the
// current state.
func (r *Reconciler) Remount(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrSessionClosed
	}
	r.loading = true
	return r.remountLocked(ctx)
}

func (r *Reconciler) remountLocked(ctx context.Context) error {
	if r.closed {
		return ErrSessionClosed
	}

	next := &Surface{
		ID:        r.newID(),
		HTML:      r.html,
		Device:    r.device,
		Width:     r.device.Width(),
		Sandbox:   SandboxPolicy,
		CreatedAt: r.now(),
	}

	logger := r.logger.With(slog.String("surface_id", next.ID), slog.String("device", string(next.Device)))
	if r.attached != nil {
		logger = logger.With(slog.String("replaces", r.attached.ID))
	}

	r.active = next

	if err := r.container.Swap(ctx, r.attached, next); err != nil {
		logger.ErrorContext(ctx, "Failed to mount preview surface", slog.Any("error", err))
		return fmt.Errorf("mounting surface %s: %w", next.ID, err)
	}

	r.attached = next
	logger.DebugContext(ctx, "Mounted preview surface", slog.Int("html_length", len(next.HTML)))
	return nil
}

// Loaded records that a surface finished loading. Only the active surface
// clears the loading flag; signals from replaced surfaces are ignored.
func (r *Reconciler) Loaded(surfaceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.ID != surfaceID || r.attached != r.active {
		r.logger.Debug("Ignoring load signal from inactive surface", slog.String("surface_id", surfaceID))
		return false
	}

	r.loading = false
	return true
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Reconciler) stateLocked() State {
	s := State{
		HTML:      r.html,
		Device:    r.device,
		Width:     r.device.Width(),
		IsLoading: r.loading,
	}
	if r.active != nil {
		s.SurfaceID = r.active.ID
	}
	return s
}

// Active returns the newest surface, or nil before the first mount.
func (r *Reconciler) Active() *Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Observe calls fn with the active surface and state while no remount can
// run, so a new observer registered inside fn misses no swap.
func (r *Reconciler) Observe(fn func(active *Surface, state State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.active, r.stateLocked())
}

// Surface looks up a surface by id. Only the active surface is found.
func (r *Reconciler) Surface(id string) (*Surface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.ID != id {
		return nil, false
	}
	return r.active, true
}

// Close detaches the surface. The reconciler cannot be used afterwards.
func (r *Reconciler) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.active = nil

	if r.attached == nil {
		return nil
	}

	err := r.container.Swap(ctx, r.attached, nil)
	r.attached = nil
	return err
}
