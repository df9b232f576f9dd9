package preview

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SandboxPolicy lets the previewed page run scripts, reach its own origin,
// open dialogs and submit forms. It cannot navigate the host page.
const SandboxPolicy = "allow-scripts allow-same-origin allow-modals allow-forms"

// DocumentSandbox is the sandbox a surface document is served under. It lacks
// allow-same-origin, so the document runs in an opaque origin whether it is
// framed or opened directly, and cannot read the host application's storage.
const DocumentSandbox = "allow-scripts allow-modals allow-forms"

// Surface is one isolated rendering of the document. A surface is never
// updated in place; every change produces a new one.
type Surface struct {
	ID        string    `json:"id"`
	HTML      string    `json:"html"`
	Device    Device    `json:"device"`
	Width     string    `json:"width"`
	Sandbox   string    `json:"sandbox"`
	CreatedAt time.Time `json:"createdAt"`
}

// Container is where surfaces are attached. Swap must detach old (nil on the
// first mount) and attach next as one step, so observers never see both.
type Container interface {
	Swap(ctx context.Context, old, next *Surface) error
}

var ErrSurfaceNotAttached = errors.New("surface is not attached")

// MemoryContainer keeps attached surfaces in process and records every swap.
// Managers built without a container factory use it.
type MemoryContainer struct {
	mu       sync.Mutex
	attached []*Surface
	swaps    int
	fail     error
}

func NewMemoryContainer() *MemoryContainer {
	return &MemoryContainer{}
}

func (c *MemoryContainer) Swap(_ context.Context, old, next *Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail != nil {
		return c.fail
	}

	if old != nil {
		idx := -1
		for i, s := range c.attached {
			if s.ID == old.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrSurfaceNotAttached
		}
		c.attached = append(c.attached[:idx], c.attached[idx+1:]...)
	}

	if next != nil {
		c.attached = append(c.attached, next)
	}
	c.swaps++
	return nil
}

// Attached returns a copy of the currently attached surfaces.
func (c *MemoryContainer) Attached() []*Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Surface, len(c.attached))
	copy(out, c.attached)
	return out
}

func (c *MemoryContainer) Swaps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.swaps
}

// FailWith makes every following Swap return err. A nil err restores normal
// behavior.
func (c *MemoryContainer) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}
