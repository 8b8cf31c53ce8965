package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/breathe/internal/syncx"
	"github.com/rs/xid"
)

// Registry keeps one shell per visitor session.
type Registry struct {
	shells      syncx.Map[string, *Shell]
	idleTimeout time.Duration

	mutex   sync.RWMutex
	onClose []func(id string)
}

func NewRegistry(idleTimeout time.Duration) *Registry {
	return &Registry{
		idleTimeout: idleTimeout,
	}
}

func NewID() string {
	return xid.New().String()
}

func (r *Registry) Get(id string) (*Shell, bool) {
	shell, exists := r.shells.Load(id)
	if !exists {
		return nil, false
	}

	shell.touch()

	return shell, true
}

// Open returns the shell registered under id, creating and mounting it when
// needed. A registered shell created for another identity is replaced.
// The fetch runs with a context detached from ctx cancellation, so that it
// outlives the request which triggered it.
func (r *Registry) Open(ctx context.Context, id string, identity string, load LoadFunc) *Shell {
	if existing, exists := r.shells.Load(id); exists {
		if existing.Identity() == identity {
			existing.touch()
			return existing
		}

		r.Close(id)
	}

	shell, loaded := r.shells.LoadOrStore(id, New(id, identity, load))
	if !loaded {
		slog.DebugContext(ctx, "shell mounted", slog.String("shell", id))
	}

	shell.Mount(context.WithoutCancel(ctx))

	return shell
}

func (r *Registry) Close(id string) {
	shell, exists := r.shells.LoadAndDelete(id)
	if !exists {
		return
	}

	shell.Unmount()

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, fn := range r.onClose {
		fn(id)
	}
}

// OnClose registers fn to be called with the id of every closed shell.
func (r *Registry) OnClose(fn func(id string)) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.onClose = append(r.onClose, fn)
}

func (r *Registry) Len() int {
	count := 0
	r.shells.Range(func(_ string, _ *Shell) bool {
		count++
		return true
	})

	return count
}

// Sweep unmounts the shells idle since before now minus the idle timeout
// and returns their count.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTimeout <= 0 {
		return 0
	}

	deadline := now.Add(-r.idleTimeout)
	evicted := 0

	r.shells.Range(func(id string, shell *Shell) bool {
		if shell.idleSince().Before(deadline) {
			r.Close(id)
			evicted++
		}

		return true
	})

	return evicted
}

// Run sweeps idle shells periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(r.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := r.Sweep(now); evicted > 0 {
				slog.DebugContext(ctx, "idle shells evicted", slog.Int("count", evicted))
			}
		}
	}
}
