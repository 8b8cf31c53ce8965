// Package shell holds the per-visitor state of the page shell: the mobile
// menu and profile panel visibility, and the current user loaded once when
// the shell is mounted.
package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/pkg/log"
	"github.com/pkg/errors"
)

// LoadFunc fetches the current user. A nil user without error means
// the visitor is unknown.
type LoadFunc func(ctx context.Context) (*account.User, error)

type Shell struct {
	id       string
	identity string
	load     LoadFunc

	mutex     sync.RWMutex
	state     State
	mounted   bool
	unmounted bool
	cancel    context.CancelFunc
	lastSeen  time.Time

	loaded chan struct{}
}

func New(id string, identity string, load LoadFunc) *Shell {
	return &Shell{
		id:       id,
		identity: identity,
		load:     load,
		loaded:   make(chan struct{}),
		lastSeen: time.Now(),
	}
}

func (s *Shell) ID() string {
	return s.id
}

// Identity is the authenticated identity the shell was created for, empty
// for anonymous visitors.
func (s *Shell) Identity() string {
	return s.identity
}

// Mount starts the user fetch. Only the first call has an effect and a
// shell cannot be mounted again once unmounted.
func (s *Shell) Mount(ctx context.Context) {
	s.mutex.Lock()
	if s.mounted || s.unmounted {
		s.mutex.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mounted = true
	s.cancel = cancel
	s.mutex.Unlock()

	go s.fetch(ctx)
}

func (s *Shell) fetch(ctx context.Context) {
	defer close(s.loaded)

	user, err := s.load(ctx)
	result := NewFetchResult(user, err)

	switch {
	case result.Outcome != OutcomeFailed:
		slog.DebugContext(ctx, "current user fetched", slog.String("shell", s.id), slog.String("outcome", result.Outcome.String()))
	case errors.Is(err, context.Canceled):
		slog.DebugContext(ctx, "current user fetch canceled", slog.String("shell", s.id))
	default:
		slog.ErrorContext(ctx, "could not fetch current user", slog.String("shell", s.id), log.Error(errors.WithStack(err)))
	}

	s.Dispatch(UserLoaded{Result: result})
}

// Unmount cancels a pending fetch. Events dispatched afterwards are dropped.
func (s *Shell) Unmount() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.unmounted {
		return
	}

	s.unmounted = true

	if s.cancel != nil {
		s.cancel()
	}

	if !s.mounted {
		close(s.loaded)
	}
}

// Dispatch applies events in order and reports whether they were applied.
func (s *Shell) Dispatch(events ...Event) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.unmounted {
		return false
	}

	for _, e := range events {
		e.apply(&s.state)
	}

	s.lastSeen = time.Now()

	return true
}

func (s *Shell) Snapshot() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.state.clone()
}

// Loaded is closed once the fetch started by Mount resolved, or when the
// shell is unmounted before being mounted.
func (s *Shell) Loaded() <-chan struct{} {
	return s.loaded
}

// Wait blocks until the fetch resolved, ctx is done or timeout elapsed,
// and reports whether the fetch resolved.
func (s *Shell) Wait(ctx context.Context, timeout time.Duration) bool {
	select {
	case <-s.loaded:
		return true
	default:
	}

	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.loaded:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Shell) touch() {
	s.mutex.Lock()
	s.lastSeen = time.Now()
	s.mutex.Unlock()
}

func (s *Shell) idleSince() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.lastSeen
}
