// Package appstate adapts the resolved auth stream into a snapshot a UI
// layer can render: who is signed in, their display fields, and the last
// background failure. Background failures degrade the snapshot and are
// logged; they never stop the adapter.
package appstate

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roadmapapp/go-auth-client/auth"
	"github.com/roadmapapp/go-auth-client/internal/utils"
	"github.com/roadmapapp/go-auth-client/profile"
)

// Snapshot is one consistent view of the auth state for rendering.
type Snapshot struct {
	Determined    bool // false until the first signed-in/out determination
	Authenticated bool
	User          *profile.Profile
	LastError     string
}

// DisplayName returns the best available name for the signed-in user.
func (s Snapshot) DisplayName() string {
	if s.User == nil {
		return ""
	}
	if name := utils.Value(s.User.FullName); name != "" {
		return name
	}
	if name := utils.Value(s.User.Username); name != "" {
		return name
	}
	return s.User.ID
}

// AppState consumes the resolved auth stream and maintains the latest
// snapshot.
type AppState struct {
	svc *auth.Service
	log zerolog.Logger

	mu   sync.RWMutex
	snap Snapshot

	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// Option configures an AppState.
type Option func(*AppState)

// WithLogger sets the logger for background sync failures.
func WithLogger(log zerolog.Logger) Option {
	return func(a *AppState) {
		a.log = log
	}
}

// New creates an AppState over the auth service.
func New(svc *auth.Service, options ...Option) *AppState {
	a := &AppState{
		svc:  svc,
		log:  zerolog.Nop(),
		done: make(chan struct{}),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Start begins consuming the resolved auth stream. Subsequent calls are
// no-ops.
func (a *AppState) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		ctx, a.cancel = context.WithCancel(ctx)
		go a.consume(ctx)
	})
}

// Close stops consuming and waits for the consumer to finish. Safe to
// call multiple times.
func (a *AppState) Close() {
	a.closeOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
			<-a.done
		}
	})
}

// Snapshot returns the latest consistent view.
func (a *AppState) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

func (a *AppState) consume(ctx context.Context) {
	defer close(a.done)

	for resolved := range a.svc.ObserveAuthState(ctx) {
		a.apply(resolved)
	}
}

func (a *AppState) apply(resolved auth.Resolved) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch resolved.Status {
	case auth.ResolvedAuthenticated:
		a.snap = Snapshot{Determined: true, Authenticated: true, User: resolved.Profile}
	case auth.ResolvedUnauthenticated:
		a.snap = Snapshot{Determined: true}
	case auth.ResolvedError:
		a.log.Warn().Err(resolved.Err).Msg("auth state resolution failed")
		a.snap.LastError = resolved.Err.Error()
	case auth.ResolvedUnknown:
		// No determination yet; keep the previous snapshot.
	}
}
