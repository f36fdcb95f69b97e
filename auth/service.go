// Package auth is the stateless orchestration layer between a UI and the
// backend: sign-in, sign-out, current-user lookup, and observation of the
// resolved auth state. It holds no auth state of its own; the outcome of
// every imperative call is reported to the synchronizer so the imperative
// path and the provider event feed converge on one authoritative state.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/roadmapapp/go-auth-client/authsync"
	"github.com/roadmapapp/go-auth-client/gateway"
	errs "github.com/roadmapapp/go-auth-client/internal/errors"
	"github.com/roadmapapp/go-auth-client/profile"
	"github.com/roadmapapp/go-auth-client/session"
)

// Deps holds all collaborator dependencies for the Service.
type Deps struct {
	Auth     gateway.AuthGateway    // Provider authentication operations
	Profiles gateway.ProfileGateway // Provider profile table operations
	Sync     *authsync.Synchronizer // Authoritative auth state owner
}

// Service exposes the auth use cases consumed by a presentation layer.
type Service struct {
	deps Deps
	log  zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for background fetch failures.
func WithServiceLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes a Service with required dependencies.
func NewService(deps Deps, options ...ServiceOption) (*Service, error) {
	if deps.Auth == nil {
		return nil, errors.New("[NewService] Auth gateway is required")
	}
	if deps.Profiles == nil {
		return nil, errors.New("[NewService] Profiles gateway is required")
	}
	if deps.Sync == nil {
		return nil, errors.New("[NewService] Sync is required")
	}

	service := &Service{
		deps: deps,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// SignIn validates the credentials locally, authenticates against the
// backend, and fetches the profile for the new session. Validation
// failures return invalid credentials without touching the backend; a
// backend rejection maps to the same kind.
func (s *Service) SignIn(ctx context.Context, email, password string) (session.Session, profile.Profile, error) {
	if err := validateCredentials(email, password); err != nil {
		return session.Session{}, profile.Profile{}, err
	}

	sess, err := s.deps.Auth.SignIn(ctx, email, password)
	if err != nil {
		return session.Session{}, profile.Profile{}, errs.Wrapf(errs.ErrInvalidCredentials, "[Service.SignIn] %v", err)
	}
	s.deps.Sync.ReportSignedIn(sess)

	prof, err := s.deps.Profiles.FetchProfile(ctx, sess.UserID)
	if err != nil {
		return session.Session{}, profile.Profile{}, errors.Wrap(err, "[Service.SignIn] fetch profile")
	}
	return sess, prof, nil
}

// SignOut ends the backend session and reports the transition.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.deps.Auth.SignOut(ctx); err != nil {
		if errs.Is(err, errs.ErrNetwork) {
			return errors.Wrap(err, "[Service.SignOut]")
		}
		return errs.Wrapf(errs.ErrUnknown, "[Service.SignOut] %v", err)
	}
	s.deps.Sync.ReportSignedOut()
	return nil
}

// CurrentUser returns the profile for the active session, or nil when no
// session exists. Profile fetch failures propagate unchanged.
func (s *Service) CurrentUser(ctx context.Context) (*profile.Profile, error) {
	sess, err := s.deps.Auth.CurrentSession(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CurrentUser] session lookup")
	}
	if sess == nil {
		return nil, nil
	}

	prof, err := s.deps.Profiles.FetchProfile(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// ObserveAuthState returns a stream of resolved auth states driven 1:1 by
// the synchronizer's transitions. A signed-in state triggers a profile
// fetch; the fetch failure surfaces as a ResolvedError value, it does not
// end the stream. The stream stops and releases its subscription when ctx
// is cancelled.
func (s *Service) ObserveAuthState(ctx context.Context) <-chan Resolved {
	out := make(chan Resolved)
	states, cancel := s.deps.Sync.Subscribe()

	go func() {
		defer close(out)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case st, ok := <-states:
				if !ok {
					return
				}
				select {
				case out <- s.resolve(ctx, st):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (s *Service) resolve(ctx context.Context, st authsync.State) Resolved {
	switch st.Status {
	case authsync.StatusSignedIn:
		prof, err := s.deps.Profiles.FetchProfile(ctx, st.Session.UserID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", st.Session.UserID).Msg("profile fetch failed while resolving auth state")
			return Resolved{Status: ResolvedError, Err: err}
		}
		return Resolved{Status: ResolvedAuthenticated, Profile: &prof}
	case authsync.StatusSignedOut:
		return Resolved{Status: ResolvedUnauthenticated}
	default:
		return Resolved{Status: ResolvedUnknown}
	}
}

// UpdateProfile writes profile changes through the backend and returns
// the stored representation.
func (s *Service) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	updated, err := s.deps.Profiles.UpdateProfile(ctx, p)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "[Service.UpdateProfile]")
	}
	return updated, nil
}

// DeleteAccount removes the active principal's profile row and signs the
// session out.
func (s *Service) DeleteAccount(ctx context.Context) error {
	sess, err := s.deps.Auth.CurrentSession(ctx)
	if err != nil {
		return errors.Wrap(err, "[Service.DeleteAccount] session lookup")
	}
	if sess == nil {
		return errs.Wrapf(errs.ErrUnknown, "[Service.DeleteAccount] no active session")
	}

	if err := s.deps.Profiles.DeleteProfile(ctx, sess.UserID); err != nil {
		return errors.Wrap(err, "[Service.DeleteAccount] delete profile")
	}
	return s.SignOut(ctx)
}
