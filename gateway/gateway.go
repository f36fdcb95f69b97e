// Package gateway defines the boundary to the remote auth/profile backend.
// Implementations map provider payloads and transport failures into the
// domain types and error kinds before they reach any caller.
package gateway

import (
	"context"

	"github.com/roadmapapp/go-auth-client/profile"
	"github.com/roadmapapp/go-auth-client/session"
)

// EventKind identifies a provider auth event. The set is closed here at
// the boundary; unrecognized provider payloads are delivered as
// EventUnrecognized and carry no state meaning.
type EventKind string

const (
	EventInitial        EventKind = "initial"
	EventSignedIn       EventKind = "signedIn"
	EventSignedOut      EventKind = "signedOut"
	EventTokenRefreshed EventKind = "tokenRefreshed"
	EventUserUpdated    EventKind = "userUpdated"
	EventUnrecognized   EventKind = "unrecognized"
)

// Event is one entry of the provider's auth event feed.
type Event struct {
	Kind    EventKind
	Session *session.Session // nil when the event carries no session
}

// AuthGateway exposes the provider's authentication operations.
type AuthGateway interface {
	// SignIn authenticates with email and password. Rejected credentials
	// fail with errors.ErrInvalidCredentials.
	SignIn(ctx context.Context, email, password string) (session.Session, error)

	// SignOut ends the current provider session. Transport failures fail
	// with errors.ErrNetwork.
	SignOut(ctx context.Context) error

	// CurrentSession returns the active session, or (nil, nil) when there
	// is none. Absence is not an error.
	CurrentSession(ctx context.Context) (*session.Session, error)

	// AuthEvents returns the long-lived provider event feed. The channel
	// closes when ctx is cancelled.
	AuthEvents(ctx context.Context) <-chan Event
}

// ProfileGateway exposes the provider's profile table operations.
type ProfileGateway interface {
	// FetchProfile fails with errors.ErrUserNotFound when no row exists
	// for userID.
	FetchProfile(ctx context.Context, userID string) (profile.Profile, error)

	// UpdateProfile writes the row and returns the stored representation.
	UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error)

	// DeleteProfile removes the row for userID.
	DeleteProfile(ctx context.Context, userID string) error
}

// Gateway is the full backend contract consumed by the application.
type Gateway interface {
	AuthGateway
	ProfileGateway
}
