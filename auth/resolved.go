package auth

import "github.com/roadmapapp/go-auth-client/profile"

// ResolvedStatus tags a Resolved value.
type ResolvedStatus int

const (
	// ResolvedUnknown mirrors an auth determination that has not been
	// made yet.
	ResolvedUnknown ResolvedStatus = iota
	ResolvedUnauthenticated
	ResolvedAuthenticated
	// ResolvedError means a session exists but its profile could not be
	// fetched. Err carries the reason.
	ResolvedError
)

func (s ResolvedStatus) String() string {
	switch s {
	case ResolvedAuthenticated:
		return "authenticated"
	case ResolvedUnauthenticated:
		return "unauthenticated"
	case ResolvedError:
		return "error"
	default:
		return "unknown"
	}
}

// Resolved is the auth state enriched with the fetched user profile, the
// form consumed by a presentation layer. Profile is set only for
// ResolvedAuthenticated, Err only for ResolvedError.
type Resolved struct {
	Status  ResolvedStatus
	Profile *profile.Profile
	Err     error
}
