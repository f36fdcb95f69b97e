package session

import "time"

// Session is the credential bundle proving an authenticated principal's
// identity to the backend. A Session only exists with a non-empty access
// token; UserID is stable across token refreshes for the same principal.
type Session struct {
	UserID       string    // Opaque identity of the authenticated principal
	AccessToken  string    // Bearer token for backend calls, never empty
	RefreshToken string    // Optional, used to renew the access token
	ExpiresAt    time.Time // Zero when the provider reported no expiry
}

// Expired reports whether the session's access token has passed its expiry.
// Sessions without a reported expiry never expire locally.
func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.ExpiresAt)
}

// Equal reports whether two sessions represent the same credentials.
// Used to suppress redundant state transitions downstream.
func (s Session) Equal(other Session) bool {
	return s.UserID == other.UserID && s.AccessToken == other.AccessToken
}
