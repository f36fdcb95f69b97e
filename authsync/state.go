package authsync

import "github.com/roadmapapp/go-auth-client/session"

// Status is the authentication determination for the process.
type Status int

const (
	// StatusUnknown means no determination has been made yet, e.g. before
	// the first session check completes.
	StatusUnknown Status = iota
	StatusSignedOut
	StatusSignedIn
)

func (s Status) String() string {
	switch s {
	case StatusSignedIn:
		return "signedIn"
	case StatusSignedOut:
		return "signedOut"
	default:
		return "unknown"
	}
}

// State is the normalized auth determination published by the
// Synchronizer. Session is set only when Status is StatusSignedIn.
type State struct {
	Status  Status
	Session *session.Session
}

// SignedIn builds a state for an authenticated session.
func SignedIn(sess session.Session) State {
	return State{Status: StatusSignedIn, Session: &sess}
}

// SignedOut builds the signed-out state.
func SignedOut() State {
	return State{Status: StatusSignedOut}
}

// Unknown builds the no-determination state.
func Unknown() State {
	return State{Status: StatusUnknown}
}

// Equal reports whether two states describe the same determination for
// the same credentials.
func (s State) Equal(other State) bool {
	if s.Status != other.Status {
		return false
	}
	if s.Status != StatusSignedIn {
		return true
	}
	return s.Session.Equal(*other.Session)
}
