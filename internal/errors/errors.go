package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the client. Every failure crossing out of the
// gateway boundary is mapped onto one of these; raw transport errors never
// reach callers.
var (
	// ErrInvalidCredentials covers both rejected logins and malformed
	// login input. The backend's auth failures are deliberately not
	// distinguished from bad input at this layer.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound means a profile row is missing for a known session.
	ErrUserNotFound = errors.New("user not found")

	// ErrNetwork covers transport and backend failures.
	ErrNetwork = errors.New("network error")

	// ErrUnknown covers anything that fits no other kind.
	ErrUnknown = errors.New("unknown error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
