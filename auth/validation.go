package auth

import (
	"strings"

	errs "github.com/roadmapapp/go-auth-client/internal/errors"
)

const minPasswordLength = 6

// validateCredentials checks login input before any backend call is made.
// Failures are reported as invalid credentials, the same kind the backend
// rejection maps to.
func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errs.Wrapf(errs.ErrInvalidCredentials, "[validateCredentials] malformed email")
	}
	if password == "" || len(password) < minPasswordLength {
		return errs.Wrapf(errs.ErrInvalidCredentials, "[validateCredentials] password shorter than %d characters", minPasswordLength)
	}
	return nil
}
