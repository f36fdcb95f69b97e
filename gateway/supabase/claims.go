package supabase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// tokenClaims is the subset of GoTrue access-token claims the client
// reads. The token is minted and already validated by the backend; it is
// parsed here without signature verification only to recover the subject
// and expiry.
type tokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

func parseTokenClaims(accessToken string) (tokenClaims, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return tokenClaims{}, errors.Wrap(err, "[parseTokenClaims]")
	}

	parsed := tokenClaims{UserID: claims.Subject}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}
	return parsed, nil
}
