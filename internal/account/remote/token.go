package remote

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether token is a JWT whose expiration date has
// passed. The signature is not verified, the backend remains the authority:
// this only spares a request bound to fail. Opaque tokens never expire.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}

	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}
