/*
Package auth holds the bearer session token the daemon authenticates with.

The token is minted by the platform backend; the client never signs or
verifies it. The claims are decoded without verification purely to learn the
expiry time, so imminent expiry can be logged before commands start failing.
*/
package auth

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// ExpiryWarnWindow is how close to expiry a token must be before
// NearingExpiry starts reporting true.
const ExpiryWarnWindow = 2 * time.Minute

// SessionToken wraps the raw bearer token together with its decoded expiry.
type SessionToken struct {
	raw    string
	expiry time.Time
}

// NewSessionToken wraps the raw token string, decoding the exp claim if the
// token is a well-formed JWT. Opaque tokens are accepted with a zero expiry.
func NewSessionToken(raw string) *SessionToken {
	token := &SessionToken{raw: raw}

	if raw == "" {
		return token
	}

	claims := jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, &claims); err == nil && claims.ExpiresAt > 0 {
		token.expiry = time.Unix(claims.ExpiresAt, 0)
	}

	return token
}

// Raw returns the bearer token string for the Authorization header.
func (t *SessionToken) Raw() string {
	return t.raw
}

// Expiry returns the decoded expiry time, or the zero time when unknown.
func (t *SessionToken) Expiry() time.Time {
	return t.expiry
}

// NearingExpiry reports whether the token expires within ExpiryWarnWindow.
// Tokens with unknown expiry never report true.
func (t *SessionToken) NearingExpiry() bool {
	if t.expiry.IsZero() {
		return false
	}
	return time.Now().After(t.expiry.Add(-ExpiryWarnWindow))
}

// Expired reports whether the token's expiry has passed.
func (t *SessionToken) Expired() bool {
	if t.expiry.IsZero() {
		return false
	}
	return time.Now().After(t.expiry)
}
