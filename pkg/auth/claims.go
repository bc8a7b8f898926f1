package auth

import "github.com/golang-jwt/jwt/v5"

// SessionTokenClaims is the signed token handed to storefront clients.
// The registered jti claim carries the session id that keys durable session state.
type SessionTokenClaims struct {
	jwt.RegisteredClaims
}

// SessionID returns the session identifier embedded in the token.
func (c *SessionTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
