package domain

import "time"

// TokenClaims is the decoded payload of an access token: the user identity,
// the authorization roles resolved at mint time, and the temporal bounds.
// Tokens are stateless; the claims are everything a verifier gets back.
type TokenClaims struct {
	UserID    string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	NotBefore time.Time
}

// HasAnyRole reports whether the claims carry at least one of the allowed
// roles.
func (c *TokenClaims) HasAnyRole(allowed ...string) bool {
	for _, want := range allowed {
		for _, have := range c.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
