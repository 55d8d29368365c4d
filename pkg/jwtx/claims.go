package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Fallback lifetimes used when a strategy leaves them unset.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TypeAPIKey marks application API keys in the "type" claim.
const TypeAPIKey = "API"

// Claims is the claim set of every token minted by AuthGuard. Only the
// registered claims are always present.
type Claims struct {
	jwt.RegisteredClaims

	// Permissions in "group:name" form, optionally narrowed by restrictions.
	Permissions []string `json:"permissions,omitempty"`
	Roles       []string `json:"roles,omitempty"`

	// ExternalID is the account id in an upstream system.
	ExternalID string `json:"eid,omitempty"`
	Type       string `json:"type,omitempty"`

	EmailVerified *bool `json:"emailVerified,omitempty"`
	PhoneVerified *bool `json:"phoneVerified,omitempty"`

	// Tracking session and the credential type that produced the token.
	SID    string `json:"sid,omitempty"`
	Source string `json:"source,omitempty"`
}

// ValidateIssuer checks the issuer. An empty expectation always passes.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// HasPermission reports whether p is in the permissions claim.
func (c *Claims) HasPermission(p string) bool {
	for _, have := range c.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
