package authsdk

import (
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Code is the error code, e.g. "INVALID_TOKEN" or "rate_limit_exceeded".
	Code string `json:"error"`

	// Message is a human readable description.
	Message string `json:"error_description,omitempty"`

	// EntityType and EntityID name the entity a failure concerns, if any.
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
}

// ============================================================================
// Exchange Types
// ============================================================================

// Restrictions narrow the permissions embedded in a minted token.
type Restrictions struct {
	Scopes      []string `json:"scopes,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// ExchangeRequest is the source credential of an exchange. Which fields are
// read depends on the source type: basic uses Identifier and Password or a
// Basic authorization in Token, every other source uses Token.
type ExchangeRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Password   string `json:"password,omitempty"`
	Token      string `json:"token,omitempty"`
	Domain     string `json:"domain,omitempty"`

	Restrictions *Restrictions `json:"restrictions,omitempty"`

	ClientID          string `json:"clientId,omitempty"`
	DeviceID          string `json:"deviceId,omitempty"`
	ExternalSessionID string `json:"externalSessionId,omitempty"`
	UserID            string `json:"userId,omitempty"`

	// PKCE parameters. The challenge pair is sent when requesting an
	// authorization code, the verifier when redeeming one.
	CodeChallenge       string `json:"codeChallenge,omitempty"`
	CodeChallengeMethod string `json:"codeChallengeMethod,omitempty"`
	CodeVerifier        string `json:"codeVerifier,omitempty"`
}

// OIDCTokens is the token of an oidc exchange.
type OIDCTokens struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// TokenResponse is the result of a successful exchange.
type TokenResponse struct {
	ID           string      `json:"id,omitempty"`
	Type         string      `json:"type"`
	Token        string      `json:"token,omitempty"`
	OIDC         *OIDCTokens `json:"oidc,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	EntityType   string      `json:"entityType,omitempty"`
	EntityID     string      `json:"entityId,omitempty"`

	// ValidFor is the lifetime in seconds, 0 when the token does not expire.
	ValidFor int64 `json:"validFor,omitempty"`
}

// RevokeRequest names the token record to delete.
type RevokeRequest struct {
	Token string `json:"token"`
}

// ============================================================================
// Token Introspection
// ============================================================================

// IntrospectionResponse describes the bearer token of the request.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	Sub           string   `json:"sub,omitempty"`
	Iss           string   `json:"iss,omitempty"`
	Aud           []string `json:"aud,omitempty"`
	Jti           string   `json:"jti,omitempty"`
	Exp           int64    `json:"exp,omitempty"`
	Iat           int64    `json:"iat,omitempty"`
	Nbf           int64    `json:"nbf,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	ExternalID    string   `json:"eid,omitempty"`
	TokenType     string   `json:"type,omitempty"`
	EmailVerified *bool    `json:"emailVerified,omitempty"`
	PhoneVerified *bool    `json:"phoneVerified,omitempty"`
	SessionID     string   `json:"sid,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// ============================================================================
// CSRF
// ============================================================================

// CSRFResponse carries a token to send back in the X-CSRF-Token header.
type CSRFResponse struct {
	Token string `json:"token"`
	// ExpiresIn is the token's validity period in seconds.
	ExpiresIn int `json:"expires_in"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	// Status is "ok" or "degraded"
	Status string `json:"status"`

	Uptime  string `json:"uptime"`
	Version string `json:"version"`

	// Checks is only set by the readiness probe.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database   string `json:"database"`
	TokenStore string `json:"token_store"`
	Signer     string `json:"signer"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse is the public key set used to verify asymmetric tokens.
type JWKSResponse jwtx.JWKS
