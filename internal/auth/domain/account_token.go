package domain

import "time"

// Purpose tags what an AccountToken record stands for.
type Purpose string

const (
	PurposeRefreshToken      Purpose = "REFRESH_TOKEN"
	PurposeAuthorizationCode Purpose = "AUTHORIZATION_CODE"
	PurposeJTI               Purpose = "JTI"
	PurposePasswordless      Purpose = "PASSWORDLESS"
	PurposeTOTPLinker        Purpose = "TOTP_LINKER"
	PurposeEmailVerification Purpose = "EMAIL_VERIFICATION"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeRefreshToken, PurposeAuthorizationCode, PurposeJTI,
		PurposePasswordless, PurposeTOTPLinker, PurposeEmailVerification:
		return true
	}
	return false
}

// SessionInfo is the request context captured when a refresh token or an
// authorization code is issued.
type SessionInfo struct {
	SourceIP          string `json:"sourceIp,omitempty"`
	UserAgent         string `json:"userAgent,omitempty"`
	ClientID          string `json:"clientId,omitempty"`
	DeviceID          string `json:"deviceId,omitempty"`
	ExternalSessionID string `json:"externalSessionId,omitempty"`
	TrackingSession   string `json:"trackingSession,omitempty"`
	SourceAuthType    string `json:"sourceAuthType,omitempty"`
}

// SessionFromOptions captures the session fields of opts. A nil opts gives
// an empty session.
func SessionFromOptions(opts *TokenOptions) SessionInfo {
	if opts == nil {
		return SessionInfo{}
	}
	return SessionInfo{
		SourceIP:          opts.SourceIP,
		UserAgent:         opts.UserAgent,
		ClientID:          opts.ClientID,
		DeviceID:          opts.DeviceID,
		ExternalSessionID: opts.ExternalSessionID,
		TrackingSession:   opts.TrackingSession,
		SourceAuthType:    opts.Source,
	}
}

// Options rebuilds TokenOptions from a stored session.
func (s SessionInfo) Options() *TokenOptions {
	return &TokenOptions{
		Source:            s.SourceAuthType,
		UserAgent:         s.UserAgent,
		SourceIP:          s.SourceIP,
		ClientID:          s.ClientID,
		ExternalSessionID: s.ExternalSessionID,
		DeviceID:          s.DeviceID,
		TrackingSession:   s.TrackingSession,
	}
}

// AccountToken is a persisted, single-purpose token record. Only the payload
// matching Purpose is meaningful: Session for refresh tokens and
// authorization codes, PKCE for authorization codes and Email for email
// verification.
type AccountToken struct {
	ID           string
	Token        string
	AccountID    string
	Purpose      Purpose
	Restrictions *TokenRestrictions
	Session      SessionInfo
	PKCE         *PKCEChallenge
	Email        string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the record is past its expiry at now. A zero
// ExpiresAt never expires.
func (t *AccountToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Validate checks that the record only carries the payload its purpose allows.
func (t *AccountToken) Validate() error {
	if !t.Purpose.Valid() {
		return NewError(CodeInvalidToken, "unknown token purpose "+string(t.Purpose))
	}
	if t.Token == "" {
		return NewError(CodeInvalidToken, "token record has no token value")
	}
	if t.PKCE != nil && t.Purpose != PurposeAuthorizationCode {
		return NewError(CodeInvalidToken, "PKCE challenge on a non authorization code record")
	}
	if t.Email != "" && t.Purpose != PurposeEmailVerification {
		return NewError(CodeInvalidToken, "email on a non verification record")
	}
	if t.PKCE != nil {
		if _, err := NewPKCEChallenge(t.PKCE.Challenge, t.PKCE.Method); err != nil {
			return err
		}
	}
	return nil
}
