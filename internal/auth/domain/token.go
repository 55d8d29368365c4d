package domain

// Token type vocabulary used as exchange endpoints and provider names.
const (
	TypeBasic             = "basic"
	TypeOTP               = "otp"
	TypeTOTP              = "totp"
	TypePasswordless      = "passwordless"
	TypeAuthorizationCode = "authorizationCode"
	TypeRefresh           = "refresh"
	TypeEncryptedToken    = "encryptedToken"
	TypeAccessToken       = "accessToken"
	TypeIDToken           = "idToken"
	TypeOIDC              = "oidc"
	TypeJWTAPIKey         = "jwtApiKey"
)

// Token is what a provider returns. It is never persisted; only the refresh
// or authorization-code record behind it is.
type Token struct {
	ID              string
	Type            string
	Token           string
	OIDC            *OIDCTokens // set instead of Token for oidc
	RefreshToken    string
	EntityType      EntityType
	EntityID        string
	ValidFor        int64 // seconds, 0 when the token does not expire
	TrackingSession string
}

// OIDCTokens is the composite value of an oidc exchange.
type OIDCTokens struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenRestrictions narrow the permissions embedded in a minted token.
type TokenRestrictions struct {
	Scopes      []string `json:"scopes,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// TokenOptions is request metadata threaded through generation for audit
// and session correlation.
type TokenOptions struct {
	Source            string
	UserAgent         string
	SourceIP          string
	ClientID          string
	ExternalSessionID string
	DeviceID          string
	TrackingSession   string
	ExtraParameters   *PKCEParameters
}

// AuthRequest is the source credential of an exchange plus its context.
type AuthRequest struct {
	Identifier        string
	Password          string
	Token             string
	Domain            string
	Restrictions      *TokenRestrictions
	SourceIP          string
	UserAgent         string
	ClientID          string
	DeviceID          string
	ExternalSessionID string
	UserID            string
	ExtraParameters   *PKCEParameters
}

// Options derives TokenOptions for a request authenticated by source.
func (r *AuthRequest) Options(source string) *TokenOptions {
	return &TokenOptions{
		Source:            source,
		UserAgent:         r.UserAgent,
		SourceIP:          r.SourceIP,
		ClientID:          r.ClientID,
		ExternalSessionID: r.ExternalSessionID,
		DeviceID:          r.DeviceID,
		ExtraParameters:   r.ExtraParameters,
	}
}
