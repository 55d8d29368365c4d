package domain

// PKCE challenge methods.
const (
	PKCEMethodS256  = "S256"
	PKCEMethodPlain = "plain"
)

// PKCEChallenge is the challenge stored with an authorization code.
type PKCEChallenge struct {
	Challenge string `json:"challenge"`
	Method    string `json:"method"`
}

// NewPKCEChallenge returns nil when neither field is set and an error when
// only one is, or the method is unknown.
func NewPKCEChallenge(challenge, method string) (*PKCEChallenge, error) {
	switch {
	case challenge == "" && method == "":
		return nil, nil
	case challenge == "" || method == "":
		return nil, NewError(CodeGenericAuthFailure, "PKCE challenge and method must be set together")
	case method != PKCEMethodS256 && method != PKCEMethodPlain:
		return nil, NewError(CodeGenericAuthFailure, "unsupported PKCE method "+method)
	}
	return &PKCEChallenge{Challenge: challenge, Method: method}, nil
}

// PKCEParameters carries request-side PKCE data. Exactly one of the two
// variants is set.
type PKCEParameters struct {
	AuthCode *PKCEAuthCodeRequest
	Token    *PKCETokenRequest
}

// PKCEAuthCodeRequest accompanies a request for an authorization code.
type PKCEAuthCodeRequest struct {
	CodeChallenge       string
	CodeChallengeMethod string
}

// PKCETokenRequest accompanies the exchange of an authorization code.
type PKCETokenRequest struct {
	CodeVerifier string
}

// AuthCodeParams returns p's challenge request, or nil.
func (p *PKCEParameters) AuthCodeParams() *PKCEAuthCodeRequest {
	if p == nil {
		return nil
	}
	return p.AuthCode
}

// Verifier returns p's code verifier, or "".
func (p *PKCEParameters) Verifier() string {
	if p == nil || p.Token == nil {
		return ""
	}
	return p.Token.CodeVerifier
}
