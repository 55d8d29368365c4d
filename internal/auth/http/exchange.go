package http

import (
	"net/http"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/exchange"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
)

// ClientIDHeader identifies the calling client. It is the fallback for the
// request's clientId and the identifier CSRF tokens are bound to.
const ClientIDHeader = authsdk.ClientIDHeader

const maxBodyBytes = 64 << 10

// ExchangeHandler serves POST /v1/exchange?from=&to=.
type ExchangeHandler struct {
	Registry *exchange.Registry
}

func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		authsdk.NewAPIError(http.StatusBadRequest, "invalid_request", "from and to are required").WriteError(w)
		return
	}

	var body authsdk.ExchangeRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &body); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	tok, err := h.Registry.Exchange(r.Context(), authRequest(r, &body), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(tok))
}

// authRequest merges the body with what the transport knows about the caller.
func authRequest(r *http.Request, body *authsdk.ExchangeRequest) *domain.AuthRequest {
	req := &domain.AuthRequest{
		Identifier:        body.Identifier,
		Password:          body.Password,
		Token:             body.Token,
		Domain:            body.Domain,
		SourceIP:          httpx.IPKeyExtractor(r),
		UserAgent:         r.UserAgent(),
		ClientID:          body.ClientID,
		DeviceID:          body.DeviceID,
		ExternalSessionID: body.ExternalSessionID,
		UserID:            body.UserID,
	}
	if req.ClientID == "" {
		req.ClientID = strings.TrimSpace(r.Header.Get(ClientIDHeader))
	}

	if body.Restrictions != nil {
		req.Restrictions = &domain.TokenRestrictions{
			Scopes:      body.Restrictions.Scopes,
			Permissions: body.Restrictions.Permissions,
		}
	}

	switch {
	case body.CodeVerifier != "":
		req.ExtraParameters = &domain.PKCEParameters{
			Token: &domain.PKCETokenRequest{CodeVerifier: body.CodeVerifier},
		}
	case body.CodeChallenge != "" || body.CodeChallengeMethod != "":
		req.ExtraParameters = &domain.PKCEParameters{
			AuthCode: &domain.PKCEAuthCodeRequest{
				CodeChallenge:       body.CodeChallenge,
				CodeChallengeMethod: body.CodeChallengeMethod,
			},
		}
	}
	return req
}

func tokenResponse(tok *domain.Token) authsdk.TokenResponse {
	resp := authsdk.TokenResponse{
		ID:           tok.ID,
		Type:         tok.Type,
		Token:        tok.Token,
		RefreshToken: tok.RefreshToken,
		EntityType:   string(tok.EntityType),
		EntityID:     tok.EntityID,
		ValidFor:     tok.ValidFor,
	}
	if tok.OIDC != nil {
		resp.OIDC = &authsdk.OIDCTokens{
			AccessToken:  tok.OIDC.AccessToken,
			IDToken:      tok.OIDC.IDToken,
			RefreshToken: tok.OIDC.RefreshToken,
		}
	}
	return resp
}
