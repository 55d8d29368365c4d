package http

import (
	"net/http"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
)

// IntrospectHandler describes the bearer token AuthnMiddleware accepted.
func IntrospectHandler(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.WriteJSON(w, http.StatusOK, authsdk.IntrospectionResponse{Active: false})
		return
	}

	resp := authsdk.IntrospectionResponse{
		Active:        true,
		Sub:           claims.Subject,
		Iss:           claims.Issuer,
		Aud:           claims.Audience,
		Jti:           claims.ID,
		Permissions:   claims.Permissions,
		Roles:         claims.Roles,
		ExternalID:    claims.ExternalID,
		TokenType:     claims.Type,
		EmailVerified: claims.EmailVerified,
		PhoneVerified: claims.PhoneVerified,
		SessionID:     claims.SID,
		Source:        claims.Source,
	}
	if claims.ExpiresAt != nil {
		resp.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		resp.Iat = claims.IssuedAt.Unix()
	}
	if claims.NotBefore != nil {
		resp.Nbf = claims.NotBefore.Unix()
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
