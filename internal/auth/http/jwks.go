package http

import (
	"encoding/json"
	"net/http"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/go-jose/go-jose/v4"
)

// JWKSHandler publishes the public half of the signing key. HMAC keys are
// never published, so the set is empty for them.
func JWKSHandler(signing *jwtx.Algorithm) http.HandlerFunc {
	set := authsdk.JWKSResponse{Keys: []jose.JSONWebKey{}}
	if signing != nil {
		set = authsdk.JWKSResponse(signing.KeySet())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(set)
	}
}
