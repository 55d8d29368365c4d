package jwtx

import (
	"github.com/go-jose/go-jose/v4"
)

// JWKS is the public key set served at /.well-known/jwks.json.
type JWKS = jose.JSONWebKeySet

// PublicJWK returns the verification key as a JWK. HMAC and ES256K keys are
// not published: the former is secret and go-jose cannot encode the latter.
func (a *Algorithm) PublicJWK() (jose.JSONWebKey, bool) {
	if a.public == nil {
		return jose.JSONWebKey{}, false
	}

	return jose.JSONWebKey{
		Key:       a.public,
		KeyID:     a.kid,
		Algorithm: a.method.Alg(),
		Use:       "sig",
	}, true
}

// KeySet wraps PublicJWK in a set, empty when nothing can be published.
func (a *Algorithm) KeySet() JWKS {
	set := JWKS{Keys: []jose.JSONWebKey{}}
	if jwk, ok := a.PublicJWK(); ok {
		set.Keys = append(set.Keys, jwk)
	}
	return set
}
