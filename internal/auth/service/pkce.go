package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

// VerifyPKCE checks the code verifier of req against the challenge stored
// with an authorization code. Absent on both sides passes; present on only
// one side fails.
func VerifyPKCE(record *domain.AccountToken, req *domain.AuthRequest) error {
	var challenge *domain.PKCEChallenge
	if record != nil {
		challenge = record.PKCE
	}
	var verifier string
	if req != nil {
		verifier = strings.TrimSpace(req.ExtraParameters.Verifier())
	}

	switch {
	case challenge == nil && verifier == "":
		return nil
	case challenge == nil || verifier == "":
		return pkceFailure()
	}

	if !matchChallenge(challenge, verifier) {
		return pkceFailure()
	}
	return nil
}

func matchChallenge(c *domain.PKCEChallenge, verifier string) bool {
	switch c.Method {
	case domain.PKCEMethodPlain:
		return constantEqual(c.Challenge, verifier)
	case domain.PKCEMethodS256:
		sum := sha256.Sum256([]byte(verifier))
		// RFC 7636 base64url first, then lowercase hex from older clients.
		// Both are always computed so timing does not reveal which matched.
		b64 := constantEqual(c.Challenge, base64.RawURLEncoding.EncodeToString(sum[:]))
		hx := constantEqual(c.Challenge, hex.EncodeToString(sum[:]))
		return b64 || hx
	default:
		return false
	}
}

func constantEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func pkceFailure() error {
	return domain.NewError(domain.CodeGenericAuthFailure, "PKCE verification failed")
}
