package jwtx

import (
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Generator builds claim skeletons and signs them with a single resolved
// algorithm.
type Generator struct {
	Issuer    string
	Algorithm *Algorithm

	// Now defaults to time.Now. Overridden in tests.
	Now func() time.Time
}

func NewGenerator(issuer string, alg *Algorithm) *Generator {
	return &Generator{Issuer: issuer, Algorithm: alg, Now: time.Now}
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now().UTC()
	}
	return g.Now().UTC()
}

// Unsigned returns claims with iss, sub, iat and, for a positive ttl,
// exp = iat + ttl. Callers add type specific claims before signing.
func (g *Generator) Unsigned(subject string, ttl time.Duration) *Claims {
	now := g.now().Truncate(time.Second)

	c := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   g.Issuer,
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return c
}

// Sign serialises c as a compact JWS. The kid header is set when the
// algorithm has one.
func (g *Generator) Sign(c *Claims) (string, error) {
	tok := jwt.NewWithClaims(g.Algorithm.method, c)
	if kid := g.Algorithm.kid; kid != "" {
		tok.Header["kid"] = kid
	}

	signed, err := tok.SignedString(g.Algorithm.signKey)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s: %w", g.Algorithm.name, err)
	}
	return signed, nil
}

// RandomRefreshToken returns an opaque 128 byte token, base64url encoded.
// Used for refresh tokens and authorization codes.
func (g *Generator) RandomRefreshToken() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize1024)
}
