package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// VerifierOption tunes the parser built by NewVerifier.
type VerifierOption func(*verifierConfig)

type verifierConfig struct {
	requireExp bool
	leeway     time.Duration
	now        func() time.Time
}

// WithRequiredExpiry rejects tokens that carry no exp claim.
func WithRequiredExpiry() VerifierOption {
	return func(c *verifierConfig) { c.requireExp = true }
}

// WithLeeway allows clock skew on exp, nbf and iat.
func WithLeeway(d time.Duration) VerifierOption {
	return func(c *verifierConfig) { c.leeway = d }
}

// WithClock overrides the time source used for exp/nbf/iat checks.
func WithClock(now func() time.Time) VerifierOption {
	return func(c *verifierConfig) { c.now = now }
}

// Verifier decodes and verifies tokens against exactly one algorithm. The
// token's own alg header never selects the key: anything other than the
// configured method, including "none", is rejected.
type Verifier struct {
	alg    *Algorithm
	parser *jwt.Parser
}

func NewVerifier(alg *Algorithm, issuer string, opts ...VerifierOption) *Verifier {
	cfg := verifierConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg.method.Alg()}),
		jwt.WithIssuedAt(),
	}
	if issuer != "" {
		popts = append(popts, jwt.WithIssuer(issuer))
	}
	if cfg.requireExp {
		popts = append(popts, jwt.WithExpirationRequired())
	}
	if cfg.leeway > 0 {
		popts = append(popts, jwt.WithLeeway(cfg.leeway))
	}
	if cfg.now != nil {
		popts = append(popts, jwt.WithTimeFunc(cfg.now))
	}

	return &Verifier{alg: alg, parser: jwt.NewParser(popts...)}
}

// Verify checks signature and time claims and returns the claims.
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != v.alg.method.Alg() {
			return nil, ErrAlgMismatch
		}
		return v.alg.verifyKey, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %v", ErrNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrIssuer, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
