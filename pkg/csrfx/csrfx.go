// Package csrfx issues CSRF tokens that need no server side storage.
//
// A token is a time based one time code XORed with an identifier of the
// request (a session or client id) and base64url encoded. Validation XORs
// the identifier back out and checks the code, so a token is bound to both
// its identifier and a short time window.
package csrfx

import (
	"encoding/base32"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Defaults applied by New.
const (
	DefaultPeriod = 5 * time.Minute
	DefaultDigits = otp.Digits(10)
	DefaultSkew   = 1
)

// ErrEmptyKey is returned by Generate when the CSRF has no key.
var ErrEmptyKey = errors.New("csrfx: empty key")

// Option tunes a CSRF.
type Option func(*CSRF)

func WithPeriod(d time.Duration) Option { return func(c *CSRF) { c.period = d } }

func WithDigits(d otp.Digits) Option { return func(c *CSRF) { c.digits = d } }

// WithSkew sets how many periods either side of now are accepted.
func WithSkew(steps uint) Option { return func(c *CSRF) { c.skew = steps } }

// WithClock overrides time.Now. Used by tests.
func WithClock(now func() time.Time) Option { return func(c *CSRF) { c.now = now } }

// CSRF generates and validates tokens for one key.
type CSRF struct {
	secret string
	period time.Duration
	digits otp.Digits
	skew   uint
	now    func() time.Time
}

// New builds a CSRF keyed by key. The key is used as raw TOTP secret bytes.
func New(key []byte, opts ...Option) *CSRF {
	c := &CSRF{
		secret: base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(key),
		period: DefaultPeriod,
		digits: DefaultDigits,
		skew:   DefaultSkew,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *CSRF) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(c.period / time.Second),
		Skew:      c.skew,
		Digits:    c.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Generate returns a token bound to identifier and the current period.
func (c *CSRF) Generate(identifier string) (string, error) {
	if c.secret == "" {
		return "", ErrEmptyKey
	}

	code, err := totp.GenerateCodeCustom(c.secret, c.now().UTC(), c.validateOpts())
	if err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(xor([]byte(code), []byte(identifier))), nil
}

// IsValid reports whether token was generated for identifier within the
// accepted window. Malformed tokens are simply invalid.
func (c *CSRF) IsValid(token, identifier string) bool {
	if c.secret == "" || token == "" {
		return false
	}

	raw, err := decode(token)
	if err != nil {
		return false
	}

	code := string(xor(raw, []byte(identifier)))
	ok, err := totp.ValidateCustom(code, c.secret, c.now().UTC(), c.validateOpts())
	return err == nil && ok
}

// xor combines the first min(len(a), len(b)) bytes of a with b; the rest of
// a is copied unchanged.
func xor(a, b []byte) []byte {
	out := make([]byte, len(a))
	copy(out, a)
	for i := 0; i < len(out) && i < len(b); i++ {
		out[i] ^= b[i]
	}
	return out
}

func decode(token string) ([]byte, error) {
	if strings.HasSuffix(token, "=") {
		return base64.URLEncoding.DecodeString(token)
	}
	return base64.RawURLEncoding.DecodeString(token)
}

// Period is the length of one code window.
func (c *CSRF) Period() time.Duration { return c.period }
