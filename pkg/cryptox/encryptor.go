package cryptox

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
)

var (
	// ErrEncryptionNotSupported is returned by a disabled TokenEncryptor.
	ErrEncryptionNotSupported = errors.New("cryptox: token encryption is not enabled")
	// ErrUnsupportedEncryption reports an unknown encryption algorithm name.
	ErrUnsupportedEncryption = errors.New("cryptox: unsupported encryption algorithm")
)

// EncryptionConfig selects the asymmetric scheme used to wrap tokens. An
// empty Algorithm disables encryption.
type EncryptionConfig struct {
	Algorithm  string // "RSA" or "EC"
	PublicKey  []byte
	PrivateKey []byte
}

// TokenEncryptor wraps signed tokens in a compact JWE and base64 encodes the
// result so holders only ever see opaque text. RSA keys use RSA-OAEP-256 and
// EC keys use ECDH-ES+A256KW, both with A256GCM content encryption.
//
// Keys are fixed at construction. Build a new encryptor to rotate them.
type TokenEncryptor struct {
	enabled   bool
	keyAlg    jose.KeyAlgorithm
	encrypter jose.Encrypter
	private   any
}

// NewTokenEncryptor validates cfg and loads its keys. A zero cfg yields a
// disabled encryptor.
func NewTokenEncryptor(cfg EncryptionConfig) (*TokenEncryptor, error) {
	if strings.TrimSpace(cfg.Algorithm) == "" {
		return &TokenEncryptor{}, nil
	}

	var (
		keyAlg jose.KeyAlgorithm
		pub    any
		priv   any
		err    error
	)

	switch strings.ToUpper(cfg.Algorithm) {
	case "RSA":
		keyAlg = jose.RSA_OAEP_256
		var rsaPub *rsa.PublicKey
		if rsaPub, err = ParseRSAPublicKey(cfg.PublicKey); err != nil {
			return nil, fmt.Errorf("cryptox: encryption public key: %w", err)
		}
		var rsaPriv *rsa.PrivateKey
		if rsaPriv, err = ParseRSAPrivateKey(cfg.PrivateKey); err != nil {
			return nil, fmt.Errorf("cryptox: encryption private key: %w", err)
		}
		pub, priv = rsaPub, rsaPriv
	case "EC":
		keyAlg = jose.ECDH_ES_A256KW
		var ecPub *ecdsa.PublicKey
		if ecPub, err = ParseECPublicKey(cfg.PublicKey); err != nil {
			return nil, fmt.Errorf("cryptox: encryption public key: %w", err)
		}
		var ecPriv *ecdsa.PrivateKey
		if ecPriv, err = ParseECPrivateKey(cfg.PrivateKey); err != nil {
			return nil, fmt.Errorf("cryptox: encryption private key: %w", err)
		}
		pub, priv = ecPub, ecPriv
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncryption, cfg.Algorithm)
	}

	enc, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: keyAlg, Key: pub}, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: build encrypter: %w", err)
	}

	return &TokenEncryptor{
		enabled:   true,
		keyAlg:    keyAlg,
		encrypter: enc,
		private:   priv,
	}, nil
}

// Enabled reports whether an encryption configuration was supplied.
func (e *TokenEncryptor) Enabled() bool {
	return e != nil && e.enabled
}

// EncryptAndEncode encrypts token and returns standard base64 text.
func (e *TokenEncryptor) EncryptAndEncode(token string) (string, error) {
	if !e.Enabled() {
		return "", ErrEncryptionNotSupported
	}

	obj, err := e.encrypter.Encrypt([]byte(token))
	if err != nil {
		return "", fmt.Errorf("cryptox: encrypt token: %w", err)
	}
	compact, err := obj.CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("cryptox: serialize token: %w", err)
	}

	return base64.StdEncoding.EncodeToString([]byte(compact)), nil
}

// DecryptEncoded reverses EncryptAndEncode.
func (e *TokenEncryptor) DecryptEncoded(encoded string) (string, error) {
	if !e.Enabled() {
		return "", ErrEncryptionNotSupported
	}

	compact, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("cryptox: decode token: %w", err)
	}

	obj, err := jose.ParseEncryptedCompact(string(compact),
		[]jose.KeyAlgorithm{e.keyAlg},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return "", fmt.Errorf("cryptox: parse token: %w", err)
	}

	plain, err := obj.Decrypt(e.private)
	if err != nil {
		return "", fmt.Errorf("cryptox: decrypt token: %w", err)
	}
	return string(plain), nil
}
