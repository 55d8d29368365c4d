package jwtx

import (
	"crypto"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUnsupportedAlgorithm reports an algorithm name outside the
	// HMAC/RSA/EC families or an unknown member of one of them.
	ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported algorithm")
	// ErrKeyMaterial reports missing, malformed or mismatched keys.
	ErrKeyMaterial = errors.New("jwtx: invalid key material")
)

// Configuration names accepted by ParseAlgorithm.
const (
	HMAC256 = "HMAC256"
	HMAC512 = "HMAC512"
	RSA256  = "RSA256"
	RSA512  = "RSA512"
	EC256   = "EC256"
	EC512   = "EC512"
	EC256K  = "EC256K"
)

// Algorithm is a resolved signing configuration: the JWS method plus the
// keys it signs and verifies with. It is immutable; rotating keys means
// parsing a new Algorithm.
type Algorithm struct {
	name      string
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	public    crypto.PublicKey // nil for HMAC
	kid       string
}

// ParseAlgorithm resolves a configured algorithm name and its key bytes.
// HMAC algorithms use privateKey as the shared secret and ignore publicKey.
// RSA and EC algorithms need both keys as PEM or base64 DER.
func ParseAlgorithm(name string, publicKey, privateKey []byte) (*Algorithm, error) {
	switch {
	case strings.HasPrefix(name, "HMAC"):
		return parseHMAC(name, privateKey)
	case strings.HasPrefix(name, "RSA"):
		return parseRSA(name, publicKey, privateKey)
	case strings.HasPrefix(name, "EC"):
		return parseEC(name, publicKey, privateKey)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedAlgorithm, name)
	}
}

func parseHMAC(name string, secret []byte) (*Algorithm, error) {
	var method jwt.SigningMethod
	switch name {
	case HMAC256:
		method = jwt.SigningMethodHS256
	case HMAC512:
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedAlgorithm, name)
	}

	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %s requires a secret", ErrKeyMaterial, name)
	}
	key := append([]byte(nil), secret...)

	return &Algorithm{name: name, method: method, signKey: key, verifyKey: key}, nil
}

func parseRSA(name string, publicKey, privateKey []byte) (*Algorithm, error) {
	var method jwt.SigningMethod
	switch name {
	case RSA256:
		method = jwt.SigningMethodRS256
	case RSA512:
		method = jwt.SigningMethodRS512
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedAlgorithm, name)
	}

	pub, err := cryptox.ParseRSAPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMaterial, err)
	}
	priv, err := cryptox.ParseRSAPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMaterial, err)
	}
	if !pub.Equal(&priv.PublicKey) {
		return nil, fmt.Errorf("%w: RSA public and private keys do not match", ErrKeyMaterial)
	}

	return newAsymmetric(name, method, priv, pub)
}

func parseEC(name string, publicKey, privateKey []byte) (*Algorithm, error) {
	var (
		method jwt.SigningMethod
		bits   int
	)
	switch name {
	case EC256:
		method, bits = jwt.SigningMethodES256, 256
	case EC512:
		method, bits = jwt.SigningMethodES512, 521
	case EC256K:
		return parseES256K(publicKey, privateKey)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedAlgorithm, name)
	}

	pub, err := cryptox.ParseECPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMaterial, err)
	}
	priv, err := cryptox.ParseECPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMaterial, err)
	}
	if pub.Curve.Params().BitSize != bits {
		return nil, fmt.Errorf("%w: %s needs a %d bit curve, got %s", ErrKeyMaterial, name, bits, pub.Curve.Params().Name)
	}
	if !pub.Equal(&priv.PublicKey) {
		return nil, fmt.Errorf("%w: EC public and private keys do not match", ErrKeyMaterial)
	}

	return newAsymmetric(name, method, priv, pub)
}

func parseES256K(publicKey, privateKey []byte) (*Algorithm, error) {
	pub, err := cryptox.ParseSecp256k1PublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMaterial, err)
	}
	priv, err := cryptox.ParseSecp256k1PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMaterial, err)
	}
	if !pub.IsEqual(priv.PubKey()) {
		return nil, fmt.Errorf("%w: secp256k1 public and private keys do not match", ErrKeyMaterial)
	}

	// go-jose has no secp256k1 JWK support, so the kid is derived from the
	// uncompressed point directly.
	sum := sha256.Sum256(pub.SerializeUncompressed())

	return &Algorithm{
		name:      EC256K,
		method:    SigningMethodES256K,
		signKey:   priv,
		verifyKey: pub,
		kid:       base64.RawURLEncoding.EncodeToString(sum[:]),
	}, nil
}

func newAsymmetric(name string, method jwt.SigningMethod, priv crypto.PrivateKey, pub crypto.PublicKey) (*Algorithm, error) {
	jwk := jose.JSONWebKey{Key: pub}
	thumb, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("%w: thumbprint: %v", ErrKeyMaterial, err)
	}

	return &Algorithm{
		name:      name,
		method:    method,
		signKey:   priv,
		verifyKey: pub,
		public:    pub,
		kid:       base64.RawURLEncoding.EncodeToString(thumb),
	}, nil
}

// Name returns the configuration name, e.g. "RSA256".
func (a *Algorithm) Name() string { return a.name }

// Method returns the JWS signing method bound to this algorithm.
func (a *Algorithm) Method() jwt.SigningMethod { return a.method }

// KeyID is the RFC 7638 thumbprint of the public key. HMAC has none.
func (a *Algorithm) KeyID() string { return a.kid }

// Symmetric reports whether the algorithm is an HMAC.
func (a *Algorithm) Symmetric() bool {
	return strings.HasPrefix(a.name, "HMAC")
}
