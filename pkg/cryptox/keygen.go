package cryptox

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// KeyPair is a PEM encoded SPKI public key and PKCS8 private key.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateRSAKeyPair generates an RSA key pair of at least 2048 bits.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	if bits < 2048 {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least 2048 bits")
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}
	return marshalKeyPair(key, &key.PublicKey)
}

// GenerateECKeyPair generates an ECDSA key pair on one of the NIST curves.
func GenerateECKeyPair(curve elliptic.Curve) (*KeyPair, error) {
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate ECDSA key: %w", err)
	}
	return marshalKeyPair(key, &key.PublicKey)
}

// GenerateSecp256k1KeyPair generates a key pair for ES256K.
func GenerateSecp256k1KeyPair() (*KeyPair, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate secp256k1 key: %w", err)
	}

	pub, err := MarshalSecp256k1PublicKey(key.PubKey())
	if err != nil {
		return nil, err
	}
	priv, err := MarshalSecp256k1PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// GenerateSecret returns size random bytes, base64url encoded, suitable as an
// HMAC secret or CSRF key.
func GenerateSecret(size int) ([]byte, error) {
	s, err := GenerateToken(size)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func marshalKeyPair(priv, pub any) (*KeyPair, error) {
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal public key: %w", err)
	}

	return &KeyPair{
		PublicKey:  pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}),
		PrivateKey: pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}),
	}, nil
}
