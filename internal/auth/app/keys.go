package app

import (
	"crypto/elliptic"
	"fmt"
	"os"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
)

// LoadKeyMaterial resolves a configured key value. A value naming an
// existing file is replaced by the file's contents; anything else (inline
// PEM, base64 DER or a raw HMAC secret) is returned as is.
func LoadKeyMaterial(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "-----BEGIN") {
		return []byte(value), nil
	}

	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		data, err := os.ReadFile(value) // #nosec G304 -- operator supplied path
		if err != nil {
			return nil, fmt.Errorf("read key file %s: %w", value, err)
		}
		return data, nil
	}
	return []byte(value), nil
}

// LoadSigning parses the configured signing algorithm and its keys.
func LoadSigning(cfg JWTConfig) (*jwtx.Algorithm, error) {
	pub, err := LoadKeyMaterial(cfg.PublicKey)
	if err != nil {
		return nil, err
	}
	priv, err := LoadKeyMaterial(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	alg, err := jwtx.ParseAlgorithm(cfg.Algorithm, pub, priv)
	if err != nil {
		return nil, fmt.Errorf("jwt signing key: %w", err)
	}
	return alg, nil
}

// LoadEncryption builds the token encryptor. It is disabled when no
// encryption algorithm is configured.
func LoadEncryption(cfg EncryptionConfig) (*cryptox.TokenEncryptor, error) {
	pub, err := LoadKeyMaterial(cfg.PublicKey)
	if err != nil {
		return nil, err
	}
	priv, err := LoadKeyMaterial(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	enc, err := cryptox.NewTokenEncryptor(cryptox.EncryptionConfig{
		Algorithm:  cfg.Algorithm,
		PublicKey:  pub,
		PrivateKey: priv,
	})
	if err != nil {
		return nil, fmt.Errorf("jwt encryption key: %w", err)
	}
	return enc, nil
}

// LoadSealer builds the TOTP secret sealer from the master key. ephemeral
// reports whether a random key had to be used instead.
func LoadSealer(cfg KeysConfig) (sealer *cryptox.Sealer, ephemeral bool, err error) {
	material, err := LoadKeyMaterial(cfg.MasterKey)
	if err != nil {
		return nil, false, err
	}
	if len(material) == 0 {
		sealer, err = cryptox.NewEphemeralSealer()
		return sealer, true, err
	}

	sealer, err = cryptox.NewSealer(material)
	return sealer, false, err
}

// GenerateKeyPair creates key material for a jwtx algorithm name. HMAC
// algorithms only fill PrivateKey with a random secret.
func GenerateKeyPair(algorithm string) (*cryptox.KeyPair, error) {
	switch algorithm {
	case jwtx.HMAC256, jwtx.HMAC512:
		secret, err := cryptox.GenerateSecret(64)
		if err != nil {
			return nil, err
		}
		return &cryptox.KeyPair{PrivateKey: secret}, nil
	case jwtx.RSA256, jwtx.RSA512:
		return cryptox.GenerateRSAKeyPair(3072)
	case jwtx.EC256:
		return cryptox.GenerateECKeyPair(elliptic.P256())
	case jwtx.EC512:
		return cryptox.GenerateECKeyPair(elliptic.P521())
	case jwtx.EC256K:
		return cryptox.GenerateSecp256k1KeyPair()
	default:
		return nil, fmt.Errorf("%w %q", jwtx.ErrUnsupportedAlgorithm, algorithm)
	}
}
