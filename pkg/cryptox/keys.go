package cryptox

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// ErrInvalidKey reports key material that cannot be decoded into the
// requested key type.
var ErrInvalidKey = errors.New("cryptox: invalid key material")

// DecodeKey turns PEM text or base64 DER into DER bytes. Raw DER is
// returned unchanged.
func DecodeKey(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	if block, _ := pem.Decode(data); block != nil {
		return block.Bytes, nil
	}

	// DER always starts with a SEQUENCE tag.
	if data[0] == 0x30 {
		return data, nil
	}

	der, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: neither PEM nor base64 DER", ErrInvalidKey)
	}
	return der, nil
}

// ParseRSAPublicKey accepts SPKI or PKCS1 encodings.
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	der, err := DecodeKey(data)
	if err != nil {
		return nil, err
	}

	if pub, err := x509.ParsePKIXPublicKey(der); err == nil {
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA public key", ErrInvalidKey)
		}
		return rsaPub, nil
	}

	pub, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: RSA public key: %v", ErrInvalidKey, err)
	}
	return pub, nil
}

// ParseRSAPrivateKey accepts PKCS8 or PKCS1 encodings.
func ParseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	der, err := DecodeKey(data)
	if err != nil {
		return nil, err
	}

	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA private key", ErrInvalidKey)
		}
		return rsaKey, nil
	}

	k, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: RSA private key: %v", ErrInvalidKey, err)
	}
	return k, nil
}

// ParseECPublicKey accepts SPKI encodings on the NIST curves.
func ParseECPublicKey(data []byte) (*ecdsa.PublicKey, error) {
	der, err := DecodeKey(data)
	if err != nil {
		return nil, err
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: EC public key: %v", ErrInvalidKey, err)
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an EC public key", ErrInvalidKey)
	}
	return ecPub, nil
}

// ParseECPrivateKey accepts PKCS8 or SEC1 encodings on the NIST curves.
func ParseECPrivateKey(data []byte) (*ecdsa.PrivateKey, error) {
	der, err := DecodeKey(data)
	if err != nil {
		return nil, err
	}

	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		ecKey, ok := k.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an EC private key", ErrInvalidKey)
		}
		return ecKey, nil
	}

	k, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: EC private key: %v", ErrInvalidKey, err)
	}
	return k, nil
}
