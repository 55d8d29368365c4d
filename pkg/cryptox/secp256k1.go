package cryptox

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// crypto/x509 only knows the NIST curves, so secp256k1 keys are unwrapped
// from their SPKI / PKCS8 / SEC1 envelopes here.
var (
	oidPublicKeyECDSA = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp256k1      = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

type spki struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

type pkcs8 struct {
	Version    int
	Algorithm  pkix.AlgorithmIdentifier
	PrivateKey []byte
}

type sec1PrivateKey struct {
	Version    int
	PrivateKey []byte
	Curve      asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	PublicKey  asn1.BitString        `asn1:"optional,explicit,tag:1"`
}

// ParseSecp256k1PublicKey accepts an SPKI encoded secp256k1 public key.
func ParseSecp256k1PublicKey(data []byte) (*secp256k1.PublicKey, error) {
	der, err := DecodeKey(data)
	if err != nil {
		return nil, err
	}

	var info spki
	if rest, err := asn1.Unmarshal(der, &info); err != nil || len(rest) != 0 {
		return nil, fmt.Errorf("%w: secp256k1 public key is not SPKI", ErrInvalidKey)
	}
	if err := checkSecp256k1Algorithm(info.Algorithm); err != nil {
		return nil, err
	}

	pub, err := secp256k1.ParsePubKey(info.PublicKey.RightAlign())
	if err != nil {
		return nil, fmt.Errorf("%w: secp256k1 public key: %v", ErrInvalidKey, err)
	}
	return pub, nil
}

// ParseSecp256k1PrivateKey accepts PKCS8 or bare SEC1 encodings.
func ParseSecp256k1PrivateKey(data []byte) (*secp256k1.PrivateKey, error) {
	der, err := DecodeKey(data)
	if err != nil {
		return nil, err
	}

	var wrapped pkcs8
	if _, err := asn1.Unmarshal(der, &wrapped); err == nil && wrapped.Algorithm.Algorithm != nil {
		if err := checkSecp256k1Algorithm(wrapped.Algorithm); err != nil {
			return nil, err
		}
		der = wrapped.PrivateKey
	}

	var key sec1PrivateKey
	if _, err := asn1.Unmarshal(der, &key); err != nil {
		return nil, fmt.Errorf("%w: secp256k1 private key: %v", ErrInvalidKey, err)
	}
	if key.Version != 1 {
		return nil, fmt.Errorf("%w: unexpected SEC1 version %d", ErrInvalidKey, key.Version)
	}
	if len(key.Curve) != 0 && !key.Curve.Equal(oidSecp256k1) {
		return nil, fmt.Errorf("%w: curve %v is not secp256k1", ErrInvalidKey, key.Curve)
	}
	if len(key.PrivateKey) == 0 || len(key.PrivateKey) > 32 {
		return nil, fmt.Errorf("%w: secp256k1 scalar has length %d", ErrInvalidKey, len(key.PrivateKey))
	}

	return secp256k1.PrivKeyFromBytes(key.PrivateKey), nil
}

// MarshalSecp256k1PublicKey encodes pub as a PEM "PUBLIC KEY" block.
func MarshalSecp256k1PublicKey(pub *secp256k1.PublicKey) ([]byte, error) {
	alg, err := secp256k1Algorithm()
	if err != nil {
		return nil, err
	}

	point := pub.SerializeUncompressed()
	der, err := asn1.Marshal(spki{
		Algorithm: alg,
		PublicKey: asn1.BitString{Bytes: point, BitLength: 8 * len(point)},
	})
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal secp256k1 public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// MarshalSecp256k1PrivateKey encodes priv as a PEM PKCS8 "PRIVATE KEY" block.
func MarshalSecp256k1PrivateKey(priv *secp256k1.PrivateKey) ([]byte, error) {
	alg, err := secp256k1Algorithm()
	if err != nil {
		return nil, err
	}

	point := priv.PubKey().SerializeUncompressed()
	inner, err := asn1.Marshal(sec1PrivateKey{
		Version:    1,
		PrivateKey: priv.Serialize(),
		PublicKey:  asn1.BitString{Bytes: point, BitLength: 8 * len(point)},
	})
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal secp256k1 private key: %w", err)
	}

	der, err := asn1.Marshal(pkcs8{Algorithm: alg, PrivateKey: inner})
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal secp256k1 PKCS8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

func secp256k1Algorithm() (pkix.AlgorithmIdentifier, error) {
	params, err := asn1.Marshal(oidSecp256k1)
	if err != nil {
		return pkix.AlgorithmIdentifier{}, err
	}
	return pkix.AlgorithmIdentifier{
		Algorithm:  oidPublicKeyECDSA,
		Parameters: asn1.RawValue{FullBytes: params},
	}, nil
}

func checkSecp256k1Algorithm(alg pkix.AlgorithmIdentifier) error {
	if !alg.Algorithm.Equal(oidPublicKeyECDSA) {
		return fmt.Errorf("%w: algorithm %v is not id-ecPublicKey", ErrInvalidKey, alg.Algorithm)
	}

	var curve asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(alg.Parameters.FullBytes, &curve); err != nil {
		return fmt.Errorf("%w: missing named curve", ErrInvalidKey)
	}
	if !curve.Equal(oidSecp256k1) {
		return fmt.Errorf("%w: curve %v is not secp256k1", ErrInvalidKey, curve)
	}
	return nil
}
