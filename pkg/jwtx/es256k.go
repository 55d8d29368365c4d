package jwtx

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/golang-jwt/jwt/v5"
)

// SigningMethodES256K implements ECDSA over secp256k1 with SHA-256 (RFC
// 8812). Signatures are the 64 byte r||s concatenation used by JWS.
var SigningMethodES256K jwt.SigningMethod = &signingMethodES256K{}

func init() {
	jwt.RegisterSigningMethod(SigningMethodES256K.Alg(), func() jwt.SigningMethod {
		return SigningMethodES256K
	})
}

type signingMethodES256K struct{}

func (m *signingMethodES256K) Alg() string { return "ES256K" }

func (m *signingMethodES256K) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(*secp256k1.PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}

	digest := sha256.Sum256([]byte(signingString))
	sig := ecdsa.Sign(priv, digest[:])

	r, s := sig.R(), sig.S()
	rb, sb := r.Bytes(), s.Bytes()

	out := make([]byte, 64)
	copy(out[:32], rb[:])
	copy(out[32:], sb[:])
	return out, nil
}

func (m *signingMethodES256K) Verify(signingString string, sig []byte, key any) error {
	pub, ok := key.(*secp256k1.PublicKey)
	if !ok {
		return jwt.ErrInvalidKeyType
	}
	if len(sig) != 64 {
		return jwt.ErrSignatureInvalid
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return jwt.ErrSignatureInvalid
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return jwt.ErrSignatureInvalid
	}

	digest := sha256.Sum256([]byte(signingString))
	if !ecdsa.NewSignature(&r, &s).Verify(digest[:], pub) {
		return jwt.ErrSignatureInvalid
	}
	return nil
}
