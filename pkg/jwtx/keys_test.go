package jwtx_test

import (
	"crypto/elliptic"
	"testing"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const testIssuer = "authguard"

type keyMaterial struct {
	public  []byte
	private []byte
}

// testKeys generates key material for every supported algorithm name.
func testKeys(t *testing.T) map[string]keyMaterial {
	t.Helper()

	rsa, err := cryptox.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	p256, err := cryptox.GenerateECKeyPair(elliptic.P256())
	require.NoError(t, err)
	p521, err := cryptox.GenerateECKeyPair(elliptic.P521())
	require.NoError(t, err)
	k1, err := cryptox.GenerateSecp256k1KeyPair()
	require.NoError(t, err)

	secret := []byte("this-is-a-test-hmac-secret-of-reasonable-length")

	return map[string]keyMaterial{
		"HMAC256": {private: secret},
		"HMAC512": {private: secret},
		"RSA256":  {public: rsa.PublicKey, private: rsa.PrivateKey},
		"RSA512":  {public: rsa.PublicKey, private: rsa.PrivateKey},
		"EC256":   {public: p256.PublicKey, private: p256.PrivateKey},
		"EC512":   {public: p521.PublicKey, private: p521.PrivateKey},
		"EC256K":  {public: k1.PublicKey, private: k1.PrivateKey},
	}
}
