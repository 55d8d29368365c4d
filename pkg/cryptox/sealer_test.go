package cryptox_test

import (
	"testing"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("test-master-key-for-encryption-12345"))
	require.NoError(t, err)

	secret := []byte("JBSWY3DPEHPK3PXP")
	a, err := s.Seal(secret)
	require.NoError(t, err)
	b, err := s.Seal(secret)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "nonce must differ per seal")

	plain, err := s.Open(a)
	require.NoError(t, err)
	require.Equal(t, secret, plain)
}

func TestSealer_WrongKeyFails(t *testing.T) {
	s1, err := cryptox.NewSealer([]byte("key-one"))
	require.NoError(t, err)
	s2, err := cryptox.NewSealer([]byte("key-two"))
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("data"))
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	require.Error(t, err)
}

func TestSealer_Tampering(t *testing.T) {
	s, err := cryptox.NewEphemeralSealer()
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("data"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = s.Open(sealed)
	require.Error(t, err)

	_, err = s.Open([]byte("short"))
	require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)

	_, err = cryptox.NewSealer(nil)
	require.Error(t, err)
}
