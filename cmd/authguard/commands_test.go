package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/app"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersion(t *testing.T) {
	require.Equal(t, app.BuildVersion+"\n", run(t, "version"))
}

func TestKeygenStdout(t *testing.T) {
	out := run(t, "keygen", "--alg", "ec256")
	require.Contains(t, out, "-----BEGIN PUBLIC KEY-----")
	require.Contains(t, out, "PRIVATE KEY-----")
}

func TestKeygenWritesLoadableKeys(t *testing.T) {
	dir := t.TempDir()
	run(t, "keygen", "--alg", jwtx.EC256K, "--out", dir)

	_, err := app.LoadSigning(app.JWTConfig{
		Algorithm:  jwtx.EC256K,
		PublicKey:  filepath.Join(dir, "public.pem"),
		PrivateKey: filepath.Join(dir, "private.pem"),
	})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "private.pem"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestKeygenHMACWritesSecret(t *testing.T) {
	dir := t.TempDir()
	run(t, "keygen", "--alg", jwtx.HMAC512, "--out", dir)

	_, err := os.Stat(filepath.Join(dir, "secret"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "public.pem"))
	require.True(t, os.IsNotExist(err))
}

func TestKeygenRejectsUnknownAlgorithm(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"keygen", "--alg", "DSA"})
	require.ErrorIs(t, cmd.Execute(), jwtx.ErrUnsupportedAlgorithm)
}

func TestAccountCreateAndIssueOTP(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "secret")
	require.NoError(t, os.WriteFile(secret, []byte("0123456789abcdef0123456789abcdef"), 0o600))

	t.Setenv("AUTHGUARD_JWT_PRIVATEKEY", secret)
	t.Setenv("AUTHGUARD_DATABASE_PATH", filepath.Join(dir, "authguard.db"))
	t.Setenv("AUTHGUARD_PEPPERFILE", filepath.Join(dir, "pepper"))

	id := strings.TrimSpace(run(t, "account", "create",
		"--identifier", "ops@example.com",
		"--password", "correct horse",
		"--role", "admin",
	))
	require.NotEmpty(t, id)

	token := strings.TrimSpace(run(t, "issue", "otp", "--account", id))
	require.NotEmpty(t, token)
}

func TestAccountCreateNeedsPassword(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"account", "create", "--identifier", "x"})
	require.Error(t, cmd.Execute())
}
