package service

import (
	"errors"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
)

// Encryption adapts a cryptox.TokenEncryptor to domain errors. A nil
// *Encryption behaves like a disabled encryptor.
type Encryption struct {
	enc *cryptox.TokenEncryptor
}

func NewEncryption(enc *cryptox.TokenEncryptor) *Encryption {
	return &Encryption{enc: enc}
}

func (e *Encryption) Enabled() bool {
	return e != nil && e.enc.Enabled()
}

// Encrypt fails with ENCRYPTION_NOT_SUPPORTED when encryption is disabled.
func (e *Encryption) Encrypt(token string) (string, error) {
	if !e.Enabled() {
		return "", errNotEnabled()
	}
	out, err := e.enc.EncryptAndEncode(token)
	if err != nil {
		return "", mapEncryptionErr(err)
	}
	return out, nil
}

// Decrypt fails with ENCRYPTION_NOT_SUPPORTED when encryption is disabled
// and INVALID_TOKEN when the input cannot be decrypted.
func (e *Encryption) Decrypt(encoded string) (string, error) {
	if !e.Enabled() {
		return "", errNotEnabled()
	}
	out, err := e.enc.DecryptEncoded(encoded)
	if err != nil {
		return "", mapEncryptionErr(err)
	}
	return out, nil
}

// EncryptIfEnabled passes token through unchanged when encryption is off.
func (e *Encryption) EncryptIfEnabled(token string) (string, error) {
	if !e.Enabled() {
		return token, nil
	}
	return e.Encrypt(token)
}

func errNotEnabled() error {
	return domain.NewError(domain.CodeEncryptionNotSupported, "JWT encryption is not enabled")
}

func mapEncryptionErr(err error) error {
	if errors.Is(err, cryptox.ErrEncryptionNotSupported) {
		return errNotEnabled()
	}
	return domain.NewError(domain.CodeInvalidToken, "Failed to process encrypted token")
}
