package domain

import "errors"

// Error codes surfaced to callers.
const (
	CodeUnsupportedOperation       = "UNSUPPORTED_OPERATION"
	CodeInvalidToken               = "INVALID_TOKEN"
	CodeExpiredToken               = "EXPIRED_TOKEN"
	CodeGenericAuthFailure         = "GENERIC_AUTH_FAILURE"
	CodeUnsupportedJWTAlgorithm    = "UNSUPPORTED_JWT_ALGORITHM"
	CodeEncryptionNotSupported     = "ENCRYPTION_NOT_SUPPORTED"
	CodeUnknownExchange            = "UNKNOWN_EXCHANGE"
	CodeExchangeFailed             = "EXCHANGE_FAILED"
	CodeAccountInactive            = "ACCOUNT_INACTIVE"
	CodeAccountDoesNotExist        = "ACCOUNT_DOES_NOT_EXIST"
	CodeInvalidAuthorizationFormat = "INVALID_AUTHORIZATION_FORMAT"
	CodePasswordsDoNotMatch        = "PASSWORDS_DO_NOT_MATCH"
	CodeCredentialsDoesNotExist    = "CREDENTIALS_DOES_NOT_EXIST"
	CodeInactiveIdentifier         = "INACTIVE_IDENTIFIER"
	CodeTOTPNoKey                  = "TOTP_NO_KEY"
	CodeTOTPInvalid                = "TOTP_INVALID"
	CodeConfigurationError         = "CONFIGURATION_ERROR"
)

// Error is a coded failure. Two Errors match under errors.Is when their
// codes are equal, so the sentinels below can be compared against errors
// carrying any message.
type Error struct {
	Code       string
	Message    string
	EntityType EntityType
	EntityID   string
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ForEntity returns a copy of e naming the entity it concerns.
func (e *Error) ForEntity(kind EntityType, id string) *Error {
	c := *e
	c.EntityType, c.EntityID = kind, id
	return &c
}

var (
	ErrUnsupportedOperation       = &Error{Code: CodeUnsupportedOperation}
	ErrInvalidToken               = &Error{Code: CodeInvalidToken}
	ErrExpiredToken               = &Error{Code: CodeExpiredToken}
	ErrGenericAuthFailure         = &Error{Code: CodeGenericAuthFailure}
	ErrUnsupportedJWTAlgorithm    = &Error{Code: CodeUnsupportedJWTAlgorithm}
	ErrEncryptionNotSupported     = &Error{Code: CodeEncryptionNotSupported}
	ErrUnknownExchange            = &Error{Code: CodeUnknownExchange}
	ErrExchangeFailed             = &Error{Code: CodeExchangeFailed}
	ErrAccountInactive            = &Error{Code: CodeAccountInactive}
	ErrAccountDoesNotExist        = &Error{Code: CodeAccountDoesNotExist}
	ErrInvalidAuthorizationFormat = &Error{Code: CodeInvalidAuthorizationFormat}
	ErrPasswordsDoNotMatch        = &Error{Code: CodePasswordsDoNotMatch}
	ErrCredentialsDoesNotExist    = &Error{Code: CodeCredentialsDoesNotExist}
	ErrInactiveIdentifier         = &Error{Code: CodeInactiveIdentifier}
	ErrTOTPNoKey                  = &Error{Code: CodeTOTPNoKey}
	ErrTOTPInvalid                = &Error{Code: CodeTOTPInvalid}
	ErrConfiguration              = &Error{Code: CodeConfigurationError}
)

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
