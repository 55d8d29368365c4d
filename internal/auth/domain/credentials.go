package domain

import "time"

// Credentials bind a login identifier to an account's password hash.
type Credentials struct {
	ID           string
	AccountID    string
	Domain       string
	Identifier   string
	PasswordHash string // argon2id PHC string
	Active       bool
	CreatedAt    time.Time
}

// OneTimePassword is an issued OTP, referenced by ID in "id:password" tokens.
type OneTimePassword struct {
	ID        string
	AccountID string
	Password  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TOTPKey is an account's authenticator secret. Secret holds the sealed,
// base64 encoded form of the base32 key; it is never stored in the clear.
type TOTPKey struct {
	ID        string
	AccountID string
	Secret    string
	CreatedAt time.Time
}
