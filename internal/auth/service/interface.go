// Package service provides authentication-related services: signed access
// token management, opaque refresh token generation and hashing, Argon2id
// password hashing and RFC 6238 TOTP verification.
package service

import (
	"time"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
)

// TokenService mints and verifies the two halves of a token pair.
type TokenService interface {
	// IssueAccessToken creates a signed access token for the user and returns
	// the token together with its lifetime in seconds.
	IssueAccessToken(user *authDomain.User) (token string, expiresIn int64, err error)

	// ParseAccessToken verifies the signature and registered claims of an
	// access token and returns the embedded identity snapshot.
	ParseAccessToken(token string) (*authDomain.UserSnapshot, error)

	// GenerateRefreshToken creates a new opaque refresh token. Returns the
	// plain token (shown once) and its SHA-256 hash for storage.
	GenerateRefreshToken() (plainToken string, tokenHash string, err error)

	// HashRefreshToken hashes a plain refresh token for lookup.
	HashRefreshToken(plainToken string) string
}

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// HashPassword hashes a plain text password for storage.
	HashPassword(plainPassword string) (string, error)

	// ComparePassword performs a constant-time comparison between a plain
	// password and its stored hash.
	ComparePassword(plainPassword string, hashedPassword string) bool
}

// TOTPService manages time-based one-time password secrets and codes.
type TOTPService interface {
	// GenerateSecret creates a new random TOTP secret. Returns the raw bytes
	// for storage and the base32 encoding for provisioning.
	GenerateSecret() (raw []byte, base32Secret string, err error)

	// ProvisioningURI builds the otpauth:// URI for authenticator apps.
	ProvisioningURI(base32Secret, account string) string

	// VerifyCode checks a submitted code against the secret at the given time,
	// tolerating one period of clock skew in either direction.
	VerifyCode(secret []byte, code string, now time.Time) bool
}
