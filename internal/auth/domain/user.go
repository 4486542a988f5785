package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can authenticate against the dashboard.
type User struct {
	ID           uuid.UUID  // Unique identifier (UUIDv7)
	Email        string     // Login identifier, unique
	PasswordHash string     //nolint:gosec // Argon2id hash, not plaintext
	Role         Role       // Coarse application role
	TOTPSecret   []byte     // Raw TOTP secret; nil until 2FA setup starts
	TOTPEnabled  bool       // Whether login requires a TOTP code
	IsActive     bool       // Inactive users cannot authenticate
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot returns the immutable identity view handed to clients. It never
// contains credential material.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}

// UserSnapshot is the identity subset exposed over the wire and held by the
// client for the session's lifetime.
type UserSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// CreateUserInput contains the parameters for registering a new user.
type CreateUserInput struct {
	Email    string
	Password string
	Role     Role
}

// LoginInput contains the credentials presented to the login endpoint.
type LoginInput struct {
	Email    string
	Password string
	TOTPCode string // Optional; required once the user has 2FA enabled
}

// LoginOutput is the result of a successful login.
type LoginOutput struct {
	Tokens TokenPair
	User   UserSnapshot
}

// SetupTOTPOutput carries the pending secret and its provisioning URI. The
// secret is only returned once; it becomes effective after Enable2FA verifies
// a code generated from it.
type SetupTOTPOutput struct {
	Secret          string // Base32-encoded, shown once
	ProvisioningURI string // otpauth:// URI for authenticator apps
}
