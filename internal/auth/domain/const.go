// Package domain defines authentication domain models and business rules.
// Implements password-based login with optional TOTP second factor, signed
// access tokens and rotating opaque refresh tokens.
package domain

// Role identifies the coarse application role carried in the user snapshot.
// Fine-grained authorization is handled by permission grants, not roles.
type Role string

const (
	// RoleAdmin can administer users and permission grants.
	RoleAdmin Role = "admin"

	// RoleManager can manage records within the scopes granted to them.
	RoleManager Role = "manager"

	// RoleOperator is a regular data-entry user.
	RoleOperator Role = "operator"
)

// TokenTypeBearer is the token_type stamped on every issued token pair.
const TokenTypeBearer = "Bearer"
