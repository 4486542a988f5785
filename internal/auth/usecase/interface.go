// Package usecase defines business logic interfaces for authentication operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
)

// UserRepository defines persistence operations for users.
// Implementations must support transaction-aware operations via context propagation.
type UserRepository interface {
	// Create stores a new user in the repository.
	Create(ctx context.Context, user *authDomain.User) error

	// Update modifies an existing user in the repository.
	Update(ctx context.Context, user *authDomain.User) error

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)
}

// RefreshTokenRepository defines persistence operations for refresh tokens.
// Implementations must support transaction-aware operations via context propagation.
type RefreshTokenRepository interface {
	// Create stores a new refresh token in the repository.
	Create(ctx context.Context, token *authDomain.RefreshToken) error

	// GetByTokenHash retrieves a refresh token by its hash.
	// Returns ErrRefreshTokenNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.RefreshToken, error)

	// Revoke marks a refresh token as revoked at the given time.
	Revoke(ctx context.Context, tokenID uuid.UUID, revokedAt time.Time) error
}

// AuditRecorder appends authentication events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry *auditDomain.Entry) error
}

// AuthUseCase defines the session/token lifecycle operations exposed over the
// /auth endpoints and the administrative CLI.
type AuthUseCase interface {
	// Login authenticates a user by email and password (plus TOTP code when
	// the account has 2FA enabled) and issues a fresh token pair.
	//
	// Security notes:
	//   - Unknown email and wrong password both return ErrInvalidCredentials
	//     to prevent account enumeration.
	//   - A user with 2FA enabled gets ErrTOTPRequired until a currently
	//     valid code accompanies correct credentials; the distinction is
	//     carried as a machine-readable error, never message text.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.LoginOutput, error)

	// Refresh redeems an opaque refresh token for a rotated token pair. The
	// presented token is revoked and the replacement inserted in a single
	// transaction, so a concurrent replay of the old token cannot win.
	Refresh(ctx context.Context, plainRefreshToken string) (*authDomain.TokenPair, error)

	// Logout revokes the presented refresh token. Unknown or already revoked
	// tokens are treated as success; logout is idempotent.
	Logout(ctx context.Context, plainRefreshToken string) error

	// Me returns the current identity snapshot for an authenticated user.
	Me(ctx context.Context, userID uuid.UUID) (*authDomain.UserSnapshot, error)

	// SetupTOTP generates a pending TOTP secret and provisioning URI. 2FA is
	// not enforced until EnableTOTP verifies a code from this secret.
	SetupTOTP(ctx context.Context, userID uuid.UUID) (*authDomain.SetupTOTPOutput, error)

	// EnableTOTP turns on 2FA after verifying a code against the pending secret.
	EnableTOTP(ctx context.Context, userID uuid.UUID, code string) error

	// DisableTOTP turns off 2FA after verifying a current code.
	DisableTOTP(ctx context.Context, userID uuid.UUID, code string) error

	// CreateUser registers a new user account.
	CreateUser(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error)
}
