// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	authService "github.com/docg1701/iam-dashboard/internal/auth/service"
	"github.com/docg1701/iam-dashboard/internal/config"
	"github.com/docg1701/iam-dashboard/internal/database"
)

// authUseCase implements AuthUseCase. Refresh rotation runs inside a
// TxManager transaction so the old token's revocation and the new token's
// insertion land atomically.
type authUseCase struct {
	config          *config.Config
	userRepo        UserRepository
	refreshRepo     RefreshTokenRepository
	tokenService    authService.TokenService
	passwordService authService.PasswordService
	totpService     authService.TOTPService
	auditRecorder   AuditRecorder
	txManager       database.TxManager
	logger          *slog.Logger
}

// NewAuthUseCase creates a new AuthUseCase with the provided dependencies.
func NewAuthUseCase(
	cfg *config.Config,
	userRepo UserRepository,
	refreshRepo RefreshTokenRepository,
	tokenService authService.TokenService,
	passwordService authService.PasswordService,
	totpService authService.TOTPService,
	auditRecorder AuditRecorder,
	txManager database.TxManager,
	logger *slog.Logger,
) AuthUseCase {
	return &authUseCase{
		config:          cfg,
		userRepo:        userRepo,
		refreshRepo:     refreshRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
		totpService:     totpService,
		auditRecorder:   auditRecorder,
		txManager:       txManager,
		logger:          logger,
	}
}

// Login authenticates a user and issues a fresh token pair.
func (a *authUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	user, err := a.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		// Unknown email maps to the generic credential error to prevent enumeration.
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, authDomain.ErrUserInactive
	}

	if !a.passwordService.ComparePassword(input.Password, user.PasswordHash) {
		a.recordAudit(ctx, auditDomain.NewEntry(user.ID, auditDomain.ActionLoginFailed, "session", ""))
		return nil, authDomain.ErrInvalidCredentials
	}

	// The password alone never completes login for a 2FA-enabled account.
	if user.TOTPEnabled {
		if input.TOTPCode == "" || !a.totpService.VerifyCode(user.TOTPSecret, input.TOTPCode, time.Now().UTC()) {
			return nil, authDomain.ErrTOTPRequired
		}
	}

	pair, err := a.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	a.recordAudit(ctx, auditDomain.NewEntry(user.ID, auditDomain.ActionLogin, "session", ""))

	return &authDomain.LoginOutput{
		Tokens: *pair,
		User:   user.Snapshot(),
	}, nil
}

// Refresh redeems an opaque refresh token for a rotated token pair.
//
// The presented token is looked up by hash and validated against expiry and
// revocation; any failure maps to ErrInvalidCredentials so callers learn
// nothing about why. Rotation (revoke old, insert new) happens in one
// transaction: of two racing refresh attempts with the same token, the loser
// finds the row already revoked.
func (a *authUseCase) Refresh(
	ctx context.Context,
	plainRefreshToken string,
) (*authDomain.TokenPair, error) {
	tokenHash := a.tokenService.HashRefreshToken(plainRefreshToken)

	stored, err := a.refreshRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()
	if !stored.Usable(now) {
		return nil, authDomain.ErrInvalidCredentials
	}

	user, err := a.userRepo.Get(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, authDomain.ErrUserInactive
	}

	accessToken, expiresIn, err := a.tokenService.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	plainToken, newHash, err := a.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	replacement := &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: newHash,
		UserID:    user.ID,
		ExpiresAt: now.Add(a.config.RefreshTokenExpiration),
		CreatedAt: now,
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.refreshRepo.Revoke(ctx, stored.ID, now); err != nil {
			return err
		}
		return a.refreshRepo.Create(ctx, replacement)
	})
	if err != nil {
		// A concurrent redemption revoked the row first; this attempt loses
		// and its replacement pair is never persisted.
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	a.recordAudit(ctx, auditDomain.NewEntry(user.ID, auditDomain.ActionTokenRefreshed, "session", ""))

	return &authDomain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: plainToken,
		TokenType:    authDomain.TokenTypeBearer,
		ExpiresIn:    expiresIn,
		IssuedAt:     now,
	}, nil
}

// Logout revokes the presented refresh token. Unknown, expired and already
// revoked tokens all succeed: local teardown on the client is unconditional
// and the server follows suit.
func (a *authUseCase) Logout(ctx context.Context, plainRefreshToken string) error {
	tokenHash := a.tokenService.HashRefreshToken(plainRefreshToken)

	stored, err := a.refreshRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}

	if stored.RevokedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	if err := a.refreshRepo.Revoke(ctx, stored.ID, now); err != nil {
		// Someone revoked it in between; logout stays idempotent.
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}

	a.recordAudit(ctx, auditDomain.NewEntry(stored.UserID, auditDomain.ActionLogout, "session", ""))
	return nil
}

// Me returns the current identity snapshot for an authenticated user.
func (a *authUseCase) Me(ctx context.Context, userID uuid.UUID) (*authDomain.UserSnapshot, error) {
	user, err := a.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot := user.Snapshot()
	return &snapshot, nil
}

// SetupTOTP generates and stores a pending TOTP secret for the user.
func (a *authUseCase) SetupTOTP(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.SetupTOTPOutput, error) {
	user, err := a.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.TOTPEnabled {
		return nil, authDomain.ErrTOTPAlreadyEnabled
	}

	raw, encoded, err := a.totpService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	// Pending until EnableTOTP proves the authenticator holds the secret.
	user.TOTPSecret = raw
	user.UpdatedAt = time.Now().UTC()
	if err := a.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &authDomain.SetupTOTPOutput{
		Secret:          encoded,
		ProvisioningURI: a.totpService.ProvisioningURI(encoded, user.Email),
	}, nil
}

// EnableTOTP turns on 2FA after verifying a code against the pending secret.
func (a *authUseCase) EnableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := a.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if user.TOTPEnabled {
		return authDomain.ErrTOTPAlreadyEnabled
	}
	if len(user.TOTPSecret) == 0 {
		return authDomain.ErrTOTPNotSetUp
	}

	if !a.totpService.VerifyCode(user.TOTPSecret, code, time.Now().UTC()) {
		return authDomain.ErrTOTPRequired
	}

	user.TOTPEnabled = true
	user.UpdatedAt = time.Now().UTC()
	if err := a.userRepo.Update(ctx, user); err != nil {
		return err
	}

	a.recordAudit(ctx, auditDomain.NewEntry(user.ID, auditDomain.ActionTOTPEnabled, "user", user.ID.String()))
	return nil
}

// DisableTOTP turns off 2FA after verifying a current code.
func (a *authUseCase) DisableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := a.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !user.TOTPEnabled {
		return authDomain.ErrTOTPNotSetUp
	}

	if !a.totpService.VerifyCode(user.TOTPSecret, code, time.Now().UTC()) {
		return authDomain.ErrTOTPRequired
	}

	user.TOTPEnabled = false
	user.TOTPSecret = nil
	user.UpdatedAt = time.Now().UTC()
	if err := a.userRepo.Update(ctx, user); err != nil {
		return err
	}

	a.recordAudit(ctx, auditDomain.NewEntry(user.ID, auditDomain.ActionTOTPDisabled, "user", user.ID.String()))
	return nil
}

// CreateUser registers a new user account with a hashed password.
func (a *authUseCase) CreateUser(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	if _, err := a.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, authDomain.ErrEmailTaken
	} else if !errors.Is(err, authDomain.ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := a.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	a.recordAudit(ctx, auditDomain.NewEntry(user.ID, auditDomain.ActionUserCreated, "user", user.ID.String()))
	return user, nil
}

// issueTokenPair mints an access token and persists a new refresh token row.
func (a *authUseCase) issueTokenPair(
	ctx context.Context,
	user *authDomain.User,
) (*authDomain.TokenPair, error) {
	accessToken, expiresIn, err := a.tokenService.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	plainToken, tokenHash, err := a.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refresh := &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		UserID:    user.ID,
		ExpiresAt: now.Add(a.config.RefreshTokenExpiration),
		CreatedAt: now,
	}

	if err := a.refreshRepo.Create(ctx, refresh); err != nil {
		return nil, err
	}

	return &authDomain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: plainToken,
		TokenType:    authDomain.TokenTypeBearer,
		ExpiresIn:    expiresIn,
		IssuedAt:     now,
	}, nil
}

// recordAudit appends an audit entry, logging instead of failing the caller.
// Auth events are best-effort; grant mutations (which must be transactional)
// live in the permission use case, not here.
func (a *authUseCase) recordAudit(ctx context.Context, entry *auditDomain.Entry) {
	if err := a.auditRecorder.Record(ctx, entry); err != nil {
		a.logger.Warn("failed to record audit entry",
			slog.String("action", string(entry.Action)),
			slog.Any("error", err),
		)
	}
}
