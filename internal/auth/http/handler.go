// Package http provides HTTP handlers and middleware for authentication.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	"github.com/docg1701/iam-dashboard/internal/auth/http/dto"
	authUseCase "github.com/docg1701/iam-dashboard/internal/auth/usecase"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	"github.com/docg1701/iam-dashboard/internal/httputil"
	customValidation "github.com/docg1701/iam-dashboard/internal/validation"
)

// AuthHandler handles HTTP requests for session lifecycle operations.
// It coordinates login, refresh, logout and 2FA management with the AuthUseCase.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	authUseCase authUseCase.AuthUseCase,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// LoginHandler authenticates a user with email and password.
// POST /auth/login - No authentication required (this is the authentication endpoint).
// Returns 200 OK with a token pair and user snapshot, 401 for bad credentials,
// 422 with code "totp_required" when a 2FA code is missing or wrong.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &authDomain.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		TOTPCode: req.TOTPCode,
	}

	output, err := h.authUseCase.Login(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.LoginResponse{
		Tokens: dto.MapTokenPairToResponse(&output.Tokens),
		User:   dto.MapSnapshotToResponse(&output.User),
	}

	c.JSON(http.StatusOK, response)
}

// RefreshHandler redeems a refresh token for a rotated token pair.
// POST /auth/refresh - No authentication required (the refresh token is the credential).
// Returns 200 OK with a new token pair, 401 for unknown/expired/revoked tokens.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.authUseCase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// LogoutHandler revokes the presented refresh token.
// POST /auth/logout - No authentication required; revocation is idempotent.
// Returns 204 No Content regardless of whether the token was known.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	var req dto.LogoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// MeHandler returns the authenticated user's identity snapshot.
// GET /auth/me - Requires authentication.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	snapshot, err := h.authUseCase.Me(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSnapshotToResponse(snapshot))
}

// SetupTOTPHandler generates a pending TOTP secret for the authenticated user.
// POST /auth/setup-2fa - Requires authentication.
// Returns 200 OK with the secret and provisioning URI, 409 if 2FA is already enabled.
func (h *AuthHandler) SetupTOTPHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	output, err := h.authUseCase.SetupTOTP(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.SetupTOTPResponse{
		Secret:          output.Secret,
		ProvisioningURI: output.ProvisioningURI,
	}

	c.JSON(http.StatusOK, response)
}

// EnableTOTPHandler turns on 2FA after verifying a code from the pending secret.
// POST /auth/enable-2fa - Requires authentication.
// Returns 204 No Content, 422 with code "totp_required" for a wrong code.
func (h *AuthHandler) EnableTOTPHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.TOTPCodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.authUseCase.EnableTOTP(c.Request.Context(), user.ID, req.TOTPCode); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DisableTOTPHandler turns off 2FA after verifying a current code.
// POST /auth/disable-2fa - Requires authentication.
// Returns 204 No Content, 422 with code "totp_required" for a wrong code.
func (h *AuthHandler) DisableTOTPHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.TOTPCodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.authUseCase.DisableTOTP(c.Request.Context(), user.ID, req.TOTPCode); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateUserHandler registers a new user account.
// POST /users - Requires authentication and admin-scope create permission.
// Returns 201 Created with the new user snapshot, 409 when the email is taken.
func (h *AuthHandler) CreateUserHandler(c *gin.Context) {
	var req dto.CreateUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &authDomain.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     authDomain.Role(req.Role),
	}

	user, err := h.authUseCase.CreateUser(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	snapshot := user.Snapshot()
	c.JSON(http.StatusCreated, dto.MapSnapshotToResponse(&snapshot))
}
