// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/docg1701/iam-dashboard/internal/validation"
)

// LoginRequest contains the credentials for a login attempt. TOTPCode is
// required only for accounts with 2FA enabled.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.TOTPCode,
			validation.When(r.TOTPCode != "", customValidation.TOTPCode),
		),
	)
}

// RefreshRequest contains the refresh token to redeem for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks if the refresh request is valid.
func (r *RefreshRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// LogoutRequest contains the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks if the logout request is valid.
func (r *LogoutRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// CreateUserRequest contains the parameters for registering a new user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate checks if the create user request is valid.
func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.PasswordStrength{
				MinLength:     12,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
		validation.Field(&r.Role,
			validation.Required,
			validation.In("admin", "manager", "operator"),
		),
	)
}

// TOTPCodeRequest contains a six digit TOTP code for enabling or disabling 2FA.
type TOTPCodeRequest struct {
	TOTPCode string `json:"totp_code"`
}

// Validate checks if the TOTP code request is valid.
func (r *TOTPCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TOTPCode,
			validation.Required,
			customValidation.TOTPCode,
		),
	)
}
