package domain

import (
	"github.com/docg1701/iam-dashboard/internal/errors"
)

// Authentication errors.
var (
	// ErrUserNotFound indicates a user with the specified ID or email was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrRefreshTokenNotFound indicates a refresh token with the specified hash was not found.
	ErrRefreshTokenNotFound = errors.Wrap(errors.ErrNotFound, "refresh token not found")

	// ErrInvalidCredentials indicates the email/password pair or the presented
	// token is wrong. Deliberately indistinguishable from "no such user" to
	// prevent account enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrUserInactive indicates the user exists but cannot authenticate.
	ErrUserInactive = errors.Wrap(errors.ErrForbidden, "user is not active")

	// ErrTOTPRequired indicates login needs a valid TOTP code to complete.
	ErrTOTPRequired = errors.Wrap(errors.ErrSecondFactorRequired, "totp code required")

	// ErrTOTPAlreadyEnabled indicates 2FA setup was attempted while enabled.
	ErrTOTPAlreadyEnabled = errors.Wrap(errors.ErrConflict, "totp already enabled")

	// ErrTOTPNotSetUp indicates enable/disable was attempted without a pending
	// or active TOTP secret.
	ErrTOTPNotSetUp = errors.Wrap(errors.ErrInvalidInput, "totp not set up")

	// ErrEmailTaken indicates another user already registered the email.
	ErrEmailTaken = errors.Wrap(errors.ErrConflict, "email already registered")
)
