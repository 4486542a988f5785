package domain

import (
	"github.com/docg1701/iam-dashboard/internal/errors"
)

// Permission errors.
var (
	// ErrGrantNotFound indicates no grant exists for the (user, scope) pair.
	ErrGrantNotFound = errors.Wrap(errors.ErrNotFound, "permission grant not found")

	// ErrInvalidScope indicates an unknown agent scope.
	ErrInvalidScope = errors.Wrap(errors.ErrInvalidInput, "unknown agent scope")

	// ErrInvalidOperation indicates an unknown operation.
	ErrInvalidOperation = errors.Wrap(errors.ErrInvalidInput, "unknown operation")

	// ErrExpiryInPast indicates a grant expiry that is not in the future.
	ErrExpiryInPast = errors.Wrap(errors.ErrInvalidInput, "grant expiry must be in the future")
)
