package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenPair is the credential set issued on login and rotated on refresh.
// AccessToken is a signed-claims JWT; RefreshToken is opaque and single-use.
// At most one pair is active per session: issuing a new pair revokes the
// refresh token it was minted from in the same transaction.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"` // Access token lifetime in seconds
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshToken is the server-side record of an opaque refresh token. Only the
// SHA-256 hash is stored; the plain token exists once, on the wire.
type RefreshToken struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Usable reports whether the refresh token can still redeem a rotation.
func (r *RefreshToken) Usable(now time.Time) bool {
	if r.RevokedAt != nil {
		return false
	}
	return r.ExpiresAt.After(now)
}
