package authclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair mirrors the token pair issued by the login and refresh endpoints.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// User is the immutable identity snapshot held for the session's lifetime.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsTokenExpired reports whether the access token's exp claim has passed,
// proactively treating tokens within buffer of expiry as already expired so
// refresh happens before a request fails.
//
// The claim is decoded without signature verification; the client holds no
// signing key and only needs the timestamp. A token that cannot be parsed or
// carries no exp claim is expired (fail-safe, never fail-open).
func IsTokenExpired(token string, buffer time.Duration) bool {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return true
	}

	return time.Now().Add(buffer).After(expiresAt.Time)
}

// expiresWithin reports whether the token's exp claim falls inside buffer of
// now. Unlike IsTokenExpired, a token whose expiry cannot be determined
// reports false: it is sent as-is and any rejection is handled reactively.
func expiresWithin(token string, buffer time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return false
	}

	return time.Now().Add(buffer).After(expiresAt.Time)
}
