package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
)

// AccessClaims are the claims embedded in signed access tokens. The identity
// snapshot travels in the token so request handlers do not need a user lookup.
type AccessClaims struct {
	Email string          `json:"email"`
	Role  authDomain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig holds the signing parameters for access tokens.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	Leeway     time.Duration
}

// tokenService implements TokenService using HS256 JWTs for access tokens and
// SHA-256 hashed opaque tokens for refresh.
type tokenService struct {
	config TokenConfig
}

// NewTokenService creates a new TokenService. The signing key must not be
// empty and the access TTL must be positive.
func NewTokenService(cfg TokenConfig) (TokenService, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, apperrors.New("token service requires a signing key")
	}
	if cfg.AccessTTL <= 0 {
		return nil, apperrors.New("token service requires a positive access TTL")
	}
	if cfg.Leeway == 0 {
		cfg.Leeway = 30 * time.Second
	}
	return &tokenService{config: cfg}, nil
}

// IssueAccessToken creates a signed HS256 access token carrying the user's
// identity snapshot and registered claims.
func (t *tokenService) IssueAccessToken(user *authDomain.User) (string, int64, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.config.Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.AccessTTL)),
			ID:        uuid.Must(uuid.NewV7()).String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.config.SigningKey)
	if err != nil {
		return "", 0, apperrors.Wrap(err, "failed to sign access token")
	}

	return signed, int64(t.config.AccessTTL.Seconds()), nil
}

// ParseAccessToken verifies the token signature, issuer and expiry and
// returns the identity snapshot carried in the claims. Any verification
// failure maps to ErrInvalidCredentials.
func (t *tokenService) ParseAccessToken(token string) (*authDomain.UserSnapshot, error) {
	claims := &AccessClaims{}

	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, apperrors.New("unexpected signing method")
			}
			return t.config.SigningKey, nil
		},
		jwt.WithIssuer(t.config.Issuer),
		jwt.WithLeeway(t.config.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, authDomain.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrInvalidCredentials
	}

	return &authDomain.UserSnapshot{
		ID:    userID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// GenerateRefreshToken creates a new cryptographically secure 32-byte random
// token. The token is base64 URL-encoded for transmission; only its SHA-256
// hash is ever stored.
func (t *tokenService) GenerateRefreshToken() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := base64.URLEncoding.EncodeToString(randomBytes)
	return plainToken, t.HashRefreshToken(plainToken), nil
}

// HashRefreshToken hashes a plain refresh token using SHA-256.
// Returns the hash as a hexadecimal string.
func (t *tokenService) HashRefreshToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}
