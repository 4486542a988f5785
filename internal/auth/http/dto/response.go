// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
)

// TokenPairResponse carries an issued token pair.
// SECURITY: The refresh token is only returned once and must be saved securely.
type TokenPairResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// UserResponse represents a user identity in API responses.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResponse contains the result of a successful login.
type LoginResponse struct {
	Tokens TokenPairResponse `json:"tokens"`
	User   UserResponse      `json:"user"`
}

// SetupTOTPResponse contains the pending secret for enrolling an authenticator.
// SECURITY: The secret is only returned once during setup.
type SetupTOTPResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// MapTokenPairToResponse converts a domain token pair to an API response.
func MapTokenPairToResponse(pair *authDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		IssuedAt:     pair.IssuedAt,
	}
}

// MapSnapshotToResponse converts a user snapshot to an API response.
func MapSnapshotToResponse(snapshot *authDomain.UserSnapshot) UserResponse {
	return UserResponse{
		ID:    snapshot.ID.String(),
		Email: snapshot.Email,
		Role:  string(snapshot.Role),
	}
}
