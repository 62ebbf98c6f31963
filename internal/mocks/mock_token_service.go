package mocks

import (
	"fmt"
	"time"

	"github.com/you/authstarter/domain"
)

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	GenerateAccessTokenFunc  func(userID uint, role string, sessionID string) (string, error)
	GenerateRefreshTokenFunc func(userID uint, role string, sessionID string) (string, error)
	ValidateAccessTokenFunc  func(token string) (*domain.TokenClaims, error)
	ValidateRefreshTokenFunc func(token string) (*domain.TokenClaims, error)
	DecodeUnverifiedFunc     func(token string) (*domain.TokenClaims, error)

	refreshCounter int
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// GenerateAccessToken generates an access token for the user
func (m *MockTokenService) GenerateAccessToken(userID uint, role string, sessionID string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, role, sessionID)
	}
	// Default behavior: deterministic mock token
	return fmt.Sprintf("access_token_user_%d_%s_%s", userID, role, sessionID), nil
}

// GenerateRefreshToken generates a refresh token for the user. The default
// embeds a counter so consecutive issuances differ, mirroring the jti claim.
func (m *MockTokenService) GenerateRefreshToken(userID uint, role string, sessionID string) (string, error) {
	if m.GenerateRefreshTokenFunc != nil {
		return m.GenerateRefreshTokenFunc(userID, role, sessionID)
	}
	m.refreshCounter++
	return fmt.Sprintf("refresh_token_user_%d_%s_%s_%d", userID, role, sessionID, m.refreshCounter), nil
}

// ValidateAccessToken validates an access token
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	// Default behavior: valid claims for user 1
	return defaultClaims(), nil
}

// ValidateRefreshToken validates a refresh token
func (m *MockTokenService) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	// Default behavior: valid claims for user 1
	return defaultClaims(), nil
}

// DecodeUnverified extracts claims without verification
func (m *MockTokenService) DecodeUnverified(token string) (*domain.TokenClaims, error) {
	if m.DecodeUnverifiedFunc != nil {
		return m.DecodeUnverifiedFunc(token)
	}
	// Default behavior: same claims as validation
	return defaultClaims(), nil
}

func defaultClaims() *domain.TokenClaims {
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    1,
		Role:      domain.RoleUser,
		SessionID: "mock_session_id",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(15 * time.Minute).Unix(),
	}
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
