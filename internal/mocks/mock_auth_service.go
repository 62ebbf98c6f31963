package mocks

import (
	"context"
	"time"

	"github.com/you/authstarter/domain"
)

// MockAuthService implements domain.AuthService for testing
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, email, password string) (*domain.RegisterResult, error)
	LoginFunc                func(ctx context.Context, email, password, ipAddress string) (*domain.TokenPair, error)
	RefreshFunc              func(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	LogoutFunc               func(ctx context.Context, refreshToken string)
	LogoutAllFunc            func(ctx context.Context, userID uint) (int64, error)
	VerifyEmailFunc          func(ctx context.Context, rawToken string) error
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, rawToken, newPassword string) error
	ListSessionsFunc         func(ctx context.Context, userID uint, currentSessionID string) ([]*domain.SessionInfo, error)
	GetUserProfileFunc       func(ctx context.Context, userID uint) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Register registers a new user
func (m *MockAuthService) Register(ctx context.Context, email, password string) (*domain.RegisterResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	// Default behavior: verification not required, tokens issued
	return &domain.RegisterResult{
		User: &domain.User{ID: 1, Email: email, Role: domain.RoleUser},
		Tokens: &domain.TokenPair{
			AccessToken:  "mock_access_token",
			RefreshToken: "mock_refresh_token",
		},
	}, nil
}

// Login authenticates a user
func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*domain.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, ipAddress)
	}
	// Default behavior: success
	return &domain.TokenPair{
		AccessToken:  "mock_access_token",
		RefreshToken: "mock_refresh_token",
	}, nil
}

// Refresh rotates a refresh token
func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	// Default behavior: new pair
	return &domain.TokenPair{
		AccessToken:  "new_mock_access_token",
		RefreshToken: "new_mock_refresh_token",
	}, nil
}

// Logout invalidates the token's session, best-effort
func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, refreshToken)
	}
}

// LogoutAll invalidates all of a user's sessions
func (m *MockAuthService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, userID)
	}
	// Default behavior: one session invalidated
	return 1, nil
}

// VerifyEmail consumes a verification token
func (m *MockAuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, rawToken)
	}
	// Default behavior: success
	return nil
}

// RequestPasswordReset issues a reset token
func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	// Default behavior: success
	return nil
}

// ResetPassword consumes a reset token
func (m *MockAuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, rawToken, newPassword)
	}
	// Default behavior: success
	return nil
}

// ListSessions lists a user's sessions
func (m *MockAuthService) ListSessions(ctx context.Context, userID uint, currentSessionID string) ([]*domain.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, userID, currentSessionID)
	}
	// Default behavior: one current session
	return []*domain.SessionInfo{
		{ID: currentSessionID, Valid: true, Current: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}, nil
}

// GetUserProfile retrieves a user's profile
func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	// Default behavior: a plain verified user
	now := time.Now()
	return &domain.User{
		ID:              userID,
		Email:           "test@example.com",
		Role:            domain.RoleUser,
		EmailVerifiedAt: &now,
		CreatedAt:       now.Add(-24 * time.Hour),
		UpdatedAt:       now,
	}, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
