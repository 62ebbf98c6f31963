package mocks

import (
	"context"
	"time"

	"github.com/you/authstarter/domain"
)

// MockOneTimeTokenRepository implements domain.OneTimeTokenRepository for
// testing. The same mock serves verification and password-reset stores.
type MockOneTimeTokenRepository struct {
	CreateFunc            func(ctx context.Context, token *domain.OneTimeToken) error
	FindByHashFunc        func(ctx context.Context, tokenHash string) (*domain.OneTimeToken, error)
	MarkConsumedFunc      func(ctx context.Context, tokenID uint, at time.Time) error
	ConsumeAllForUserFunc func(ctx context.Context, userID uint, at time.Time) error
	DeleteExpiredFunc     func(ctx context.Context, before time.Time) (int64, error)
}

// NewMockOneTimeTokenRepository creates a new MockOneTimeTokenRepository with default behaviors
func NewMockOneTimeTokenRepository() *MockOneTimeTokenRepository {
	return &MockOneTimeTokenRepository{}
}

// Create stores a new token
func (m *MockOneTimeTokenRepository) Create(ctx context.Context, token *domain.OneTimeToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	// Default behavior: success, assign an id
	if token.ID == 0 {
		token.ID = 1
	}
	return nil
}

// FindByHash looks a token up by its stored hash
func (m *MockOneTimeTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*domain.OneTimeToken, error) {
	if m.FindByHashFunc != nil {
		return m.FindByHashFunc(ctx, tokenHash)
	}
	// Default behavior: not found
	return nil, domain.ErrTokenNotFound
}

// MarkConsumed spends a token
func (m *MockOneTimeTokenRepository) MarkConsumed(ctx context.Context, tokenID uint, at time.Time) error {
	if m.MarkConsumedFunc != nil {
		return m.MarkConsumedFunc(ctx, tokenID, at)
	}
	// Default behavior: success
	return nil
}

// ConsumeAllForUser spends every unconsumed token of a user
func (m *MockOneTimeTokenRepository) ConsumeAllForUser(ctx context.Context, userID uint, at time.Time) error {
	if m.ConsumeAllForUserFunc != nil {
		return m.ConsumeAllForUserFunc(ctx, userID, at)
	}
	// Default behavior: success
	return nil
}

// DeleteExpired removes expired tokens
func (m *MockOneTimeTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, before)
	}
	// Default behavior: nothing deleted
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.OneTimeTokenRepository = (*MockOneTimeTokenRepository)(nil)
