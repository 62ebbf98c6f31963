package mocks

import (
	"context"
	"time"

	"github.com/you/authstarter/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc               func(ctx context.Context, session *domain.Session) error
	FindByIDFunc             func(ctx context.Context, sessionID string) (*domain.Session, error)
	FindByUserIDFunc         func(ctx context.Context, userID uint) ([]*domain.Session, error)
	RotateHashFunc           func(ctx context.Context, sessionID, newHash string) error
	InvalidateFunc           func(ctx context.Context, sessionID string) error
	InvalidateAllForUserFunc func(ctx context.Context, userID uint) (int64, error)
	DeleteStaleFunc          func(ctx context.Context, updatedBefore time.Time) (int64, error)
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Create creates a new session
func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	// Default behavior: success
	return nil
}

// FindByID finds a session by its id
func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

// FindByUserID lists a user's sessions
func (m *MockSessionRepository) FindByUserID(ctx context.Context, userID uint) ([]*domain.Session, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	// Default behavior: no sessions
	return nil, nil
}

// RotateHash replaces the stored refresh-token hash
func (m *MockSessionRepository) RotateHash(ctx context.Context, sessionID, newHash string) error {
	if m.RotateHashFunc != nil {
		return m.RotateHashFunc(ctx, sessionID, newHash)
	}
	// Default behavior: success
	return nil
}

// Invalidate clears a session's validity
func (m *MockSessionRepository) Invalidate(ctx context.Context, sessionID string) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, sessionID)
	}
	// Default behavior: success
	return nil
}

// InvalidateAllForUser invalidates every session of a user
func (m *MockSessionRepository) InvalidateAllForUser(ctx context.Context, userID uint) (int64, error) {
	if m.InvalidateAllForUserFunc != nil {
		return m.InvalidateAllForUserFunc(ctx, userID)
	}
	// Default behavior: nothing invalidated
	return 0, nil
}

// DeleteStale removes invalid or stale sessions
func (m *MockSessionRepository) DeleteStale(ctx context.Context, updatedBefore time.Time) (int64, error) {
	if m.DeleteStaleFunc != nil {
		return m.DeleteStaleFunc(ctx, updatedBefore)
	}
	// Default behavior: nothing deleted
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
