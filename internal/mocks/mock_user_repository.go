package mocks

import (
	"context"
	"time"

	"github.com/you/authstarter/domain"
)

// MockUserRepository implements domain.UserRepository for testing
type MockUserRepository struct {
	CreateFunc             func(ctx context.Context, user *domain.User) error
	FindByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc           func(ctx context.Context, id uint) (*domain.User, error)
	UpdatePasswordHashFunc func(ctx context.Context, userID uint, passwordHash string) error
	MarkEmailVerifiedFunc  func(ctx context.Context, userID uint, at time.Time) error
	UpdateRoleFunc         func(ctx context.Context, userID uint, role string) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success, assign an id
	if user.ID == 0 {
		user.ID = 1
	}
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// UpdatePasswordHash replaces the stored password hash
func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, userID, passwordHash)
	}
	// Default behavior: success
	return nil
}

// MarkEmailVerified sets the verification timestamp
func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, userID uint, at time.Time) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, userID, at)
	}
	// Default behavior: success
	return nil
}

// UpdateRole changes the user's role
func (m *MockUserRepository) UpdateRole(ctx context.Context, userID uint, role string) error {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, userID, role)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
