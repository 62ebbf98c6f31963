package mocks

import (
	"context"
	"time"

	"github.com/you/authstarter/domain"
)

// MockLoginAttemptRepository implements domain.LoginAttemptRepository for testing
type MockLoginAttemptRepository struct {
	FindFunc       func(ctx context.Context, email, ipAddress string) (*domain.LoginAttempt, error)
	UpsertFunc     func(ctx context.Context, attempt *domain.LoginAttempt) error
	DeleteFunc     func(ctx context.Context, email, ipAddress string) error
	DeleteIdleFunc func(ctx context.Context, lastFailureBefore time.Time) (int64, error)
}

// NewMockLoginAttemptRepository creates a new MockLoginAttemptRepository with default behaviors
func NewMockLoginAttemptRepository() *MockLoginAttemptRepository {
	return &MockLoginAttemptRepository{}
}

// Find looks up the attempt record for an (email, ip) pair
func (m *MockLoginAttemptRepository) Find(ctx context.Context, email, ipAddress string) (*domain.LoginAttempt, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, email, ipAddress)
	}
	// Default behavior: no record
	return nil, domain.ErrAttemptNotFound
}

// Upsert creates or replaces an attempt record
func (m *MockLoginAttemptRepository) Upsert(ctx context.Context, attempt *domain.LoginAttempt) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, attempt)
	}
	// Default behavior: success
	return nil
}

// Delete removes the attempt record for an (email, ip) pair
func (m *MockLoginAttemptRepository) Delete(ctx context.Context, email, ipAddress string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, email, ipAddress)
	}
	// Default behavior: success
	return nil
}

// DeleteIdle removes long-idle records
func (m *MockLoginAttemptRepository) DeleteIdle(ctx context.Context, lastFailureBefore time.Time) (int64, error) {
	if m.DeleteIdleFunc != nil {
		return m.DeleteIdleFunc(ctx, lastFailureBefore)
	}
	// Default behavior: nothing deleted
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.LoginAttemptRepository = (*MockLoginAttemptRepository)(nil)
