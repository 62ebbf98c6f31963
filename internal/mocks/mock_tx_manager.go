package mocks

import (
	"context"

	"github.com/you/authstarter/domain"
)

// MockTxManager implements domain.TxManager for testing
type MockTxManager struct {
	WithinTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewMockTxManager creates a new MockTxManager with default behaviors
func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithinTransaction runs fn; the default just calls it with the same context,
// which is exactly what service tests need.
func (m *MockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithinTransactionFunc != nil {
		return m.WithinTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// Compile-time interface compliance verification
var _ domain.TxManager = (*MockTxManager)(nil)
