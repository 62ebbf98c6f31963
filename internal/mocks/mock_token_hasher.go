package mocks

import "github.com/you/authstarter/domain"

// MockTokenHasher implements domain.TokenHasher for testing
type MockTokenHasher struct {
	HashFunc   func(token string) string
	EqualsFunc func(token, storedHash string) bool
}

// NewMockTokenHasher creates a new MockTokenHasher with default behaviors
func NewMockTokenHasher() *MockTokenHasher {
	return &MockTokenHasher{}
}

// Hash returns the storage form of a token
func (m *MockTokenHasher) Hash(token string) string {
	if m.HashFunc != nil {
		return m.HashFunc(token)
	}
	// Default behavior: transparent hash for testing
	return "hash_" + token
}

// Equals compares a raw token against a stored hash
func (m *MockTokenHasher) Equals(token, storedHash string) bool {
	if m.EqualsFunc != nil {
		return m.EqualsFunc(token, storedHash)
	}
	// Default behavior: match the transparent hash
	return storedHash == "hash_"+token
}

// Compile-time interface compliance verification
var _ domain.TokenHasher = (*MockTokenHasher)(nil)
