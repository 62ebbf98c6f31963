package mocks

import (
	"sync"

	"github.com/you/authstarter/domain"
)

// SentEmail records one dispatched message.
type SentEmail struct {
	Kind     string
	To       string
	RawToken string
}

// MockEmailService implements domain.EmailService for testing. It records
// every send under a mutex because the auth service dispatches emails from
// goroutines.
type MockEmailService struct {
	SendVerificationEmailFunc  func(to, rawToken string) error
	SendPasswordResetEmailFunc func(to, rawToken string) error

	mu   sync.Mutex
	sent []SentEmail
}

// NewMockEmailService creates a new MockEmailService with default behaviors
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

// SendVerificationEmail records a verification email
func (m *MockEmailService) SendVerificationEmail(to, rawToken string) error {
	if m.SendVerificationEmailFunc != nil {
		return m.SendVerificationEmailFunc(to, rawToken)
	}
	m.record(SentEmail{Kind: "verification", To: to, RawToken: rawToken})
	return nil
}

// SendPasswordResetEmail records a password reset email
func (m *MockEmailService) SendPasswordResetEmail(to, rawToken string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(to, rawToken)
	}
	m.record(SentEmail{Kind: "password_reset", To: to, RawToken: rawToken})
	return nil
}

// Sent returns a copy of the recorded sends.
func (m *MockEmailService) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *MockEmailService) record(e SentEmail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
}

// Compile-time interface compliance verification
var _ domain.EmailService = (*MockEmailService)(nil)
