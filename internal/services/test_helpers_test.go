package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/you/authstarter/domain"
	"github.com/you/authstarter/internal/mocks"
)

// authFixture bundles an auth service with all its mock collaborators so a
// test can override exactly the calls it cares about.
type authFixture struct {
	svc                domain.AuthService
	userRepo           *mocks.MockUserRepository
	sessionRepo        *mocks.MockSessionRepository
	verificationTokens *mocks.MockOneTimeTokenRepository
	resetTokens        *mocks.MockOneTimeTokenRepository
	attempts           *mocks.MockLoginAttemptRepository
	passwordSvc        *mocks.MockPasswordService
	tokenSvc           *mocks.MockTokenService
	hasher             *mocks.MockTokenHasher
	emailSvc           *mocks.MockEmailService
	tx                 *mocks.MockTxManager
	config             AuthConfig
}

func defaultTestAuthConfig() AuthConfig {
	return AuthConfig{
		EmailVerificationRequired: false,
		VerificationTTL:           time.Hour,
		PasswordResetTTL:          30 * time.Minute,
		LoginMaxAttempts:          5,
		LoginLockout:              15 * time.Minute,
		LoginAttemptWindow:        15 * time.Minute,
	}
}

func newAuthFixture(config AuthConfig) *authFixture {
	f := &authFixture{
		userRepo:           mocks.NewMockUserRepository(),
		sessionRepo:        mocks.NewMockSessionRepository(),
		verificationTokens: mocks.NewMockOneTimeTokenRepository(),
		resetTokens:        mocks.NewMockOneTimeTokenRepository(),
		attempts:           mocks.NewMockLoginAttemptRepository(),
		passwordSvc:        mocks.NewMockPasswordService(),
		tokenSvc:           mocks.NewMockTokenService(),
		hasher:             mocks.NewMockTokenHasher(),
		emailSvc:           mocks.NewMockEmailService(),
		tx:                 mocks.NewMockTxManager(),
		config:             config,
	}
	f.svc = NewAuthService(
		f.userRepo,
		f.sessionRepo,
		f.verificationTokens,
		f.resetTokens,
		f.attempts,
		f.passwordSvc,
		f.tokenSvc,
		f.hasher,
		f.emailSvc,
		f.tx,
		zerolog.Nop(),
		config,
	)
	return f
}

// validTestUser is a verified user matching the mock password service's
// transparent hash for "Passw0rd!".
func validTestUser() *domain.User {
	verifiedAt := time.Now().Add(-time.Hour)
	return &domain.User{
		ID:              1,
		Email:           "user@example.com",
		PasswordHash:    "hashed_Passw0rd!",
		Role:            domain.RoleUser,
		EmailVerifiedAt: &verifiedAt,
		CreatedAt:       time.Now().Add(-24 * time.Hour),
	}
}
