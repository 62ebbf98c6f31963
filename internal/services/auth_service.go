package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/you/authstarter/domain"
)

// AuthConfig carries the policy knobs of the auth service.
type AuthConfig struct {
	EmailVerificationRequired bool
	VerificationTTL           time.Duration
	PasswordResetTTL          time.Duration
	LoginMaxAttempts          int
	LoginLockout              time.Duration
	LoginAttemptWindow        time.Duration
}

// AuthServiceImpl implements domain.AuthService. All stores are injected; no
// ambient global state so the service can be tested with plain mocks.
type AuthServiceImpl struct {
	userRepo           domain.UserRepository
	sessionRepo        domain.SessionRepository
	verificationTokens domain.OneTimeTokenRepository
	resetTokens        domain.OneTimeTokenRepository
	attempts           domain.LoginAttemptRepository
	passwordSvc        domain.PasswordService
	tokenSvc           domain.TokenService
	hasher             domain.TokenHasher
	emailSvc           domain.EmailService
	tx                 domain.TxManager
	logger             zerolog.Logger
	config             AuthConfig
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	verificationTokens domain.OneTimeTokenRepository,
	resetTokens domain.OneTimeTokenRepository,
	attempts domain.LoginAttemptRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	hasher domain.TokenHasher,
	emailSvc domain.EmailService,
	tx domain.TxManager,
	logger zerolog.Logger,
	config AuthConfig,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:           userRepo,
		sessionRepo:        sessionRepo,
		verificationTokens: verificationTokens,
		resetTokens:        resetTokens,
		attempts:           attempts,
		passwordSvc:        passwordSvc,
		tokenSvc:           tokenSvc,
		hasher:             hasher,
		emailSvc:           emailSvc,
		tx:                 tx,
		logger:             logger,
		config:             config,
	}
}

// NormalizeEmail lowercases and trims an email address for storage and
// lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register implements domain.AuthService. There is no existence pre-check:
// the insert runs and a duplicate-key error from the store is mapped to
// EMAIL_TAKEN, closing the check-then-insert race.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (*domain.RegisterResult, error) {
	email = NormalizeEmail(email)

	passwordHash, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if s.config.EmailVerificationRequired {
		user := &domain.User{
			Email:        email,
			PasswordHash: passwordHash,
			Role:         domain.RoleUser,
		}
		var rawToken string
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.userRepo.Create(ctx, user); err != nil {
				if errors.Is(err, domain.ErrDuplicateEmail) {
					return domain.ErrEmailTaken
				}
				return fmt.Errorf("failed to create user: %w", err)
			}
			rawToken, err = s.issueOneTimeToken(ctx, s.verificationTokens, user.ID, s.config.VerificationTTL)
			return err
		})
		if err != nil {
			return nil, err
		}

		s.dispatchEmail("verification", user.Email, func() error {
			return s.emailSvc.SendVerificationEmail(user.Email, rawToken)
		})

		return &domain.RegisterResult{User: user, EmailVerificationRequired: true}, nil
	}

	now := time.Now()
	user := &domain.User{
		Email:           email,
		PasswordHash:    passwordHash,
		Role:            domain.RoleUser,
		EmailVerifiedAt: &now,
	}
	var tokens *domain.TokenPair
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return domain.ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		tokens, err = s.createSession(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &domain.RegisterResult{User: user, Tokens: tokens}, nil
}

// Login implements domain.AuthService. The failure path is deliberately
// uniform: unknown email, wrong password and unverified account all produce
// INVALID_CREDENTIALS so accounts cannot be enumerated.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ipAddress string) (*domain.TokenPair, error) {
	email = NormalizeEmail(email)
	now := time.Now()

	attempt, err := s.checkThrottle(ctx, email, ipAddress, now)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email, ipAddress, nil, attempt, now)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// An unverified account is indistinguishable from a wrong password.
	verifiedOK := !s.config.EmailVerificationRequired || user.Verified()
	if !s.passwordSvc.Verify(user.PasswordHash, password) || !verifiedOK {
		s.recordFailure(ctx, email, ipAddress, &user.ID, attempt, now)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.attempts.Delete(ctx, email, ipAddress); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to clear login attempts")
	}

	return s.createSession(ctx, user)
}

// Refresh implements domain.AuthService: rotation with reuse detection.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshRequired
	}

	// Recover a fallback session id before verification so an expired token
	// can still bury its own session.
	fallbackSessionID := ""
	if unverified, err := s.tokenSvc.DecodeUnverified(refreshToken); err == nil {
		fallbackSessionID = unverified.SessionID
	}

	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			if fallbackSessionID != "" {
				if err := s.sessionRepo.Invalidate(ctx, fallbackSessionID); err != nil {
					s.logger.Warn().Err(err).Str("session_id", fallbackSessionID).
						Msg("failed to invalidate session for expired refresh token")
				}
			}
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.ErrSessionInvalid
	}

	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, err
	}
	if !session.Valid {
		return nil, domain.ErrSessionInvalid
	}

	// A verified token that no longer matches the stored hash was rotated
	// past: treat it as theft and revoke the user's entire session set.
	if !s.hasher.Equals(refreshToken, session.RefreshTokenHash) {
		if _, err := s.sessionRepo.InvalidateAllForUser(ctx, session.UserID); err != nil {
			return nil, err
		}
		s.logger.Warn().Uint("user_id", session.UserID).Str("session_id", session.ID).
			Msg("refresh token reuse detected, all sessions invalidated")
		return nil, domain.ErrRefreshReuse
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	newRefreshToken, err := s.tokenSvc.GenerateRefreshToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.sessionRepo.RotateHash(ctx, session.ID, s.hasher.Hash(newRefreshToken)); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, err
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Logout implements domain.AuthService. Best effort and idempotent: any
// verification failure is swallowed, and an expired token still gets its
// session invalidated through the unverified claims.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	sessionID := ""
	if claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken); err == nil {
		sessionID = claims.SessionID
	} else if claims, err := s.tokenSvc.DecodeUnverified(refreshToken); err == nil {
		sessionID = claims.SessionID
	}
	if sessionID == "" {
		return
	}

	if err := s.sessionRepo.Invalidate(ctx, sessionID); err != nil {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("logout: session invalidation failed")
	}
}

// LogoutAll implements domain.AuthService.
func (s *AuthServiceImpl) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	return s.sessionRepo.InvalidateAllForUser(ctx, userID)
}

// ListSessions implements domain.AuthService. Stored hashes never make it
// into the returned view.
func (s *AuthServiceImpl) ListSessions(ctx context.Context, userID uint, currentSessionID string) ([]*domain.SessionInfo, error) {
	sessions, err := s.sessionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]*domain.SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, &domain.SessionInfo{
			ID:        session.ID,
			Valid:     session.Valid,
			Current:   session.ID == currentSessionID,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return infos, nil
}

// GetUserProfile implements domain.AuthService.
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// createSession mints a token pair bound to a fresh session and persists the
// refresh hash in the same insert.
func (s *AuthServiceImpl) createSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	sessionID := uuid.NewString()

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokenSvc.GenerateRefreshToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: s.hasher.Hash(refreshToken),
		Valid:            true,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// dispatchEmail sends mail on a detached goroutine so a slow transport never
// blocks or fails the request that triggered it.
func (s *AuthServiceImpl) dispatchEmail(kind, recipient string, send func() error) {
	go func() {
		if err := send(); err != nil {
			s.logger.Error().Err(err).
				Str("email_type", kind).
				Str("recipient", recipient).
				Msg("email dispatch failed")
		}
	}()
}
