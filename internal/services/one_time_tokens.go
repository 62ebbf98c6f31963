package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/you/authstarter/domain"
)

// oneTimeTokenBytes is the entropy of a raw verification/reset token.
const oneTimeTokenBytes = 32

// issueOneTimeToken invalidates any live tokens for the user and stores the
// hash of a freshly generated one. Only the raw token is returned, for
// out-of-band delivery; it is never persisted.
func (s *AuthServiceImpl) issueOneTimeToken(ctx context.Context, repo domain.OneTimeTokenRepository, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	if err := repo.ConsumeAllForUser(ctx, userID, now); err != nil {
		return "", fmt.Errorf("failed to invalidate prior tokens: %w", err)
	}

	raw, err := generateOneTimeToken()
	if err != nil {
		return "", err
	}

	token := &domain.OneTimeToken{
		UserID:    userID,
		TokenHash: s.hasher.Hash(raw),
		ExpiresAt: now.Add(ttl),
	}
	if err := repo.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return raw, nil
}

// VerifyEmail implements domain.AuthService. A second use of the same token
// always fails because consumption happened on first use; re-verifying an
// already-verified user through a fresh token is a no-op on the user row.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return domain.ErrVerificationInvalid
	}

	token, err := s.verificationTokens.FindByHash(ctx, s.hasher.Hash(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return domain.ErrVerificationInvalid
		}
		return err
	}
	if token.Consumed() {
		return domain.ErrVerificationInvalid
	}

	now := time.Now()
	if token.Expired(now) {
		// Spend the token so the same string cannot be retried.
		if err := s.verificationTokens.MarkConsumed(ctx, token.ID, now); err != nil {
			s.logger.Warn().Err(err).Uint("token_id", token.ID).Msg("failed to consume expired verification token")
		}
		return domain.ErrVerificationExpired
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.MarkEmailVerified(ctx, token.UserID, now); err != nil {
			return fmt.Errorf("failed to mark user verified: %w", err)
		}
		if err := s.verificationTokens.MarkConsumed(ctx, token.ID, now); err != nil {
			return fmt.Errorf("failed to consume verification token: %w", err)
		}
		return s.verificationTokens.ConsumeAllForUser(ctx, token.UserID, now)
	})
}

// RequestPasswordReset implements domain.AuthService. The response is
// identical whether or not the email maps to a user; for unknown emails no
// token is issued and no mail is sent.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	var rawToken string
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rawToken, err = s.issueOneTimeToken(ctx, s.resetTokens, user.ID, s.config.PasswordResetTTL)
		return err
	})
	if err != nil {
		return err
	}

	s.dispatchEmail("password-reset", user.Email, func() error {
		return s.emailSvc.SendPasswordResetEmail(user.Email, rawToken)
	})

	return nil
}

// ResetPassword implements domain.AuthService. A successful reset replaces
// the password hash and force-logs-out every session the user has.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return domain.ErrResetInvalid
	}

	token, err := s.resetTokens.FindByHash(ctx, s.hasher.Hash(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return domain.ErrResetInvalid
		}
		return err
	}
	if token.Consumed() {
		return domain.ErrResetInvalid
	}

	now := time.Now()
	if token.Expired(now) {
		if err := s.resetTokens.MarkConsumed(ctx, token.ID, now); err != nil {
			s.logger.Warn().Err(err).Uint("token_id", token.ID).Msg("failed to consume expired reset token")
		}
		return domain.ErrResetExpired
	}

	passwordHash, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.resetTokens.MarkConsumed(ctx, token.ID, now); err != nil {
			return fmt.Errorf("failed to consume reset token: %w", err)
		}
		if err := s.resetTokens.ConsumeAllForUser(ctx, token.UserID, now); err != nil {
			return err
		}
		if err := s.userRepo.UpdatePasswordHash(ctx, token.UserID, passwordHash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if _, err := s.sessionRepo.InvalidateAllForUser(ctx, token.UserID); err != nil {
			return fmt.Errorf("failed to invalidate sessions: %w", err)
		}
		return nil
	})
}

// generateOneTimeToken returns a hex-encoded high-entropy random token.
func generateOneTimeToken() (string, error) {
	buf := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
