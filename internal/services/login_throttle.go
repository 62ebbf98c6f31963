package services

import (
	"context"
	"errors"
	"time"

	"github.com/you/authstarter/domain"
)

// checkThrottle enforces the lockout for an (email, source address) key and
// lazily clears records that are stale or whose lock has expired. It returns
// the surviving attempt record, or nil when the key is untracked.
func (s *AuthServiceImpl) checkThrottle(ctx context.Context, email, ipAddress string, now time.Time) (*domain.LoginAttempt, error) {
	attempt, err := s.attempts.Find(ctx, email, ipAddress)
	if err != nil {
		if errors.Is(err, domain.ErrAttemptNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if attempt.Locked(now) {
		return nil, domain.ErrLoginLocked
	}

	// A record that was locked (lock now lapsed) or whose last failure fell
	// outside the attempt window no longer counts against the caller.
	if attempt.LockedUntil != nil || now.Sub(attempt.LastFailedAt) > s.config.LoginAttemptWindow {
		if err := s.attempts.Delete(ctx, email, ipAddress); err != nil {
			s.logger.Warn().Err(err).Str("email", email).Msg("failed to reset stale login attempts")
		}
		return nil, nil
	}

	return attempt, nil
}

// recordFailure advances the failure counter for the key and arms the lock
// when the configured maximum is reached. Tracker errors are logged, never
// surfaced: the caller is already returning INVALID_CREDENTIALS and the
// tracker must err toward allowing attempts, not toward failing requests.
func (s *AuthServiceImpl) recordFailure(ctx context.Context, email, ipAddress string, userID *uint, prior *domain.LoginAttempt, now time.Time) {
	attempt := prior
	if attempt == nil {
		attempt = &domain.LoginAttempt{
			Email:         email,
			IPAddress:     ipAddress,
			FirstFailedAt: now,
		}
	}

	attempt.FailedCount++
	attempt.LastFailedAt = now
	if userID != nil {
		attempt.UserID = userID
	}

	if attempt.FailedCount >= s.config.LoginMaxAttempts {
		lockedUntil := now.Add(s.config.LoginLockout)
		attempt.LockedUntil = &lockedUntil
	}

	if err := s.attempts.Upsert(ctx, attempt); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Str("ip", ipAddress).
			Msg("failed to record login failure")
	}
}
