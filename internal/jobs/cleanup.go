package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/you/authstarter/domain"
)

// CleanupConfig controls the periodic storage sweep.
type CleanupConfig struct {
	Interval         time.Duration
	SessionRetention time.Duration
	// AttemptIdle is how long a login-attempt row may sit without a new
	// failure before the sweep may remove it. Rows under an active lock
	// are never touched.
	AttemptIdle time.Duration
}

// Cleanup periodically deletes invalidated or stale sessions, expired
// one-time tokens, and idle login-attempt rows. The auth service stays
// correct without it; the job only keeps the tables from growing forever.
type Cleanup struct {
	sessions           domain.SessionRepository
	verificationTokens domain.OneTimeTokenRepository
	resetTokens        domain.OneTimeTokenRepository
	attempts           domain.LoginAttemptRepository
	logger             zerolog.Logger
	config             CleanupConfig
}

func NewCleanup(
	sessions domain.SessionRepository,
	verificationTokens domain.OneTimeTokenRepository,
	resetTokens domain.OneTimeTokenRepository,
	attempts domain.LoginAttemptRepository,
	logger zerolog.Logger,
	config CleanupConfig,
) *Cleanup {
	return &Cleanup{
		sessions:           sessions,
		verificationTokens: verificationTokens,
		resetTokens:        resetTokens,
		attempts:           attempts,
		logger:             logger,
		config:             config,
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (j *Cleanup) Run(ctx context.Context) {
	if j.config.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Cleanup) sweep(ctx context.Context) {
	now := time.Now()

	sessions, err := j.sessions.DeleteStale(ctx, now.Add(-j.config.SessionRetention))
	if err != nil {
		j.logger.Error().Err(err).Msg("session sweep failed")
	}

	verification, err := j.verificationTokens.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error().Err(err).Msg("verification token sweep failed")
	}

	resets, err := j.resetTokens.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error().Err(err).Msg("reset token sweep failed")
	}

	attempts, err := j.attempts.DeleteIdle(ctx, now.Add(-j.config.AttemptIdle))
	if err != nil {
		j.logger.Error().Err(err).Msg("login attempt sweep failed")
	}

	j.logger.Info().
		Int64("sessions", sessions).
		Int64("verification_tokens", verification).
		Int64("reset_tokens", resets).
		Int64("login_attempts", attempts).
		Msg("cleanup sweep complete")
}
