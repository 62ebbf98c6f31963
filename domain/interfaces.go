package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error
	MarkEmailVerified(ctx context.Context, userID uint, at time.Time) error
	UpdateRole(ctx context.Context, userID uint, role string) error
}

// SessionRepository defines session data access operations.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	FindByUserID(ctx context.Context, userID uint) ([]*Session, error)
	// RotateHash atomically replaces the stored refresh-token hash.
	RotateHash(ctx context.Context, sessionID, newHash string) error
	// Invalidate clears the validity flag and the stored hash.
	Invalidate(ctx context.Context, sessionID string) error
	// InvalidateAllForUser invalidates every session owned by the user and
	// returns the number of rows affected.
	InvalidateAllForUser(ctx context.Context, userID uint) (int64, error)
	// DeleteStale removes invalid or long-untouched sessions.
	DeleteStale(ctx context.Context, updatedBefore time.Time) (int64, error)
}

// OneTimeTokenRepository defines data access for hashed single-use tokens.
// Two instances exist, one for email verification and one for password
// reset, backed by separate tables.
type OneTimeTokenRepository interface {
	Create(ctx context.Context, token *OneTimeToken) error
	FindByHash(ctx context.Context, tokenHash string) (*OneTimeToken, error)
	MarkConsumed(ctx context.Context, tokenID uint, at time.Time) error
	// ConsumeAllForUser marks every unconsumed token for the user consumed.
	ConsumeAllForUser(ctx context.Context, userID uint, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// LoginAttemptRepository defines data access for per (email, source address)
// failure tracking.
type LoginAttemptRepository interface {
	Find(ctx context.Context, email, ipAddress string) (*LoginAttempt, error)
	Upsert(ctx context.Context, attempt *LoginAttempt) error
	Delete(ctx context.Context, email, ipAddress string) error
	DeleteIdle(ctx context.Context, lastFailureBefore time.Time) (int64, error)
}

// TxManager runs a function within a storage transaction. Repository calls
// made with the context it passes participate in that transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthService defines the authentication business logic.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*RegisterResult, error)
	Login(ctx context.Context, email, password, ipAddress string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string)
	LogoutAll(ctx context.Context, userID uint) (int64, error)
	VerifyEmail(ctx context.Context, rawToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	ListSessions(ctx context.Context, userID uint, currentSessionID string) ([]*SessionInfo, error)
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
}

// PasswordService defines password hashing operations.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines bearer-token codec operations.
type TokenService interface {
	GenerateAccessToken(userID uint, role string, sessionID string) (string, error)
	GenerateRefreshToken(userID uint, role string, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
	// DecodeUnverified extracts claims without checking signature or expiry.
	// Used only to recover a session id from an otherwise-rejected token.
	DecodeUnverified(token string) (*TokenClaims, error)
}

// TokenHasher defines one-way hashing of opaque bearer tokens for storage.
type TokenHasher interface {
	Hash(token string) string
	// Equals compares a raw token against a stored hash in constant time.
	Equals(token, storedHash string) bool
}

// EmailService defines outbound email dispatch. Implementations complete
// synchronously; callers decide whether to detach.
type EmailService interface {
	SendVerificationEmail(to, rawToken string) error
	SendPasswordResetEmail(to, rawToken string) error
}

// PolicyService defines authorization policy operations.
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer is the subset of the Casbin enforcer the service layer uses.
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
