package domain

import "time"

// Roles assignable to a user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
type User struct {
	ID              uint
	Email           string
	PasswordHash    string
	Role            string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Verified reports whether the user's email has been confirmed.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// Session binds a user to the hash of the currently valid refresh token.
// The raw refresh token is never persisted; rotation replaces the hash.
type Session struct {
	ID               string
	UserID           uint
	RefreshTokenHash string
	Valid            bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OneTimeToken is a hashed single-use token (email verification or password
// reset) scoped to a user. It is spent either by consumption or by expiry,
// whichever comes first.
type OneTimeToken struct {
	ID         uint
	UserID     uint
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Consumed reports whether the token has already been used or invalidated.
func (t *OneTimeToken) Consumed() bool {
	return t.ConsumedAt != nil
}

// Expired reports whether the token's validity window has passed.
func (t *OneTimeToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// LoginAttempt tracks consecutive login failures for an (email, source
// address) pair and carries the lockout deadline once the threshold is hit.
type LoginAttempt struct {
	ID            uint
	Email         string
	IPAddress     string
	FailedCount   int
	FirstFailedAt time.Time
	LastFailedAt  time.Time
	LockedUntil   *time.Time
	UserID        *uint
}

// Locked reports whether the key is under an active lockout.
func (a *LoginAttempt) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// TokenPair is an access/refresh token set minted for one session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterResult is the outcome of a registration. Tokens are only present
// when email verification is not required by policy.
type RegisterResult struct {
	User                      *User
	EmailVerificationRequired bool
	Tokens                    *TokenPair
}

// SessionInfo is a session as exposed to its owner; the stored token hash
// never leaves the service layer.
type SessionInfo struct {
	ID        string
	Valid     bool
	Current   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenClaims are the claims carried by access and refresh tokens.
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
