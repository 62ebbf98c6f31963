package domain

import "errors"

// Error is a typed domain failure carrying a machine-readable code and the
// HTTP status the boundary layer should relay. Messages are intentionally
// generic for security-sensitive codes.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// AsDomainError unwraps err into a *Error if one is present in its chain.
func AsDomainError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Authentication errors
var (
	ErrEmailTaken         = &Error{Code: "EMAIL_TAKEN", Status: 409, Message: "email already registered"}
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Status: 401, Message: "invalid email or password"}
	ErrLoginLocked        = &Error{Code: "LOGIN_LOCKED", Status: 429, Message: "too many failed attempts, try again later"}
)

// Refresh errors
var (
	ErrRefreshRequired = &Error{Code: "REFRESH_REQUIRED", Status: 400, Message: "refresh token required"}
	ErrSessionInvalid  = &Error{Code: "SESSION_INVALID", Status: 401, Message: "session is invalid"}
	ErrSessionExpired  = &Error{Code: "SESSION_EXPIRED", Status: 401, Message: "session has expired"}
	ErrRefreshReuse    = &Error{Code: "REFRESH_REUSE", Status: 401, Message: "refresh token is no longer valid"}
)

// One-time token errors
var (
	ErrVerificationInvalid = &Error{Code: "EMAIL_VERIFICATION_INVALID", Status: 400, Message: "verification token is invalid"}
	ErrVerificationExpired = &Error{Code: "EMAIL_VERIFICATION_EXPIRED", Status: 400, Message: "verification token has expired"}
	ErrResetInvalid        = &Error{Code: "PASSWORD_RESET_INVALID", Status: 400, Message: "password reset token is invalid"}
	ErrResetExpired        = &Error{Code: "PASSWORD_RESET_EXPIRED", Status: 400, Message: "password reset token has expired"}
)

// Policy administration errors
var (
	ErrPolicyExists   = &Error{Code: "POLICY_EXISTS", Status: 409, Message: "policy rule already exists"}
	ErrPolicyNotFound = &Error{Code: "POLICY_NOT_FOUND", Status: 404, Message: "policy rule not found"}
)

// Token codec errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Store errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenNotFound   = errors.New("one-time token not found")
	ErrAttemptNotFound = errors.New("login attempt record not found")
	ErrDuplicateEmail  = errors.New("duplicate email")
)

// Authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInsufficientRole = errors.New("insufficient role permissions")
)
