package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/authstarter/domain"
)

// AuthHandlers handles authentication HTTP requests.
type AuthHandlers struct {
	authSvc domain.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authSvc domain.AuthService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password_strength"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh or logout request. The token is
// deliberately not `required`: the service distinguishes an empty token
// (REFRESH_REQUIRED) from a bad one.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// VerifyEmailRequest carries a raw verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// PasswordResetRequest asks for a reset token by email.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries a raw reset token and the new password.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,password_strength"`
}

// Register handles user registration.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{
		"email_verification_required": result.EmailVerificationRequired,
		"user": gin.H{
			"id":    result.User.ID,
			"email": result.User.Email,
			"role":  result.User.Role,
		},
	}
	if result.Tokens != nil {
		body["access_token"] = result.Tokens.AccessToken
		body["refresh_token"] = result.Tokens.RefreshToken
		body["token_type"] = "Bearer"
	}

	c.JSON(http.StatusCreated, gin.H{"data": body})
}

// Login handles user login.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	tokens, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"token_type":    "Bearer",
		},
	})
}

// Refresh rotates a refresh token.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	tokens, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"token_type":    "Bearer",
		},
	})
}

// Logout invalidates the session bound to the presented refresh token. It
// never fails: repeated or garbage calls get the same 204.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req RefreshRequest
	// Malformed bodies are treated like a missing token.
	_ = c.ShouldBindJSON(&req)

	h.authSvc.Logout(c.Request.Context(), req.RefreshToken)
	c.Status(http.StatusNoContent)
}

// VerifyEmail consumes a verification token.
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.authSvc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestPasswordReset issues a reset token. The response is identical
// whether or not the email belongs to an account.
func (h *AuthHandlers) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

// ResetPassword consumes a reset token and replaces the password.
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
