package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/authstarter/domain"
)

// SessionHandlers handles authenticated session and profile requests. All
// routes behind these handlers sit behind the JWT middleware, which stores
// user_id and session_id in the gin context.
type SessionHandlers struct {
	authSvc domain.AuthService
}

// NewSessionHandlers creates new session handlers.
func NewSessionHandlers(authSvc domain.AuthService) *SessionHandlers {
	return &SessionHandlers{authSvc: authSvc}
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListSessions returns the caller's sessions, newest first.
func (h *SessionHandlers) ListSessions(c *gin.Context) {
	userID := c.GetUint("user_id")
	sessionID := c.GetString("session_id")

	sessions, err := h.authSvc.ListSessions(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse{
			ID:        s.ID,
			Current:   s.Current,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"sessions": out,
			"count":    len(out),
		},
	})
}

// LogoutAll invalidates every session belonging to the caller.
func (h *SessionHandlers) LogoutAll(c *gin.Context) {
	userID := c.GetUint("user_id")

	if _, err := h.authSvc.LogoutAll(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me returns the caller's profile.
func (h *SessionHandlers) Me(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":             user.ID,
			"email":          user.Email,
			"role":           user.Role,
			"email_verified": user.Verified(),
			"created_at":     user.CreatedAt,
		},
	})
}
