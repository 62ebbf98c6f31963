package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/you/authstarter/domain"
)

// AdminHandlers handles administrative requests. Routes are guarded by the
// casbin middleware with the role_admin policy.
type AdminHandlers struct {
	userRepo  domain.UserRepository
	policySvc domain.PolicyService
}

// NewAdminHandlers creates new admin handlers.
func NewAdminHandlers(userRepo domain.UserRepository, policySvc domain.PolicyService) *AdminHandlers {
	return &AdminHandlers{userRepo: userRepo, policySvc: policySvc}
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// SetUserRole assigns a role to the user identified in the path.
func (h *AdminHandlers) SetUserRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION", "message": "invalid user id"},
		})
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.userRepo.UpdateRole(c.Request.Context(), uint(id), req.Role); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{"code": "USER_NOT_FOUND", "message": "user not found"},
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"user_id": uint(id), "role": req.Role},
	})
}

// PolicyRequest identifies a single policy rule. Role carries the full
// casbin subject, e.g. "role_admin".
type PolicyRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// AddPolicy installs a new policy rule.
func (h *AdminHandlers) AddPolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.policySvc.AddPolicy(req.Role, req.Resource, req.Action); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{"role": req.Role, "resource": req.Resource, "action": req.Action},
	})
}

// RemovePolicy deletes an existing policy rule.
func (h *AdminHandlers) RemovePolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.policySvc.RemovePolicy(req.Role, req.Resource, req.Action); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPolicies returns the enforcer's current policy rules.
func (h *AdminHandlers) ListPolicies(c *gin.Context) {
	policies := h.policySvc.GetPolicies()

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"policies": policies,
			"count":    len(policies),
		},
	})
}
