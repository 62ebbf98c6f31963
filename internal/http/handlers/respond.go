package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/authstarter/domain"
)

// respondError renders a typed domain error with its own status and code.
// Anything else becomes a generic 500 so infrastructure details never leak.
func respondError(c *gin.Context, err error) {
	if de, ok := domain.AsDomainError(err); ok {
		c.JSON(de.Status, gin.H{
			"error": gin.H{
				"code":    de.Code,
				"message": de.Message,
			},
		})
		return
	}

	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL",
			"message": "internal server error",
		},
	})
}

// respondValidationError renders a request-binding failure.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"code":    "VALIDATION",
			"message": err.Error(),
		},
	})
}
