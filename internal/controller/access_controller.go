package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plew-backend/internal/service"
)

type AccessController struct {
	accessService service.AccessService
}

func NewAccessController(accessService service.AccessService) *AccessController {
	return &AccessController{accessService: accessService}
}

// GetAccess handles GET /access
func (ac *AccessController) GetAccess(c *gin.Context) {
	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	profile, status, err := ac.accessService.CheckAccess(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check access"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"access":  status,
	})
}
