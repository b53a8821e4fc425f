package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plew-backend/internal/service"
)

type UsageController struct {
	usageService service.UsageService
}

func NewUsageController(usageService service.UsageService) *UsageController {
	return &UsageController{usageService: usageService}
}

// GetUsage handles GET /usage
func (uc *UsageController) GetUsage(c *gin.Context) {
	summary, err := uc.usageService.Summary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load usage"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
