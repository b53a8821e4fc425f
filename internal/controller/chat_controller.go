package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plew-backend/internal/service"
)

// ChatController handles tutor chat endpoints
type ChatController struct {
	chatService  service.ChatService
	usageService service.UsageService
}

func NewChatController(chatService service.ChatService, usageService service.UsageService) *ChatController {
	return &ChatController{
		chatService:  chatService,
		usageService: usageService,
	}
}

// Chat handles POST /chat
func (cc *ChatController) Chat(c *gin.Context) {
	var input service.ChatInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	reply, err := cc.chatService.Chat(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrBudgetExceeded) {
			payload := gin.H{"error": "The tutor is taking a break. The service budget is used up for now."}
			if summary, sErr := cc.usageService.Summary(); sErr == nil {
				payload["remainingBudget"] = summary.RemainingBudget
			}
			c.JSON(http.StatusTooManyRequests, payload)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate response"})
		return
	}

	c.JSON(http.StatusOK, reply)
}
