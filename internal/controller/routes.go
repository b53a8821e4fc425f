package controller

import (
	"github.com/gin-gonic/gin"

	"plew-backend/internal/service"
	"plew-backend/utilities"
)

func RegisterRoutes(
	r *gin.Engine,
	authService service.AuthService,
	accessService service.AccessService,
	packService service.PackService,
	completionService service.CompletionService,
	packRepo packReader,
	reportService service.ReportService,
	chatService service.ChatService,
	usageService service.UsageService,
	billingService service.BillingService,
) {
	// Auth routes.
	authCtrl := NewAuthController(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authCtrl.Register)
		authRoutes.POST("/login", authCtrl.Login)
		authRoutes.POST("/refresh", authCtrl.Refresh)
	}

	// Access query.
	accessCtrl := NewAccessController(accessService)
	r.GET("/access", accessCtrl.GetAccess)

	// Pack routes.
	packCtrl := NewPackController(packService, completionService, packRepo, reportService)
	packRoutes := r.Group("/packs")
	{
		packRoutes.POST("", packCtrl.CreatePack)
		packRoutes.POST("/complete", packCtrl.RecordCompletion)
		packRoutes.GET("/completed", packCtrl.GetCompletedPacks)
		packRoutes.GET("/completed/:id", packCtrl.GetCompletedPack)
		packRoutes.GET("/report", packCtrl.DownloadReport)
	}

	// Tutor chat, rate limited per identity.
	chatCtrl := NewChatController(chatService, usageService)
	chatLimiter := utilities.NewRateLimiter(1, 5)
	r.POST("/chat", chatLimiter.Middleware(), chatCtrl.Chat)

	// Usage query.
	usageCtrl := NewUsageController(usageService)
	r.GET("/usage", usageCtrl.GetUsage)

	// Billing routes. The webhook is public; everything else needs a session.
	billingCtrl := NewBillingController(billingService)
	billingRoutes := r.Group("/billing")
	{
		billingRoutes.POST("/checkout", billingCtrl.CreateCheckoutSession)
		billingRoutes.POST("/webhook", billingCtrl.Webhook)
	}
}
