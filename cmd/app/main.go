package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"plew-backend/internal/config"
	"plew-backend/internal/controller"
	"plew-backend/internal/db"
	"plew-backend/internal/llm"
	"plew-backend/internal/model"
	"plew-backend/internal/repository"
	"plew-backend/internal/search"
	"plew-backend/internal/service"
	logger "plew-backend/pkg/logging"
	"plew-backend/pkg/middleware"
	"plew-backend/utilities"
)

func main() {
	seed := flag.Bool("seed", false, "push the bundled sample questions to the search index and exit")
	flag.Parse()

	printStartUpBanner()

	// .env first so the XML loader can pick up secret overrides.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init("logs", cfg.RequestDump)
	utilities.InitSigningKeys(cfg.Authentication.AccessSecret, cfg.Authentication.RefreshSecret)

	// Question index collaborator.
	questionIndex := search.NewQuestionIndex(cfg.Search.AppID, cfg.Search.APIKey, cfg.Search.IndexName)

	if *seed {
		runSeed(questionIndex)
		return
	}

	// Initialize DB using the loaded config.
	db.InitDBFromConfig(cfg)
	// Run migrations.
	if err := db.GetDB().AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.UsedQuestion{},
		&model.CompletedPack{},
		&model.UserAnswer{},
		&model.UsageRecord{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Create repositories.
	userRepo := repository.NewUserRepository(db.GetDB())
	profileRepo := repository.NewProfileRepository(db.GetDB())
	usedRepo := repository.NewUsedQuestionRepository(db.GetDB())
	packRepo := repository.NewCompletedPackRepository(db.GetDB())
	usageRepo := repository.NewUsageRepository(db.GetDB())

	// Create services.
	authService := service.NewAuthService(userRepo)
	accessService := service.NewAccessService(profileRepo)
	packService := service.NewPackService(accessService, usedRepo, questionIndex)
	completionService := service.NewCompletionService(packRepo, usedRepo, accessService)
	usageService := service.NewUsageService(usageRepo)
	chatClient := llm.NewChatClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	chatService := service.NewChatService(chatClient, usageService)
	billingService := service.NewBillingService(accessService, &cfg.Billing)
	reportService := service.NewReportService(packRepo)

	registerEventListeners()

	// Initialize Gin router.
	r := gin.Default()

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}
	r.Use(utilities.AuthMiddleware())

	controller.RegisterRoutes(
		r,
		authService,
		accessService,
		packService,
		completionService,
		packRepo,
		reportService,
		chatService,
		usageService,
		billingService,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// registerEventListeners wires the fire-and-forget listeners. These only
// observe; nothing here may affect request outcomes.
func registerEventListeners() {
	utilities.GlobalEventBus.Subscribe(utilities.EventPackCompleted, func(data interface{}) {
		if id, ok := data.(uint); ok {
			logger.Info("pack %d completed", id)
		}
	})
	utilities.GlobalEventBus.Subscribe(utilities.EventUserUpgraded, func(data interface{}) {
		if email, ok := data.(string); ok {
			logger.Info("premium upgrade processed for %s", email)
		}
	})
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("PLEW", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("PLEW API (v%s)\n\n", "1.0.0")
}
