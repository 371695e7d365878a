package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "shiftops/docs"

	"shiftops/internal/config"
	"shiftops/internal/handlers"
	"shiftops/internal/middleware"
	"shiftops/internal/pdf"
	"shiftops/internal/repositories"
	"shiftops/internal/routes"
	"shiftops/internal/scheduler"
	"shiftops/internal/services"
	"shiftops/internal/storage"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.Auth.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("db open failed: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close failed: %v", err)
		}
	}()

	// === Repos ===
	profileRepo := repositories.NewProfileRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	workflowRepo := repositories.NewWorkflowRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	completionRepo := repositories.NewCompletionRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	announcementRepo := repositories.NewAnnouncementRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.DryRun)

	profileService := services.NewProfileService(profileRepo, emailService, authService)
	workflowService := services.NewWorkflowService(workflowRepo, taskRepo, assignmentRepo, profileRepo)
	completionService := services.NewCompletionService(completionRepo, assignmentRepo, workflowRepo)
	transferService := services.NewTransferService(transferRepo, assignmentRepo, profileRepo)
	announcementService := services.NewAnnouncementService(announcementRepo)

	reportGen := pdf.NewReportGenerator(cfg.Files.RootDir)
	photoStore := storage.NewPhotoStore(cfg.Files.RootDir)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(
		profileService,
		authService,
		profileRepo,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	profileHandler := handlers.NewProfileHandler(profileService)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)
	assignmentHandler := handlers.NewAssignmentHandler(
		assignmentRepo,
		completionService,
		workflowService,
		profileService,
		reportGen,
		cfg.Files.RootDir,
	)
	completionHandler := handlers.NewCompletionHandler(completionService)
	transferHandler := handlers.NewTransferHandler(
		transferService,
		profileService,
		workflowService,
		assignmentRepo,
		emailService,
		telegramService,
	)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	photoHandler := handlers.NewPhotoHandler(photoStore)

	// === Scheduler ===
	if cfg.Scheduler.Enabled {
		occurrenceScheduler := scheduler.NewOccurrenceScheduler(workflowService, cfg.Scheduler.Spec)
		if err := occurrenceScheduler.Start(); err != nil {
			log.Fatal("scheduler start failed: ", err)
		}
		defer occurrenceScheduler.Stop()
	}

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Static photo evidence
	router.Static("/photos", photoStore.Dir())

	routes.SetupRoutes(
		router,
		authHandler,
		profileHandler,
		workflowHandler,
		assignmentHandler,
		completionHandler,
		transferHandler,
		announcementHandler,
		photoHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server stopped: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
