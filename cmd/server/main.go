package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jhruby/digplan/internal/events"
	"github.com/jhruby/digplan/internal/handlers"
	"github.com/jhruby/digplan/internal/middleware"
	"github.com/jhruby/digplan/internal/repositories"
	"github.com/jhruby/digplan/internal/services"
	"github.com/jhruby/digplan/internal/workers"
	"github.com/jhruby/digplan/pkg/config"
	"github.com/jhruby/digplan/pkg/database"
	"github.com/jhruby/digplan/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Repositories
	projectRepo := repositories.NewProjectRepository(database.DB)
	moratoriumRepo := repositories.NewMoratoriumRepository(database.DB)
	municipalityRepo := repositories.NewMunicipalityRepository(database.DB)
	auditLogRepo := repositories.NewAuditLogRepository(database.DB)

	// Event dispatcher with audit and notification subscribers
	dispatcher := events.NewDispatcher()
	dispatcher.Subscribe(events.NewAuditSubscriber(auditLogRepo))
	dispatcher.Subscribe(events.NewNotificationSubscriber())
	dispatcher.Start()
	defer dispatcher.Stop()

	// Conflict engine
	spatialService := services.NewSpatialQueryService(projectRepo, moratoriumRepo)
	detectionService := services.NewConflictDetectionService(spatialService)
	graphService := services.NewConflictGraphService(projectRepo)
	batchService := services.NewConflictBatchService(projectRepo, detectionService, graphService)

	// Domain services
	projectService := services.NewProjectService(projectRepo, municipalityRepo)
	workflowService := services.NewWorkflowService(projectRepo, detectionService, graphService, dispatcher)
	moratoriumService := services.NewMoratoriumService(moratoriumRepo, projectRepo, batchService)
	reportService := services.NewConflictReportService(projectRepo)

	detectionTimeout := time.Duration(config.AppConfig.Conflict.DetectionTimeoutSeconds) * time.Second

	// Periodic conflict sweep
	sweepInterval := time.Duration(config.AppConfig.Conflict.SweepIntervalMinutes) * time.Minute
	workerManager := workers.NewWorkerManager(
		workers.NewSweepWorker("sweep-1", batchService, sweepInterval),
	)

	// Initialize router
	router := gin.Default()
	router.Use(middleware.ActorMiddleware())

	setupRoutes(router, projectService, workflowService, detectionService, moratoriumService, batchService, reportService, detectionTimeout)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	logger.Info("Server stopped")
}

func setupRoutes(router *gin.Engine, projectService *services.ProjectService, workflowService *services.WorkflowService,
	detectionService *services.ConflictDetectionService, moratoriumService *services.MoratoriumService,
	batchService *services.ConflictBatchService, reportService *services.ConflictReportService,
	detectionTimeout time.Duration) {
	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(projectService, workflowService, detectionService, detectionTimeout)
	moratoriumHandler := handlers.NewMoratoriumHandler(moratoriumService)
	adminHandler := handlers.NewAdminHandler(batchService, reportService)
	healthHandler := handlers.NewHealthHandler()

	projects := router.Group("/projects")
	projects.Use(middleware.ActorRequired())
	{
		projects.POST("", projectHandler.CreateProject)
		projects.GET("", projectHandler.ListProjects)
		projects.GET("/:id", projectHandler.GetProject)
		projects.PUT("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)
		projects.POST("/:id/submit", projectHandler.SubmitProject)
		projects.POST("/:id/transition", projectHandler.TransitionProject)
		projects.GET("/:id/conflicts", projectHandler.CheckConflicts)
	}

	moratoriums := router.Group("/moratoriums")
	moratoriums.Use(middleware.ActorRequired())
	{
		moratoriums.POST("", moratoriumHandler.CreateMoratorium)
		moratoriums.GET("/:id", moratoriumHandler.GetMoratorium)
		moratoriums.DELETE("/:id", moratoriumHandler.DeleteMoratorium)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.ActorRequired())
	{
		admin.POST("/conflicts/recheck", adminHandler.RecheckConflicts)
		admin.GET("/conflicts/report", adminHandler.ConflictReport)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
