package main

import (
	"context"
	"log"
	"time"

	"construction_manager/internal/config"
	"construction_manager/internal/database"
	"construction_manager/internal/handlers"
	"construction_manager/internal/redis"
	"construction_manager/internal/repository"
	"construction_manager/internal/services"
	"construction_manager/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	pollInterval := time.Duration(cfg.WorkerPollInterval) * time.Second

	// Initialize store and services
	store := repository.NewStore(db)
	userService := services.NewUserService(repository.NewUserRepository(db))
	notificationService := services.NewNotificationService(redisClient)
	projectService := services.NewProjectService(store, redisClient, cacheTTL)
	labourService := services.NewLabourService(store, redisClient)
	orderService := services.NewPurchaseOrderService(store, userService, redisClient, notificationService)
	requestService := services.NewMaterialRequestService(store, orderService, userService)

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(projectService)
	labourHandler := handlers.NewLabourHandler(labourService)
	orderHandler := handlers.NewPurchaseOrderHandler(orderService)
	requestHandler := handlers.NewMaterialRequestHandler(requestService)
	userHandler := handlers.NewUserHandler(userService)

	// Background worker drains the correction queue
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.New(redisClient, store, cacheTTL, pollInterval).Start(ctx)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/users", userHandler.CreateUser)
		api.GET("/users", userHandler.GetUsers)
		api.GET("/users/:id", userHandler.GetUser)

		api.POST("/projects", projectHandler.CreateProject)
		api.GET("/projects", projectHandler.GetProjects)
		api.GET("/projects/:id", projectHandler.GetProject)
		api.DELETE("/projects/:id", projectHandler.RetireProject)
		api.GET("/projects/:id/capital", projectHandler.GetCapitalSummary)
		api.POST("/projects/:id/recalculate", projectHandler.RecalculateProject)
		api.GET("/projects/:id/audit", projectHandler.GetAuditTrail)

		api.POST("/projects/:id/phases", projectHandler.CreatePhase)
		api.GET("/projects/:id/phases", projectHandler.GetPhases)
		api.POST("/projects/:id/categories", projectHandler.CreateIndirectCategory)
		api.GET("/projects/:id/categories", projectHandler.GetIndirectCategories)
		api.POST("/projects/:id/equipment", projectHandler.CreateEquipment)

		api.POST("/phases/:id/dependencies", projectHandler.AddPhaseDependency)
		api.POST("/phases/:id/activate", projectHandler.ActivatePhase)
		api.POST("/phases/:id/complete", projectHandler.CompletePhase)
		api.POST("/phases/:id/recalculate", projectHandler.RecalculatePhase)
		api.POST("/phases/:id/work-items", projectHandler.CreateWorkItem)
		api.GET("/phases/:id/work-items", projectHandler.GetWorkItems)

		api.POST("/labour/batches", labourHandler.CreateBatch)
		api.GET("/labour/batches/:id", labourHandler.GetBatch)
		api.GET("/labour/batches/:id/entries", labourHandler.GetBatchEntries)
		api.POST("/labour/batches/:id/submit", labourHandler.SubmitBatch)
		api.POST("/labour/batches/:id/approve", labourHandler.ApproveBatch)
		api.DELETE("/labour/batches/:id", labourHandler.DeleteBatch)
		api.PUT("/labour/entries/:id", labourHandler.UpdateEntry)
		api.DELETE("/labour/entries/:id", labourHandler.DeleteEntry)

		api.POST("/purchase-orders", orderHandler.CreateOrder)
		api.GET("/purchase-orders/:id", orderHandler.GetOrder)
		api.PUT("/purchase-orders/:id", orderHandler.UpdateOrder)
		api.DELETE("/purchase-orders/:id", orderHandler.DeleteOrder)
		api.POST("/purchase-orders/:id/accept", orderHandler.Accept)
		api.POST("/purchase-orders/:id/reject", orderHandler.Reject)
		api.POST("/purchase-orders/:id/modify", orderHandler.Modify)
		api.POST("/purchase-orders/:id/approve-modification", orderHandler.ApproveModification)
		api.POST("/purchase-orders/:id/reject-modification", orderHandler.RejectModification)
		api.POST("/purchase-orders/:id/retry", orderHandler.RetrySupplier)
		api.POST("/purchase-orders/:id/ready", orderHandler.MarkReadyForDelivery)
		api.POST("/purchase-orders/:id/deliver", orderHandler.MarkDelivered)
		api.POST("/purchase-orders/:id/cancel", orderHandler.Cancel)

		api.POST("/material-requests", requestHandler.CreateRequest)
		api.GET("/material-requests/:id", requestHandler.GetRequest)
		api.POST("/material-requests/:id/approve", requestHandler.ApproveRequest)
		api.POST("/material-requests/:id/reject", requestHandler.RejectRequest)
		api.DELETE("/material-requests/:id", requestHandler.DeleteRequest)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
