package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/controllers"
	"github.com/atelie-moura/terno-api/jobs"
	"github.com/atelie-moura/terno-api/middleware"
	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

func main() {
	log.Println("Starting Terno API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.SubStep{},
		&models.FinalizationRecord{},
		&models.AdminNotification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Photo storage is optional; the API runs without it and rejects uploads
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitPhotoService(s3Service)
		log.Printf("Photo storage enabled (bucket %s)", cfg.AWSS3Bucket)
	} else {
		log.Println("AWS_S3_BUCKET not set, photo storage disabled")
	}

	lifecycle := services.InitLifecycleService(services.NewGormOrderStore(db))

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Authentication
		v1.POST("/auth/login", controllers.Login)

		// Authenticated routes
		authenticated := v1.Group("")
		authenticated.Use(middleware.EnsureValidToken(cfg))
		{
			authenticated.POST("/orders", controllers.CreateOrder)
			authenticated.GET("/orders", controllers.ListOrders)
			authenticated.GET("/orders/:id", controllers.GetOrder)
			authenticated.PUT("/orders/:id/finalize", controllers.FinalizeOrder)
			authenticated.GET("/orders/:id/substeps", controllers.ListSubSteps)
			authenticated.POST("/orders/:id/substeps", controllers.AddSubStep)
			authenticated.PUT("/substeps/:id", controllers.UpdateSubStep)
			authenticated.GET("/finalized-orders", controllers.ListFinalizedOrders)
			authenticated.GET("/service-types", controllers.GetServiceTypes)

			authenticated.GET("/employees", controllers.ListEmployees)
			authenticated.GET("/employees/:id", controllers.GetEmployee)
			authenticated.GET("/employees/:id/history", controllers.GetEmployeeHistory)

			authenticated.POST("/uploads", controllers.UploadPhoto)
			authenticated.GET("/reports", controllers.GetReports)

			// Admin-only routes
			admin := authenticated.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/employees", controllers.CreateEmployee)
				admin.PUT("/employees/:id", controllers.UpdateEmployee)
				admin.DELETE("/employees/:id", controllers.DeleteEmployee)
				admin.GET("/notifications", controllers.ListNotifications)
				admin.DELETE("/notifications", controllers.ClearNotifications)
				admin.POST("/orders/repair-checklists", controllers.RepairChecklists)
				admin.DELETE("/production-data", controllers.PurgeProductionData)
			}
		}
	}

	// Keep cached delivery statuses fresh
	statusJob := jobs.NewDeliveryStatusJob(lifecycle)
	if err := statusJob.Start(); err != nil {
		log.Fatalf("Failed to start delivery status job: %v", err)
	}
	defer statusJob.Stop()

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Terno API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
