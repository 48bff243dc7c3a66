package main

import (
	"net/http"
	"os"

	"local-services-api/config"
	"local-services-api/middleware"
	"local-services-api/models"
	"local-services-api/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	config.LoadEnv()
	defer config.Logger.Sync()

	// Initialize database
	config.InitDB()

	// Explicit, idempotent bootstrap of the default console accounts
	created, err := models.SeedDefaultAdmins(config.DB)
	if err != nil {
		config.Logger.Fatal("admin bootstrap failed", zap.Error(err))
	}
	if len(created) > 0 {
		config.Logger.Info("seeded default admin accounts", zap.Strings("usernames", created))
	}

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()
	r.Use(middleware.RequestID())

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Local Services Marketplace API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Local Services Marketplace API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "business", "admin"},
		})
	})

	// Register all routes
	routes.SetupRoutes(r)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	config.Logger.Info("server starting", zap.String("addr", "http://localhost:"+port))
	if err := r.Run(":" + port); err != nil {
		config.Logger.Fatal("failed to start server", zap.Error(err))
	}
}
