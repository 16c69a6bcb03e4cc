// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"shopper/internal/domain/auth"
	"shopper/internal/domain/listing"
	"shopper/internal/infrastructure/http/v1/handlers"
	"shopper/internal/infrastructure/http/v1/middleware"
	"shopper/internal/infrastructure/storage/postgres"
	"shopper/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool           *postgres.Pool
	Logger         *logger.Logger
	TokenValidator middleware.TokenValidator
	AuthService    *auth.Service
	ListingService *listing.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	listingHandler := handlers.NewListingHandler(cfg.ListingService)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.TokenValidator))
		protected.Use(middleware.RequireAdmin())

		protected.GET("/entities", listingHandler.Entities)
		protected.GET("/:entity", listingHandler.List)
		protected.POST("/:entity/bulk", listingHandler.Bulk)
	}

	return router
}
