package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/stunity/feed-service/internal/http/handlers"
	"github.com/stunity/feed-service/internal/middleware"
)

type RouterConfig struct {
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *middleware.AuthMiddleware
	FeedHandler    *handlers.FeedHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthHandler.Check)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	api.GET("/feed", cfg.FeedHandler.GetFeed)
	api.POST("/feed/track", cfg.FeedHandler.TrackAction)
	api.POST("/feed/views", cfg.FeedHandler.TrackViews)
	api.POST("/feed/refresh-scores", cfg.FeedHandler.RefreshScores)

	return router
}
