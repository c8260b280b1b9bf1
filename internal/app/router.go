package app

import (
	"github.com/gin-gonic/gin"

	"github.com/stunity/feed-service/internal/server"
)

func wireRouter(cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:    cfg.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: mw.Auth,
		FeedHandler:    h.Feed,
		HealthHandler:  h.Health,
	})
}
