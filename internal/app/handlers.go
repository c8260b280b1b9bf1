package app

import (
	"gorm.io/gorm"

	"github.com/stunity/feed-service/internal/http/handlers"
	"github.com/stunity/feed-service/internal/platform/logger"
)

type Handlers struct {
	Feed   *handlers.FeedHandler
	Health *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svcs Services) Handlers {
	return Handlers{
		Feed:   handlers.NewFeedHandler(log, svcs.Feeds, svcs.Tracker, svcs.Refresh),
		Health: handlers.NewHealthHandler(db),
	}
}
