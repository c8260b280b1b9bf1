package app

import (
	rediscl "github.com/stunity/feed-service/internal/clients/redis"
	"github.com/stunity/feed-service/internal/platform/logger"
	"github.com/stunity/feed-service/internal/services"
)

type Services struct {
	Profiles services.ProfileService
	Feeds    services.FeedService
	Tracker  services.TrackerService
	Refresh  services.RefreshService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, cache rediscl.FeedCache) Services {
	profiles := services.NewProfileService(log, repos.Signals, repos.Social)
	feeds := services.NewFeedService(log, repos.Posts, repos.Social, profiles, cache, cfg.DefaultPageSize, cfg.MaxPageSize)
	tracker := services.NewTrackerService(log, repos.Posts, repos.Signals)
	refresh := services.NewRefreshService(log, repos.Posts, repos.Scores, repos.Signals, feeds, cache)
	return Services{
		Profiles: profiles,
		Feeds:    feeds,
		Tracker:  tracker,
		Refresh:  refresh,
	}
}
