package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	rediscl "github.com/stunity/feed-service/internal/clients/redis"
	"github.com/stunity/feed-service/internal/db"
	"github.com/stunity/feed-service/internal/jobs"
	"github.com/stunity/feed-service/internal/observability"
	"github.com/stunity/feed-service/internal/platform/logger"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	cache     rediscl.FeedCache
	scheduler *jobs.Scheduler
	otelStop  func(context.Context) error
	cancel    context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig()

	otelStop := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// The feed cache is optional; without REDIS_ADDR every request ranks
	// from scratch.
	cache, err := rediscl.NewFeedCache(log)
	if err != nil {
		log.Warn("feed cache unavailable, serving uncached", "error", err)
		cache = nil
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log, cfg, reposet, cache)
	handlerset := wireHandlers(log, theDB, serviceset)
	mw := wireMiddleware(log, cfg)
	router := wireRouter(cfg, handlerset, mw)
	scheduler := jobs.NewScheduler(log, serviceset.Refresh, cfg.RefreshSpec, cfg.WarmupDelay)

	return &App{
		Log:       log,
		DB:        theDB,
		Router:    router,
		Cfg:       cfg,
		Repos:     reposet,
		Services:  serviceset,
		cache:     cache,
		scheduler: scheduler,
		otelStop:  otelStop,
	}, nil
}

func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	return a.scheduler.Start(ctx)
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Log.Warn("feed cache close failed", "error", err)
		}
	}
	if a.otelStop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.otelStop(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
