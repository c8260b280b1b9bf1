package app

import (
	"strings"
	"time"

	"github.com/stunity/feed-service/internal/platform/envutil"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string

	JWTSecretKey string
	CORSOrigins  []string

	DefaultPageSize int
	MaxPageSize     int

	RefreshSpec string
	WarmupDelay time.Duration
}

func LoadConfig() Config {
	origins := strings.Split(envutil.String("CORS_ORIGINS", "http://localhost:3000,http://localhost:5174"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Port:            envutil.String("PORT", "8080"),
		ServiceName:     envutil.String("SERVICE_NAME", "feed-service"),
		Environment:     envutil.String("ENVIRONMENT", "development"),
		Version:         envutil.String("SERVICE_VERSION", "dev"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		CORSOrigins:     origins,
		DefaultPageSize: envutil.Int("FEED_DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     envutil.Int("FEED_MAX_PAGE_SIZE", 50),
		RefreshSpec:     envutil.String("SCORE_REFRESH_SPEC", "@every 5m"),
		WarmupDelay:     envutil.Duration("SCORE_REFRESH_WARMUP_DELAY", 5*time.Second),
	}
}
