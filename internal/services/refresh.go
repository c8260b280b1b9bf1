package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	rediscl "github.com/stunity/feed-service/internal/clients/redis"
	feedrepos "github.com/stunity/feed-service/internal/data/repos/feed"
	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
	"github.com/stunity/feed-service/internal/ranking"
)

const (
	refreshWindow   = 14 * 24 * time.Hour
	scoreBatchSize  = 100
	precomputeUsers = 100
	precomputeLimit = 20
	precomputeTTL   = 5 * time.Minute
)

// RefreshService recomputes cached post scores and warms precomputed feeds.
// Both jobs are idempotent and safe to rerun.
type RefreshService interface {
	RefreshPostScores(ctx context.Context) (int, error)
	PrecomputeFeeds(ctx context.Context) (int, error)
}

type refreshService struct {
	log     *logger.Logger
	posts   feedrepos.PostRepo
	scores  feedrepos.ScoreRepo
	signals feedrepos.SignalRepo
	feeds   FeedService
	cache   rediscl.FeedCache
	now     func() time.Time
}

func NewRefreshService(
	log *logger.Logger,
	posts feedrepos.PostRepo,
	scores feedrepos.ScoreRepo,
	signals feedrepos.SignalRepo,
	feeds FeedService,
	cache rediscl.FeedCache,
) RefreshService {
	return &refreshService{
		log:     log.With("service", "RefreshService"),
		posts:   posts,
		scores:  scores,
		signals: signals,
		feeds:   feeds,
		cache:   cache,
		now:     time.Now,
	}
}

// RefreshPostScores recomputes engagement, quality, decay, and trending for
// every post created inside the refresh window, persisting in batches. A
// failed batch is logged and skipped; committed batches stay valid.
func (s *refreshService) RefreshPostScores(ctx context.Context) (int, error) {
	now := s.now()
	posts, err := s.posts.ActiveSince(ctx, now.Add(-refreshWindow))
	if err != nil {
		return 0, fmt.Errorf("load active posts: %w", err)
	}
	if len(posts) == 0 {
		return 0, nil
	}

	computed := make([]*domain.PostScore, 0, len(posts))
	for _, p := range posts {
		engagement := ranking.EngagementScore(p.LikesCount, p.CommentsCount, p.SharesCount, p.ViewsCount)
		decay := ranking.DecayFactor(p.AgeHours(now))
		computed = append(computed, &domain.PostScore{
			PostID:          p.ID,
			EngagementScore: engagement,
			QualityScore:    ranking.QualityBaseline(p.PostType),
			TrendingScore:   engagement * decay,
			DecayFactor:     decay,
			ComputedAt:      now,
		})
	}

	var persisted int
	var firstErr error
	for start := 0; start < len(computed); start += scoreBatchSize {
		end := start + scoreBatchSize
		if end > len(computed) {
			end = len(computed)
		}
		batch := computed[start:end]
		if err := s.scores.PersistBatch(ctx, batch); err != nil {
			s.log.Error("score batch failed, continuing with next",
				"offset", start, "size", len(batch), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		persisted += len(batch)
	}
	return persisted, firstErr
}

// PrecomputeFeeds regenerates and caches the first feed page for recently
// active users. A nil cache turns this into a no-op.
func (s *refreshService) PrecomputeFeeds(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	userIDs, err := s.signals.ActiveUserIDs(ctx, precomputeUsers)
	if err != nil {
		return 0, fmt.Errorf("load active users: %w", err)
	}

	var warmed int
	for _, userID := range userIDs {
		page, err := s.feeds.GenerateFeed(ctx, userID, FeedOptions{
			Mode:        ranking.ModeForYou,
			Page:        1,
			Limit:       precomputeLimit,
			BypassCache: true,
		})
		if err != nil {
			s.log.Warn("feed precompute failed for user", "user_id", userID, "error", err)
			continue
		}
		if len(page.Posts) == 0 {
			continue
		}
		ids := make([]uuid.UUID, 0, len(page.Posts))
		for _, sp := range page.Posts {
			ids = append(ids, sp.Post.ID)
		}
		if err := s.cache.SetPrecomputed(ctx, userID, ids, precomputeTTL); err != nil {
			s.log.Warn("feed cache write failed", "user_id", userID, "error", err)
			continue
		}
		warmed++
	}
	return warmed, nil
}
