package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	rediscl "github.com/stunity/feed-service/internal/clients/redis"
	feedrepos "github.com/stunity/feed-service/internal/data/repos/feed"
	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
	"github.com/stunity/feed-service/internal/ranking"
)

const (
	establishedPoolSize = 75
	freshPoolSize       = 25
	trendingPoolSize    = 50
	explorePoolSize     = 30
	freshWindow         = 6 * time.Hour
	relevanceWindow     = 14 * 24 * time.Hour
	trendingWindow      = 24 * time.Hour
	exploreWindow       = 7 * 24 * time.Hour
	trendingFloor       = 0.1
	exploreTopicLimit   = 10
	poolMultiplier      = 3
)

// FeedOptions carries the normalized query parameters of one feed request.
type FeedOptions struct {
	Mode       ranking.Mode
	Page       int
	Limit      int
	ExcludeIDs []uuid.UUID
	Subject    string

	// BypassCache skips the precomputed-feed lookup. Set by the refresh
	// job so warming the cache never reads from it.
	BypassCache bool
}

type FeedPage struct {
	Posts   []ranking.ScoredPost `json:"posts"`
	Total   int                  `json:"total"`
	HasMore bool                 `json:"hasMore"`
}

type FeedService interface {
	GenerateFeed(ctx context.Context, userID uuid.UUID, opts FeedOptions) (*FeedPage, error)
}

type feedService struct {
	log      *logger.Logger
	posts    feedrepos.PostRepo
	social   feedrepos.SocialRepo
	profiles ProfileService
	cache    rediscl.FeedCache

	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

func NewFeedService(
	log *logger.Logger,
	posts feedrepos.PostRepo,
	social feedrepos.SocialRepo,
	profiles ProfileService,
	cache rediscl.FeedCache,
	defaultLimit, maxLimit int,
) FeedService {
	return &feedService{
		log:          log.With("service", "FeedService"),
		posts:        posts,
		social:       social,
		profiles:     profiles,
		cache:        cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
	}
}

func (s *feedService) GenerateFeed(ctx context.Context, userID uuid.UUID, opts FeedOptions) (*FeedPage, error) {
	opts = s.normalize(opts)

	switch opts.Mode {
	case ranking.ModeRecent:
		return s.recentFeed(ctx, opts)
	case ranking.ModeFollowing:
		return s.followingFeed(ctx, userID, opts)
	default:
		return s.forYouFeed(ctx, userID, opts)
	}
}

func (s *feedService) normalize(opts FeedOptions) FeedOptions {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = s.defaultLimit
	}
	if opts.Limit > s.maxLimit {
		opts.Limit = s.maxLimit
	}
	opts.Subject = strings.ToLower(strings.TrimSpace(opts.Subject))
	if opts.Subject == "all" {
		opts.Subject = ""
	}
	return opts
}

// recentFeed is pure reverse chronology. Scores are zeroed so clients
// render it without ranking affordances.
func (s *feedService) recentFeed(ctx context.Context, opts FeedOptions) (*FeedPage, error) {
	offset := (opts.Page - 1) * opts.Limit
	posts, total, err := s.posts.RecentPage(ctx, feedrepos.RecentQuery{
		Subject: opts.Subject,
		Offset:  offset,
		Limit:   opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent page: %w", err)
	}

	scored := make([]ranking.ScoredPost, 0, len(posts))
	for _, p := range posts {
		scored = append(scored, ranking.ScoredPost{
			Post:      p,
			Breakdown: ranking.Breakdown{Recency: 1},
		})
	}
	return &FeedPage{
		Posts:   scored,
		Total:   int(total),
		HasMore: offset+opts.Limit < int(total),
	}, nil
}

func (s *feedService) followingFeed(ctx context.Context, userID uuid.UUID, opts FeedOptions) (*FeedPage, error) {
	profile, err := s.profiles.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build profile: %w", err)
	}
	if len(profile.FollowingList) == 0 {
		return &FeedPage{Posts: []ranking.ScoredPost{}}, nil
	}

	now := s.now()
	candidates, err := s.posts.RelevanceCandidates(ctx, feedrepos.RelevanceQuery{
		Since:            now.Add(-relevanceWindow),
		FreshSince:       now.Add(-freshWindow),
		Subject:          opts.Subject,
		AuthorIDs:        profile.FollowingList,
		ExcludeIDs:       opts.ExcludeIDs,
		EstablishedLimit: establishedPoolSize,
		FreshLimit:       freshPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("following candidates: %w", err)
	}

	scored, err := s.scoreCandidates(ctx, profile, candidates)
	if err != nil {
		return nil, err
	}
	ranking.SortByScore(scored)
	scored = ranking.ApplyDiversity(scored)
	return s.paginate(scored, opts), nil
}

func (s *feedService) forYouFeed(ctx context.Context, userID uuid.UUID, opts FeedOptions) (*FeedPage, error) {
	if page, ok := s.cachedPage(ctx, userID, opts); ok {
		return page, nil
	}

	profile, err := s.profiles.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build profile: %w", err)
	}
	now := s.now()

	g, gctx := errgroup.WithContext(ctx)
	var relevance, trending, explore []*domain.Post

	g.Go(func() error {
		rows, err := s.posts.RelevanceCandidates(gctx, feedrepos.RelevanceQuery{
			Since:            now.Add(-relevanceWindow),
			FreshSince:       now.Add(-freshWindow),
			Subject:          opts.Subject,
			ExcludeIDs:       opts.ExcludeIDs,
			EstablishedLimit: establishedPoolSize,
			FreshLimit:       freshPoolSize,
		})
		if err != nil {
			return fmt.Errorf("relevance pool: %w", err)
		}
		relevance = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.posts.TrendingCandidates(gctx, feedrepos.TrendingQuery{
			Since:       now.Add(-trendingWindow),
			MinTrending: trendingFloor,
			Subject:     opts.Subject,
			ExcludeIDs:  opts.ExcludeIDs,
			Limit:       trendingPoolSize,
		})
		if err != nil {
			s.log.Warn("trending pool failed, serving without it", "user_id", userID, "error", err)
			return nil
		}
		trending = rows
		return nil
	})
	g.Go(func() error {
		// The viewer's own posts never count as novel content.
		excludeAuthors := append([]uuid.UUID{userID}, profile.FollowingList...)
		rows, err := s.posts.ExploreCandidates(gctx, feedrepos.ExploreQuery{
			Since:          now.Add(-exploreWindow),
			Subject:        opts.Subject,
			ExcludeAuthors: excludeAuthors,
			ExcludeTopics:  profile.TopTopics(exploreTopicLimit),
			ExcludeIDs:     opts.ExcludeIDs,
			Limit:          explorePoolSize,
		})
		if err != nil {
			s.log.Warn("explore pool failed, serving without it", "user_id", userID, "error", err)
			return nil
		}
		explore = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reactions, err := s.followedReactions(ctx, profile, relevance, trending, explore)
	if err != nil {
		s.log.Warn("followed reaction lookup failed, scoring without social proof", "user_id", userID, "error", err)
		reactions = map[uuid.UUID]domain.ReactionCounts{}
	}

	scorer := ranking.NewScorerAt(s.now)
	relevanceScored := scorePool(scorer, profile, relevance, reactions)
	ranking.SortByScore(relevanceScored)
	trendingScored := scorePool(scorer, profile, trending, reactions)
	exploreScored := scorePool(scorer, profile, explore, reactions)

	mixed := ranking.MixPools(relevanceScored, trendingScored, exploreScored, opts.Limit*poolMultiplier)
	ranking.SortByScore(mixed)
	mixed = ranking.ApplyDiversity(mixed)
	return s.paginate(mixed, opts), nil
}

func (s *feedService) cachedPage(ctx context.Context, userID uuid.UUID, opts FeedOptions) (*FeedPage, bool) {
	if s.cache == nil || opts.BypassCache || opts.Page != 1 ||
		opts.Subject != "" || len(opts.ExcludeIDs) != 0 {
		return nil, false
	}
	ids, err := s.cache.GetPrecomputed(ctx, userID)
	if err != nil {
		s.log.Warn("precomputed feed lookup failed", "user_id", userID, "error", err)
		return nil, false
	}
	if len(ids) == 0 {
		return nil, false
	}
	if len(ids) > opts.Limit {
		ids = ids[:opts.Limit]
	}
	posts, err := s.posts.GetByIDs(ctx, ids)
	if err != nil || len(posts) == 0 {
		return nil, false
	}

	scored := make([]ranking.ScoredPost, 0, len(posts))
	for _, p := range posts {
		scored = append(scored, ranking.ScoredPost{Post: p})
	}
	return &FeedPage{Posts: scored, Total: len(scored), HasMore: false}, true
}

// followedReactions issues one aggregate query covering every candidate in
// all three pools.
func (s *feedService) followedReactions(ctx context.Context, profile *ranking.Profile, pools ...[]*domain.Post) (map[uuid.UUID]domain.ReactionCounts, error) {
	if len(profile.FollowingList) == 0 {
		return map[uuid.UUID]domain.ReactionCounts{}, nil
	}
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, pool := range pools {
		for _, p := range pool {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]domain.ReactionCounts{}, nil
	}
	return s.social.FollowedReactions(ctx, ids, profile.FollowingList)
}

func (s *feedService) scoreCandidates(ctx context.Context, profile *ranking.Profile, posts []*domain.Post) ([]ranking.ScoredPost, error) {
	reactions, err := s.followedReactions(ctx, profile, posts)
	if err != nil {
		s.log.Warn("followed reaction lookup failed, scoring without social proof", "user_id", profile.UserID, "error", err)
		reactions = map[uuid.UUID]domain.ReactionCounts{}
	}
	return scorePool(ranking.NewScorerAt(s.now), profile, posts, reactions), nil
}

func scorePool(scorer *ranking.Scorer, profile *ranking.Profile, posts []*domain.Post, reactions map[uuid.UUID]domain.ReactionCounts) []ranking.ScoredPost {
	scored := make([]ranking.ScoredPost, 0, len(posts))
	for _, p := range posts {
		scored = append(scored, scorer.Score(p, profile, reactions[p.ID]))
	}
	return scored
}

func (s *feedService) paginate(scored []ranking.ScoredPost, opts FeedOptions) *FeedPage {
	total := len(scored)
	offset := (opts.Page - 1) * opts.Limit
	if offset >= total {
		return &FeedPage{Posts: []ranking.ScoredPost{}, Total: total}
	}
	end := offset + opts.Limit
	if end > total {
		end = total
	}
	return &FeedPage{
		Posts:   scored[offset:end],
		Total:   total,
		HasMore: offset+opts.Limit < total,
	}
}
