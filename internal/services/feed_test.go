package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	rediscl "github.com/stunity/feed-service/internal/clients/redis"
	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/ranking"
)

func makePost(author uuid.UUID, age time.Duration, likes int) *domain.Post {
	return &domain.Post{
		ID:         uuid.New(),
		AuthorID:   author,
		PostType:   domain.PostTypeArticle,
		Title:      "title",
		Content:    "content",
		Visibility: domain.VisibilityPublic,
		LikesCount: likes,
		CreatedAt:  time.Now().Add(-age),
	}
}

func newTestFeedService(t *testing.T, posts *fakePostRepo, social *fakeSocialRepo, signals *fakeSignalRepo, cache *fakeFeedCache) FeedService {
	t.Helper()
	log := testLogger(t)
	profiles := NewProfileService(log, signals, social)
	var feedCache rediscl.FeedCache
	if cache != nil {
		feedCache = cache
	}
	return NewFeedService(log, posts, social, profiles, feedCache, 20, 50)
}

func TestGenerateFeedForYouDeduplicates(t *testing.T) {
	author := uuid.New()
	shared := makePost(author, time.Hour, 5)
	posts := &fakePostRepo{
		relevance: []*domain.Post{shared, makePost(uuid.New(), time.Hour, 3)},
		trending:  []*domain.Post{shared, makePost(uuid.New(), 2*time.Hour, 8)},
		explore:   []*domain.Post{makePost(uuid.New(), 3*time.Hour, 1)},
	}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	page, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	seen := map[uuid.UUID]int{}
	for _, sp := range page.Posts {
		seen[sp.Post.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("post %s served %d times", id, n)
		}
	}
	if len(page.Posts) != 4 {
		t.Errorf("got %d posts, want 4 unique", len(page.Posts))
	}
}

func TestGenerateFeedTrendingFailureDegrades(t *testing.T) {
	posts := &fakePostRepo{
		relevance:   []*domain.Post{makePost(uuid.New(), time.Hour, 3)},
		trendingErr: errors.New("timeout"),
		exploreErr:  errors.New("timeout"),
	}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	page, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou})
	if err != nil {
		t.Fatalf("optional pool failures must not fail the feed: %v", err)
	}
	if len(page.Posts) != 1 {
		t.Errorf("got %d posts, want 1 from relevance pool", len(page.Posts))
	}
}

func TestGenerateFeedRelevanceFailureFatal(t *testing.T) {
	posts := &fakePostRepo{
		relevanceErr: errors.New("connection refused"),
		trending:     []*domain.Post{makePost(uuid.New(), time.Hour, 3)},
	}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	if _, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou}); err == nil {
		t.Fatalf("relevance pool failure must fail the feed")
	}
}

func TestGenerateFeedPagination(t *testing.T) {
	var candidates []*domain.Post
	for i := 0; i < 25; i++ {
		candidates = append(candidates, makePost(uuid.New(), time.Duration(i)*time.Hour, i))
	}
	posts := &fakePostRepo{relevance: candidates}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	first, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou, Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first.Posts) != 20 || first.Total != 25 || !first.HasMore {
		t.Errorf("page 1: got %d posts, total %d, hasMore %v; want 20/25/true",
			len(first.Posts), first.Total, first.HasMore)
	}

	second, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou, Page: 2, Limit: 20})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(second.Posts) != 5 || second.HasMore {
		t.Errorf("page 2: got %d posts, hasMore %v; want 5/false", len(second.Posts), second.HasMore)
	}

	third, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou, Page: 3, Limit: 20})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(third.Posts) != 0 || third.HasMore {
		t.Errorf("page 3 past the end should be empty, got %d posts", len(third.Posts))
	}
}

func TestGenerateFeedPinnedFirst(t *testing.T) {
	hot := makePost(uuid.New(), time.Hour, 1000)
	hot.CommentsCount = 500
	pinned := makePost(uuid.New(), 90*time.Hour, 0)
	pinned.IsPinned = true
	pinned.PostType = domain.PostTypeAnnouncement

	posts := &fakePostRepo{relevance: []*domain.Post{hot, pinned}}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	page, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	if len(page.Posts) == 0 || page.Posts[0].Post.ID != pinned.ID {
		t.Errorf("pinned post must rank first")
	}
}

func TestGenerateFeedRecentMode(t *testing.T) {
	var rows []*domain.Post
	for i := 0; i < 25; i++ {
		rows = append(rows, makePost(uuid.New(), time.Duration(i)*time.Minute, i))
	}
	posts := &fakePostRepo{recent: rows, recentTotal: 30}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	page, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeRecent, Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	if len(page.Posts) != 20 || page.Total != 30 || !page.HasMore {
		t.Errorf("got %d posts, total %d, hasMore %v; want 20/30/true",
			len(page.Posts), page.Total, page.HasMore)
	}
	for _, sp := range page.Posts {
		if sp.Score != 0 {
			t.Errorf("recent mode must not score posts, got %v", sp.Score)
		}
		if sp.Breakdown.Recency != 1 {
			t.Errorf("recent mode breakdown recency = %v, want 1", sp.Breakdown.Recency)
		}
	}
}

func TestGenerateFeedFollowingEmptyWithoutFollows(t *testing.T) {
	posts := &fakePostRepo{relevance: []*domain.Post{makePost(uuid.New(), time.Hour, 3)}}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	page, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeFollowing})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	if len(page.Posts) != 0 || page.Total != 0 || page.HasMore {
		t.Errorf("following mode without follows must be empty, got %d posts", len(page.Posts))
	}
}

func TestGenerateFeedFollowingRestrictsAuthors(t *testing.T) {
	followed := uuid.New()
	stranger := uuid.New()
	posts := &fakePostRepo{relevance: []*domain.Post{
		makePost(followed, time.Hour, 3),
		makePost(stranger, time.Hour, 9),
	}}
	social := &fakeSocialRepo{following: []uuid.UUID{followed}}
	svc := newTestFeedService(t, posts, social, &fakeSignalRepo{}, nil)

	page, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeFollowing})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	for _, sp := range page.Posts {
		if sp.Post.AuthorID != followed {
			t.Errorf("post by unfollowed author %s in following feed", sp.Post.AuthorID)
		}
	}
	if len(page.Posts) != 1 {
		t.Errorf("got %d posts, want 1", len(page.Posts))
	}
}

func TestGenerateFeedServesPrecomputedPage(t *testing.T) {
	userID := uuid.New()
	first := makePost(uuid.New(), time.Hour, 3)
	second := makePost(uuid.New(), 2*time.Hour, 5)

	posts := &fakePostRepo{byID: map[uuid.UUID]*domain.Post{
		first.ID:  first,
		second.ID: second,
	}}
	cache := newFakeFeedCache()
	cache.entries[userID] = []uuid.UUID{second.ID, first.ID}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, cache)

	page, err := svc.GenerateFeed(context.Background(), userID, FeedOptions{Mode: ranking.ModeForYou, Page: 1})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("got %d posts, want 2 from cache", len(page.Posts))
	}
	if page.Posts[0].Post.ID != second.ID || page.Posts[1].Post.ID != first.ID {
		t.Errorf("cached ordering not preserved")
	}
}

func TestGenerateFeedBypassesCacheWhenAsked(t *testing.T) {
	userID := uuid.New()
	cachedPost := makePost(uuid.New(), time.Hour, 3)
	livePost := makePost(uuid.New(), time.Hour, 4)

	posts := &fakePostRepo{
		relevance: []*domain.Post{livePost},
		byID:      map[uuid.UUID]*domain.Post{cachedPost.ID: cachedPost},
	}
	cache := newFakeFeedCache()
	cache.entries[userID] = []uuid.UUID{cachedPost.ID}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, cache)

	page, err := svc.GenerateFeed(context.Background(), userID, FeedOptions{
		Mode:        ranking.ModeForYou,
		Page:        1,
		BypassCache: true,
	})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].Post.ID != livePost.ID {
		t.Errorf("bypass must rank live candidates, not cached ids")
	}
}

func TestGenerateFeedSubjectNormalization(t *testing.T) {
	post := makePost(uuid.New(), time.Hour, 3)
	post.TopicTags = datatypes.NewJSONSlice([]string{"math"})
	posts := &fakePostRepo{relevance: []*domain.Post{post}}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, &fakeSignalRepo{}, nil)

	// "ALL" means no filter; must not error or empty the feed.
	page, err := svc.GenerateFeed(context.Background(), uuid.New(), FeedOptions{Mode: ranking.ModeForYou, Subject: "ALL"})
	if err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}
	if len(page.Posts) != 1 {
		t.Errorf("subject ALL should behave as unfiltered")
	}
}

func TestGenerateFeedPoolWindowsAndLimits(t *testing.T) {
	userID := uuid.New()
	signals := &fakeSignalRepo{}
	for i := 0; i < 15; i++ {
		signals.signals = append(signals.signals, &domain.UserTopicSignal{
			UserID:  userID,
			TopicID: fmt.Sprintf("topic-%02d", i),
			Score:   float64(100 - i),
		})
	}
	posts := &fakePostRepo{relevance: []*domain.Post{makePost(uuid.New(), time.Hour, 3)}}
	svc := newTestFeedService(t, posts, &fakeSocialRepo{}, signals, nil).(*feedService)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.GenerateFeed(context.Background(), userID, FeedOptions{Mode: ranking.ModeForYou}); err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}

	rq := posts.relevanceQ
	if rq == nil {
		t.Fatal("relevance pool never queried")
	}
	if want := now.Add(-14 * 24 * time.Hour); !rq.Since.Equal(want) {
		t.Errorf("relevance since = %v, want 14 days back (%v)", rq.Since, want)
	}
	if want := now.Add(-6 * time.Hour); !rq.FreshSince.Equal(want) {
		t.Errorf("fresh since = %v, want 6 hours back (%v)", rq.FreshSince, want)
	}
	if rq.EstablishedLimit != 75 || rq.FreshLimit != 25 {
		t.Errorf("relevance limits = %d/%d, want 75/25", rq.EstablishedLimit, rq.FreshLimit)
	}

	tq := posts.trendingQ
	if tq == nil {
		t.Fatal("trending pool never queried")
	}
	if want := now.Add(-24 * time.Hour); !tq.Since.Equal(want) {
		t.Errorf("trending since = %v, want 24 hours back (%v)", tq.Since, want)
	}
	if tq.Limit != 50 {
		t.Errorf("trending limit = %d, want 50", tq.Limit)
	}

	eq := posts.exploreQ
	if eq == nil {
		t.Fatal("explore pool never queried")
	}
	if want := now.Add(-7 * 24 * time.Hour); !eq.Since.Equal(want) {
		t.Errorf("explore since = %v, want 7 days back (%v)", eq.Since, want)
	}
	if eq.Limit != 30 {
		t.Errorf("explore limit = %d, want 30", eq.Limit)
	}
	if len(eq.ExcludeTopics) != 10 {
		t.Errorf("explore excludes %d topics, want only the top 10", len(eq.ExcludeTopics))
	}
}

func TestGenerateFeedExploreExcludesViewerAndFollowed(t *testing.T) {
	userID := uuid.New()
	followed := uuid.New()
	posts := &fakePostRepo{}
	social := &fakeSocialRepo{following: []uuid.UUID{followed}}
	svc := newTestFeedService(t, posts, social, &fakeSignalRepo{}, nil)

	if _, err := svc.GenerateFeed(context.Background(), userID, FeedOptions{Mode: ranking.ModeForYou}); err != nil {
		t.Fatalf("GenerateFeed: %v", err)
	}

	eq := posts.exploreQ
	if eq == nil {
		t.Fatal("explore pool never queried")
	}
	excluded := make(map[uuid.UUID]bool, len(eq.ExcludeAuthors))
	for _, id := range eq.ExcludeAuthors {
		excluded[id] = true
	}
	if !excluded[userID] {
		t.Error("viewer's own posts are not excluded from the explore pool")
	}
	if !excluded[followed] {
		t.Error("followed authors are not excluded from the explore pool")
	}
}
