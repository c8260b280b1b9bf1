package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	feedrepos "github.com/stunity/feed-service/internal/data/repos/feed"
	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
)

var errBatchFailed = errors.New("batch failed")

func testLogger(tb interface{ Fatalf(string, ...interface{}) }) *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

type fakePostRepo struct {
	relevance    []*domain.Post
	relevanceErr error
	trending     []*domain.Post
	trendingErr  error
	explore      []*domain.Post
	exploreErr   error

	recent      []*domain.Post
	recentTotal int64

	byID   map[uuid.UUID]*domain.Post
	active []*domain.Post

	// Last query received per pool, for retrieval-contract assertions.
	relevanceQ *feedrepos.RelevanceQuery
	trendingQ  *feedrepos.TrendingQuery
	exploreQ   *feedrepos.ExploreQuery
}

func (f *fakePostRepo) RelevanceCandidates(ctx context.Context, q feedrepos.RelevanceQuery) ([]*domain.Post, error) {
	f.relevanceQ = &q
	if f.relevanceErr != nil {
		return nil, f.relevanceErr
	}
	if q.AuthorIDs != nil {
		allowed := make(map[uuid.UUID]struct{}, len(q.AuthorIDs))
		for _, id := range q.AuthorIDs {
			allowed[id] = struct{}{}
		}
		var out []*domain.Post
		for _, p := range f.relevance {
			if _, ok := allowed[p.AuthorID]; ok {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return f.relevance, nil
}

func (f *fakePostRepo) TrendingCandidates(ctx context.Context, q feedrepos.TrendingQuery) ([]*domain.Post, error) {
	f.trendingQ = &q
	if f.trendingErr != nil {
		return nil, f.trendingErr
	}
	return f.trending, nil
}

func (f *fakePostRepo) ExploreCandidates(ctx context.Context, q feedrepos.ExploreQuery) ([]*domain.Post, error) {
	f.exploreQ = &q
	if f.exploreErr != nil {
		return nil, f.exploreErr
	}
	return f.explore, nil
}

func (f *fakePostRepo) RecentPage(ctx context.Context, q feedrepos.RecentQuery) ([]*domain.Post, int64, error) {
	end := q.Offset + q.Limit
	if end > len(f.recent) {
		end = len(f.recent)
	}
	if q.Offset >= len(f.recent) {
		return []*domain.Post{}, f.recentTotal, nil
	}
	return f.recent[q.Offset:end], f.recentTotal, nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return f.byID[id], nil
}

func (f *fakePostRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error) {
	var out []*domain.Post
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) ActiveSince(ctx context.Context, since time.Time) ([]*domain.Post, error) {
	return f.active, nil
}

type recordedAction struct {
	userID   uuid.UUID
	topics   []string
	action   domain.FeedAction
	weight   float64
	duration float64
	view     *domain.PostView
}

type fakeSignalRepo struct {
	signals   []*domain.UserTopicSignal
	recorded  []recordedAction
	recordErr error
	activeIDs []uuid.UUID
}

func (f *fakeSignalRepo) TopByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.UserTopicSignal, error) {
	return f.signals, nil
}

func (f *fakeSignalRepo) RecordAction(ctx context.Context, userID uuid.UUID, topics []string, action domain.FeedAction, weight, duration float64, view *domain.PostView) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, recordedAction{
		userID:   userID,
		topics:   topics,
		action:   action,
		weight:   weight,
		duration: duration,
		view:     view,
	})
	return nil
}

func (f *fakeSignalRepo) ActiveUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if limit < len(f.activeIDs) {
		return f.activeIDs[:limit], nil
	}
	return f.activeIDs, nil
}

type fakeScoreRepo struct {
	batches [][]*domain.PostScore
	failAt  int // 1-based batch index to fail, 0 = never
}

func (f *fakeScoreRepo) PersistBatch(ctx context.Context, scores []*domain.PostScore) error {
	f.batches = append(f.batches, scores)
	if f.failAt > 0 && len(f.batches) == f.failAt {
		return errBatchFailed
	}
	return nil
}

type fakeSocialRepo struct {
	following    []uuid.UUID
	likedAuthors []uuid.UUID
	reactions    map[uuid.UUID]domain.ReactionCounts
	enrollments  []*domain.CourseEnrollment
	interests    []string
	skills       []string
	interestsErr error
}

func (f *fakeSocialRepo) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.following, nil
}

func (f *fakeSocialRepo) RecentLikedAuthors(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	return f.likedAuthors, nil
}

func (f *fakeSocialRepo) FollowedReactions(ctx context.Context, postIDs []uuid.UUID, followingIDs []uuid.UUID) (map[uuid.UUID]domain.ReactionCounts, error) {
	if f.reactions == nil {
		return map[uuid.UUID]domain.ReactionCounts{}, nil
	}
	return f.reactions, nil
}

func (f *fakeSocialRepo) EnrolledCourses(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CourseEnrollment, error) {
	return f.enrollments, nil
}

func (f *fakeSocialRepo) UserInterests(ctx context.Context, userID uuid.UUID) ([]string, []string, error) {
	if f.interestsErr != nil {
		return nil, nil, f.interestsErr
	}
	return f.interests, f.skills, nil
}

type fakeFeedCache struct {
	entries map[uuid.UUID][]uuid.UUID
	getErr  error
}

func newFakeFeedCache() *fakeFeedCache {
	return &fakeFeedCache{entries: map[uuid.UUID][]uuid.UUID{}}
}

func (f *fakeFeedCache) GetPrecomputed(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[userID], nil
}

func (f *fakeFeedCache) SetPrecomputed(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID, ttl time.Duration) error {
	f.entries[userID] = postIDs
	return nil
}

func (f *fakeFeedCache) Close() error { return nil }
