package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stunity/feed-service/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, firstName string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  "Tester",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

type PostSpec struct {
	AuthorID   uuid.UUID
	PostType   string
	Topics     []string
	Visibility string
	IsPinned   bool
	Likes      int
	Trending   float64
	Age        time.Duration
}

func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, spec PostSpec) *domain.Post {
	tb.Helper()
	if spec.PostType == "" {
		spec.PostType = domain.PostTypeArticle
	}
	if spec.Visibility == "" {
		spec.Visibility = domain.VisibilityPublic
	}
	p := &domain.Post{
		ID:            uuid.New(),
		AuthorID:      spec.AuthorID,
		PostType:      spec.PostType,
		Title:         "post",
		Content:       "content",
		TopicTags:     datatypes.NewJSONSlice(spec.Topics),
		Visibility:    spec.Visibility,
		IsPinned:      spec.IsPinned,
		LikesCount:    spec.Likes,
		TrendingScore: spec.Trending,
		CreatedAt:     time.Now().Add(-spec.Age),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}

func SeedFollow(tb testing.TB, ctx context.Context, tx *gorm.DB, followerID, followingID uuid.UUID) {
	tb.Helper()
	f := &domain.Follow{
		ID:          uuid.New(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed follow: %v", err)
	}
}

func SeedLike(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, postID uuid.UUID, at time.Time) {
	tb.Helper()
	l := &domain.PostLike{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed like: %v", err)
	}
}

func SeedSignal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, topic string, score float64) *domain.UserTopicSignal {
	tb.Helper()
	s := &domain.UserTopicSignal{
		ID:              uuid.New(),
		UserID:          userID,
		TopicID:         topic,
		Score:           score,
		LastInteraction: time.Now(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed signal: %v", err)
	}
	return s
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, category string, tags []string) *domain.CourseEnrollment {
	tb.Helper()
	course := &domain.Course{
		ID:       uuid.New(),
		Title:    "course",
		Category: category,
		Tags:     datatypes.NewJSONSlice(tags),
	}
	if err := tx.WithContext(ctx).Create(course).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	e := &domain.CourseEnrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: course.ID,
		Status:   "ACTIVE",
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}
