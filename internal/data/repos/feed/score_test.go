package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stunity/feed-service/internal/data/repos/feed/testutil"
	"github.com/stunity/feed-service/internal/domain"
)

func TestScoreRepoPersistBatch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewScoreRepo(tx, testutil.Logger(t))
	ctx := context.Background()

	author := testutil.SeedUser(t, ctx, tx, "Author")
	post := testutil.SeedPost(t, ctx, tx, testutil.PostSpec{AuthorID: author.ID, Age: time.Hour})

	first := []*domain.PostScore{{
		PostID:          post.ID,
		EngagementScore: 0.5,
		QualityScore:    0.6,
		TrendingScore:   0.3,
		DecayFactor:     0.9,
		ComputedAt:      time.Now(),
	}}
	if err := repo.PersistBatch(ctx, first); err != nil {
		t.Fatalf("PersistBatch (insert): %v", err)
	}

	second := []*domain.PostScore{{
		PostID:          post.ID,
		EngagementScore: 0.7,
		QualityScore:    0.6,
		TrendingScore:   0.55,
		DecayFactor:     0.8,
		ComputedAt:      time.Now(),
	}}
	if err := repo.PersistBatch(ctx, second); err != nil {
		t.Fatalf("PersistBatch (upsert): %v", err)
	}

	var rows []domain.PostScore
	if err := tx.Where("post_id = ?", post.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load scores: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d score rows, want 1 after upsert", len(rows))
	}
	if rows[0].EngagementScore != 0.7 || rows[0].TrendingScore != 0.55 {
		t.Errorf("upsert did not update: %+v", rows[0])
	}

	var updated domain.Post
	if err := tx.Where("id = ?", post.ID).Find(&updated).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if updated.TrendingScore != 0.55 {
		t.Errorf("denormalized trending = %v, want 0.55", updated.TrendingScore)
	}
}

func TestScoreRepoPersistBatchEmpty(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewScoreRepo(tx, testutil.Logger(t))

	if err := repo.PersistBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}
}
