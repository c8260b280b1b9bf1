package feed

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stunity/feed-service/internal/data/repos/feed/testutil"
	"github.com/stunity/feed-service/internal/domain"
)

func TestSignalRepoRecordActionUpserts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSignalRepo(tx, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	if err := repo.RecordAction(ctx, userID, []string{"math", "science"}, domain.ActionLike, 3, 0, nil); err != nil {
		t.Fatalf("RecordAction (create): %v", err)
	}
	if err := repo.RecordAction(ctx, userID, []string{"math"}, domain.ActionLike, 3, 0, nil); err != nil {
		t.Fatalf("RecordAction (update): %v", err)
	}

	signals, err := repo.TopByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("TopByUser: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}
	if signals[0].TopicID != "math" {
		t.Errorf("strongest topic = %q, want math first", signals[0].TopicID)
	}
	if signals[0].Score != 6 || signals[0].LikeCount != 2 {
		t.Errorf("math: score %v likes %d, want 6/2", signals[0].Score, signals[0].LikeCount)
	}
	if signals[1].Score != 3 || signals[1].LikeCount != 1 {
		t.Errorf("science: score %v likes %d, want 3/1", signals[1].Score, signals[1].LikeCount)
	}
}

func TestSignalRepoViewDurationAverage(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSignalRepo(tx, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	if err := repo.RecordAction(ctx, userID, []string{"math"}, domain.ActionView, 1, 40, nil); err != nil {
		t.Fatalf("RecordAction (first view): %v", err)
	}
	if err := repo.RecordAction(ctx, userID, []string{"math"}, domain.ActionView, 1, 20, nil); err != nil {
		t.Fatalf("RecordAction (second view): %v", err)
	}

	signals, err := repo.TopByUser(ctx, userID, 1)
	if err != nil {
		t.Fatalf("TopByUser: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("got %d signals, want 1", len(signals))
	}
	got := signals[0]
	if got.ViewCount != 2 {
		t.Errorf("view count = %d, want 2", got.ViewCount)
	}
	// First view seeds the average; later views fold in 10%.
	if want := 42.0; math.Abs(got.AvgViewDuration-want) > 1e-9 {
		t.Errorf("avg view duration = %v, want %v", got.AvgViewDuration, want)
	}
}

func TestSignalRepoRecordsViewRowAtomically(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSignalRepo(tx, testutil.Logger(t))
	ctx := context.Background()

	author := testutil.SeedUser(t, ctx, tx, "Author")
	post := testutil.SeedPost(t, ctx, tx, testutil.PostSpec{
		AuthorID: author.ID, Topics: []string{"math"}, Age: time.Hour,
	})

	userID := uuid.New()
	duration := 8
	view := &domain.PostView{PostID: post.ID, UserID: &userID, Duration: &duration, Source: "feed"}
	if err := repo.RecordAction(ctx, userID, []string{"math"}, domain.ActionView, 1, 8, view); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}

	var count int64
	if err := tx.Model(&domain.PostView{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		t.Fatalf("count views: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d view rows, want 1", count)
	}
}

func TestSignalRepoActiveUserIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSignalRepo(tx, testutil.Logger(t))
	ctx := context.Background()

	if err := tx.Exec("DELETE FROM user_topic_signal").Error; err != nil {
		t.Fatalf("clear signals: %v", err)
	}

	older := uuid.New()
	newer := uuid.New()
	testutil.SeedSignal(t, ctx, tx, older, "math", 5)
	tx.Model(&domain.UserTopicSignal{}).
		Where("user_id = ?", older).
		Update("last_interaction", time.Now().Add(-time.Hour))
	testutil.SeedSignal(t, ctx, tx, newer, "art", 5)

	ids, err := repo.ActiveUserIDs(ctx, 10)
	if err != nil {
		t.Fatalf("ActiveUserIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != newer || ids[1] != older {
		t.Errorf("active users out of order: %v", ids)
	}
}
