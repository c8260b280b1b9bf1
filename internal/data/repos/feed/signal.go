package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
)

type SignalRepo interface {
	TopByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.UserTopicSignal, error)

	// RecordAction atomically upserts one signal row per topic and, when
	// view is non-nil, inserts the view record in the same transaction.
	RecordAction(ctx context.Context, userID uuid.UUID, topics []string, action domain.FeedAction, weight float64, duration float64, view *domain.PostView) error

	// ActiveUserIDs returns the most recently interacting users, for feed
	// precomputation.
	ActiveUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

type signalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSignalRepo(db *gorm.DB, baseLog *logger.Logger) SignalRepo {
	return &signalRepo{db: db, log: baseLog.With("repo", "SignalRepo")}
}

func (r *signalRepo) TopByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.UserTopicSignal, error) {
	var rows []*domain.UserTopicSignal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func counterColumn(action domain.FeedAction) (string, error) {
	switch action {
	case domain.ActionView:
		return "view_count", nil
	case domain.ActionLike:
		return "like_count", nil
	case domain.ActionComment:
		return "comment_count", nil
	case domain.ActionShare:
		return "share_count", nil
	case domain.ActionBookmark:
		return "bookmark_count", nil
	}
	return "", fmt.Errorf("unknown feed action %q", action)
}

func (r *signalRepo) RecordAction(ctx context.Context, userID uuid.UUID, topics []string, action domain.FeedAction, weight float64, duration float64, view *domain.PostView) error {
	if userID == uuid.Nil || len(topics) == 0 && view == nil {
		return nil
	}
	counterCol, err := counterColumn(action)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, topic := range topics {
			row := &domain.UserTopicSignal{
				ID:              uuid.New(),
				UserID:          userID,
				TopicID:         topic,
				Score:           weight,
				LastInteraction: now,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			switch action {
			case domain.ActionView:
				row.ViewCount = 1
				row.AvgViewDuration = duration
			case domain.ActionLike:
				row.LikeCount = 1
			case domain.ActionComment:
				row.CommentCount = 1
			case domain.ActionShare:
				row.ShareCount = 1
			case domain.ActionBookmark:
				row.BookmarkCount = 1
			}

			assignments := map[string]interface{}{
				"score":            gorm.Expr("user_topic_signal.score + ?", weight),
				counterCol:         gorm.Expr("user_topic_signal." + counterCol + " + 1"),
				"last_interaction": now,
				"updated_at":       now,
			}
			if action == domain.ActionView && duration > 0 {
				// Running average: fold in 10% of each observed duration.
				assignments["avg_view_duration"] = gorm.Expr("user_topic_signal.avg_view_duration + ?", duration*0.1)
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
				DoUpdates: clause.Assignments(assignments),
			}).Create(row).Error; err != nil {
				return err
			}
		}

		if view != nil {
			if err := tx.Create(view).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *signalRepo) ActiveUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.UserTopicSignal{}).
		Select("user_id").
		Group("user_id").
		Order("MAX(last_interaction) DESC").
		Limit(limit).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
