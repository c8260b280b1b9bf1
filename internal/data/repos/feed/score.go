package feed

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
)

type ScoreRepo interface {
	// PersistBatch upserts score-cache rows and refreshes each post's
	// denormalized trending score in one transaction. The caller bounds
	// batch size.
	PersistBatch(ctx context.Context, scores []*domain.PostScore) error
}

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return &scoreRepo{db: db, log: baseLog.With("repo", "ScoreRepo")}
}

func (r *scoreRepo) PersistBatch(ctx context.Context, scores []*domain.PostScore) error {
	if len(scores) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"engagement_score", "quality_score", "trending_score", "decay_factor", "computed_at",
			}),
		}).Create(&scores).Error; err != nil {
			return err
		}

		for _, s := range scores {
			if err := tx.Model(&domain.Post{}).
				Where("id = ?", s.PostID).
				Update("trending_score", s.TrendingScore).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
