package domain

import (
	"time"

	"github.com/google/uuid"
)

// PostScore caches the expensive score components per post. Written only by
// the refresh job; read opportunistically by per-request scoring.
type PostScore struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PostID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:post_id" json:"post_id"`

	EngagementScore float64 `gorm:"not null;default:0;column:engagement_score" json:"engagement_score"`
	QualityScore    float64 `gorm:"not null;default:0;column:quality_score" json:"quality_score"`
	TrendingScore   float64 `gorm:"not null;default:0;column:trending_score" json:"trending_score"`
	DecayFactor     float64 `gorm:"not null;default:0;column:decay_factor" json:"decay_factor"`

	ComputedAt time.Time `gorm:"not null;default:now();column:computed_at" json:"computed_at"`
}

func (PostScore) TableName() string { return "post_score" }
