package domain

import (
	"time"

	"github.com/google/uuid"
)

type FeedAction string

const (
	ActionView     FeedAction = "VIEW"
	ActionLike     FeedAction = "LIKE"
	ActionComment  FeedAction = "COMMENT"
	ActionShare    FeedAction = "SHARE"
	ActionBookmark FeedAction = "BOOKMARK"
)

func (a FeedAction) Valid() bool {
	switch a {
	case ActionView, ActionLike, ActionComment, ActionShare, ActionBookmark:
		return true
	}
	return false
}

// UserTopicSignal accumulates one user's interest in one topic. Rows are
// created on first interaction and only ever incremented after that.
type UserTopicSignal struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_signal_user_topic;column:user_id" json:"user_id"`
	TopicID string    `gorm:"not null;uniqueIndex:idx_signal_user_topic;column:topic_id" json:"topic_id"`

	Score float64 `gorm:"not null;default:0;index;column:score" json:"score"`

	ViewCount     int `gorm:"not null;default:0;column:view_count" json:"view_count"`
	LikeCount     int `gorm:"not null;default:0;column:like_count" json:"like_count"`
	CommentCount  int `gorm:"not null;default:0;column:comment_count" json:"comment_count"`
	ShareCount    int `gorm:"not null;default:0;column:share_count" json:"share_count"`
	BookmarkCount int `gorm:"not null;default:0;column:bookmark_count" json:"bookmark_count"`

	// Smoothed running average, fed 10% of each observed view duration.
	AvgViewDuration float64 `gorm:"not null;default:0;column:avg_view_duration" json:"avg_view_duration"`

	LastInteraction time.Time `gorm:"not null;default:now();index;column:last_interaction" json:"last_interaction"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserTopicSignal) TableName() string { return "user_topic_signal" }
