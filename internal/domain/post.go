package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Post types mirror the platform's closed content-kind enum. The engine
// treats unknown values as base-weighted rather than rejecting them.
const (
	PostTypeArticle       = "ARTICLE"
	PostTypeCourse        = "COURSE"
	PostTypeQuiz          = "QUIZ"
	PostTypeQuestion      = "QUESTION"
	PostTypeExam          = "EXAM"
	PostTypeAnnouncement  = "ANNOUNCEMENT"
	PostTypeAssignment    = "ASSIGNMENT"
	PostTypePoll          = "POLL"
	PostTypeResource      = "RESOURCE"
	PostTypeProject       = "PROJECT"
	PostTypeTutorial      = "TUTORIAL"
	PostTypeResearch      = "RESEARCH"
	PostTypeAchievement   = "ACHIEVEMENT"
	PostTypeReflection    = "REFLECTION"
	PostTypeCollaboration = "COLLABORATION"
)

const (
	VisibilityPublic  = "PUBLIC"
	VisibilitySchool  = "SCHOOL"
	VisibilityClass   = "CLASS"
	VisibilityPrivate = "PRIVATE"
)

// FeedVisibilities are the visibility levels eligible for feed candidates.
var FeedVisibilities = []string{VisibilityPublic, VisibilitySchool}

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostType  string    `gorm:"not null;default:'ARTICLE';index;column:post_type" json:"post_type"`
	Title     string    `gorm:"column:title" json:"title"`
	Content   string    `gorm:"type:text;column:content" json:"content"`

	// Stored lowercase; matched against UserTopicSignal.TopicID.
	TopicTags datatypes.JSONSlice[string] `gorm:"column:topic_tags" json:"topic_tags"`
	MediaURLs datatypes.JSONSlice[string] `gorm:"column:media_urls" json:"media_urls"`

	Visibility string `gorm:"not null;default:'PUBLIC';index;column:visibility" json:"visibility"`
	IsPinned   bool   `gorm:"not null;default:false;column:is_pinned" json:"is_pinned"`

	LikesCount    int `gorm:"not null;default:0;column:likes_count" json:"likes_count"`
	CommentsCount int `gorm:"not null;default:0;column:comments_count" json:"comments_count"`
	SharesCount   int `gorm:"not null;default:0;column:shares_count" json:"shares_count"`
	ViewsCount    int `gorm:"not null;default:0;column:views_count" json:"views_count"`

	// Denormalized from PostScore by the refresh job so candidate queries
	// can order on it without a join.
	TrendingScore float64 `gorm:"not null;default:0;index;column:trending_score" json:"trending_score"`

	Score *PostScore `gorm:"foreignKey:PostID" json:"score,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Post) TableName() string { return "post" }

func (p *Post) AgeHours(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Hours()
}

type PostLike struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index;column:post_id" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (PostLike) TableName() string { return "post_like" }

type PostComment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index;column:post_id" json:"post_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Content   string    `gorm:"type:text;column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PostComment) TableName() string { return "post_comment" }

// PostView rows are insert-only; the engine never updates or deletes them.
type PostView struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PostID    uuid.UUID  `gorm:"type:uuid;not null;index;column:post_id" json:"post_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	Duration  *int       `gorm:"column:duration" json:"duration,omitempty"`
	Source    string     `gorm:"not null;default:'feed';column:source" json:"source"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (PostView) TableName() string { return "post_view" }

// ReactionCounts carries per-post like/comment counts restricted to a viewer's
// followed users, for social-proof scoring. Not persisted.
type ReactionCounts struct {
	Likes    int
	Comments int
}
