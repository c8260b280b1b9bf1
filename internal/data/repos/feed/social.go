package feed

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
)

type SocialRepo interface {
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// RecentLikedAuthors returns the author id of each of the user's most
	// recently liked posts, newest first, one entry per like.
	RecentLikedAuthors(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)

	// FollowedReactions counts likes/comments on the given posts made by
	// the given (followed) users.
	FollowedReactions(ctx context.Context, postIDs []uuid.UUID, followingIDs []uuid.UUID) (map[uuid.UUID]domain.ReactionCounts, error)

	EnrolledCourses(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CourseEnrollment, error)
	UserInterests(ctx context.Context, userID uuid.UUID) (interests []string, skills []string, err error)
}

type socialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSocialRepo(db *gorm.DB, baseLog *logger.Logger) SocialRepo {
	return &socialRepo{db: db, log: baseLog.With("repo", "SocialRepo")}
}

func (r *socialRepo) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *socialRepo) RecentLikedAuthors(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.PostLike{}).
		Joins("JOIN post ON post.id = post_like.post_id").
		Where("post_like.user_id = ?", userID).
		Order("post_like.created_at DESC").
		Limit(limit).
		Pluck("post.author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type reactionRow struct {
	PostID uuid.UUID
	N      int
}

func (r *socialRepo) FollowedReactions(ctx context.Context, postIDs []uuid.UUID, followingIDs []uuid.UUID) (map[uuid.UUID]domain.ReactionCounts, error) {
	out := make(map[uuid.UUID]domain.ReactionCounts, len(postIDs))
	if len(postIDs) == 0 || len(followingIDs) == 0 {
		return out, nil
	}

	var likeRows []reactionRow
	err := r.db.WithContext(ctx).
		Model(&domain.PostLike{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Where("user_id IN ?", followingIDs).
		Group("post_id").
		Scan(&likeRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range likeRows {
		rc := out[row.PostID]
		rc.Likes = row.N
		out[row.PostID] = rc
	}

	var commentRows []reactionRow
	err = r.db.WithContext(ctx).
		Model(&domain.PostComment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Where("author_id IN ?", followingIDs).
		Group("post_id").
		Scan(&commentRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range commentRows {
		rc := out[row.PostID]
		rc.Comments = row.N
		out[row.PostID] = rc
	}

	return out, nil
}

func (r *socialRepo) EnrolledCourses(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CourseEnrollment, error) {
	var rows []*domain.CourseEnrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *socialRepo) UserInterests(ctx context.Context, userID uuid.UUID) ([]string, []string, error) {
	var row domain.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil, nil
	}
	return row.Interests, row.Skills, nil
}
