package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
)

// jsonb tag membership tests; topic_tags is a jsonb array of lowercase
// strings.
const (
	tagOverlap   = `EXISTS (SELECT 1 FROM jsonb_array_elements_text(post.topic_tags) AS tag WHERE tag IN ?)`
	tagNoOverlap = `NOT EXISTS (SELECT 1 FROM jsonb_array_elements_text(post.topic_tags) AS tag WHERE tag IN ?)`
)

type RelevanceQuery struct {
	Since      time.Time
	FreshSince time.Time
	Subject    string

	// Non-nil restricts candidates to these authors (FOLLOWING mode).
	AuthorIDs  []uuid.UUID
	ExcludeIDs []uuid.UUID

	EstablishedLimit int
	FreshLimit       int
}

type TrendingQuery struct {
	Since         time.Time
	MinTrending   float64
	Subject       string
	ExcludeIDs    []uuid.UUID
	Limit         int
}

type ExploreQuery struct {
	Since          time.Time
	Subject        string
	ExcludeAuthors []uuid.UUID
	ExcludeTopics  []string
	ExcludeIDs     []uuid.UUID
	Limit          int
}

type RecentQuery struct {
	Subject string
	Offset  int
	Limit   int
}

type PostRepo interface {
	RelevanceCandidates(ctx context.Context, q RelevanceQuery) ([]*domain.Post, error)
	TrendingCandidates(ctx context.Context, q TrendingQuery) ([]*domain.Post, error)
	ExploreCandidates(ctx context.Context, q ExploreQuery) ([]*domain.Post, error)
	RecentPage(ctx context.Context, q RecentQuery) ([]*domain.Post, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error)
	ActiveSince(ctx context.Context, since time.Time) ([]*domain.Post, error)
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

func (r *postRepo) candidateBase(ctx context.Context, since time.Time, subject string, excludeIDs []uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&domain.Post{}).
		Preload("Author").
		Preload("Score").
		Where("post.created_at >= ?", since).
		Where("post.visibility IN ?", domain.FeedVisibilities)
	if len(excludeIDs) > 0 {
		q = q.Where("post.id NOT IN ?", excludeIDs)
	}
	if subject != "" {
		q = q.Where(tagOverlap, []string{subject})
	}
	return q
}

// RelevanceCandidates merges an established subset (old enough to carry an
// engagement signal, ordered pinned-first then by cached trending score)
// with a fresh subset (created in the last few hours, recency only) so
// brand-new posts stay eligible. The established subset wins on duplicates.
func (r *postRepo) RelevanceCandidates(ctx context.Context, q RelevanceQuery) ([]*domain.Post, error) {
	if q.AuthorIDs != nil && len(q.AuthorIDs) == 0 {
		return []*domain.Post{}, nil
	}

	established := r.candidateBase(ctx, q.Since, q.Subject, q.ExcludeIDs)
	if q.AuthorIDs != nil {
		established = established.Where("post.author_id IN ?", q.AuthorIDs)
	}
	var establishedRows []*domain.Post
	if err := established.
		Order("post.is_pinned DESC").
		Order("post.trending_score DESC").
		Order("post.created_at DESC").
		Limit(q.EstablishedLimit).
		Find(&establishedRows).Error; err != nil {
		return nil, err
	}

	fresh := r.candidateBase(ctx, q.FreshSince, q.Subject, q.ExcludeIDs)
	if q.AuthorIDs != nil {
		fresh = fresh.Where("post.author_id IN ?", q.AuthorIDs)
	}
	var freshRows []*domain.Post
	if err := fresh.
		Order("post.created_at DESC").
		Limit(q.FreshLimit).
		Find(&freshRows).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(establishedRows))
	merged := make([]*domain.Post, 0, len(establishedRows)+len(freshRows))
	for _, p := range establishedRows {
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}
	for _, p := range freshRows {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		merged = append(merged, p)
	}
	return merged, nil
}

func (r *postRepo) TrendingCandidates(ctx context.Context, q TrendingQuery) ([]*domain.Post, error) {
	var rows []*domain.Post
	err := r.candidateBase(ctx, q.Since, q.Subject, q.ExcludeIDs).
		Where("post.trending_score > ?", q.MinTrending).
		Order("post.trending_score DESC").
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postRepo) ExploreCandidates(ctx context.Context, q ExploreQuery) ([]*domain.Post, error) {
	query := r.candidateBase(ctx, q.Since, q.Subject, q.ExcludeIDs)
	if len(q.ExcludeAuthors) > 0 {
		query = query.Where("post.author_id NOT IN ?", q.ExcludeAuthors)
	}
	// The subject filter overrides topic novelty; with no filter, posts on
	// the user's known topics are excluded to surface new material.
	if q.Subject == "" && len(q.ExcludeTopics) > 0 {
		query = query.Where(tagNoOverlap, q.ExcludeTopics)
	}
	var rows []*domain.Post
	err := query.
		Order("post.likes_count DESC").
		Order("post.created_at DESC").
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postRepo) RecentPage(ctx context.Context, q RecentQuery) ([]*domain.Post, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("post.visibility IN ?", domain.FeedVisibilities)
	if q.Subject != "" {
		base = base.Where(tagOverlap, []string{q.Subject})
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*domain.Post
	err := base.Session(&gorm.Session{}).
		Preload("Author").
		Order("post.is_pinned DESC").
		Order("post.created_at DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *postRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Post
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// GetByIDs returns posts in the order of ids; missing ids are skipped.
func (r *postRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return []*domain.Post{}, nil
	}
	var rows []*domain.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Score").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Post, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	ordered := make([]*domain.Post, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *postRepo) ActiveSince(ctx context.Context, since time.Time) ([]*domain.Post, error) {
	var rows []*domain.Post
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Where("visibility IN ?", domain.FeedVisibilities).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
