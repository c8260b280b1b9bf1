package services

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	feedrepos "github.com/stunity/feed-service/internal/data/repos/feed"
	"github.com/stunity/feed-service/internal/domain"
	"github.com/stunity/feed-service/internal/platform/logger"
	"github.com/stunity/feed-service/internal/ranking"
)

const defaultViewDuration = 3

// ViewEvent is one entry of a bulk impression report.
type ViewEvent struct {
	PostID   uuid.UUID `json:"postId"`
	Duration float64   `json:"duration"`
	Source   string    `json:"source"`
}

// TrackerService records engagement actions against the signal store. All
// methods are best-effort: failures are logged, never surfaced, so tracking
// can run as a side effect of request handling.
type TrackerService interface {
	TrackAction(ctx context.Context, userID, postID uuid.UUID, action domain.FeedAction, duration float64, source string)
	TrackViews(ctx context.Context, userID uuid.UUID, views []ViewEvent)
}

type trackerService struct {
	log     *logger.Logger
	posts   feedrepos.PostRepo
	signals feedrepos.SignalRepo
}

func NewTrackerService(log *logger.Logger, posts feedrepos.PostRepo, signals feedrepos.SignalRepo) TrackerService {
	return &trackerService{
		log:     log.With("service", "TrackerService"),
		posts:   posts,
		signals: signals,
	}
}

func (s *trackerService) TrackAction(ctx context.Context, userID, postID uuid.UUID, action domain.FeedAction, duration float64, source string) {
	if !action.Valid() {
		s.log.Warn("unknown feed action, dropping", "action", action, "user_id", userID)
		return
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		s.log.Error("post lookup failed, dropping action", "post_id", postID, "error", err)
		return
	}
	if post == nil {
		return
	}

	topics := make([]string, 0, len(post.TopicTags))
	for _, raw := range post.TopicTags {
		if t := strings.ToLower(strings.TrimSpace(raw)); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return
	}

	var view *domain.PostView
	if action == domain.ActionView {
		view = &domain.PostView{
			PostID: post.ID,
			UserID: &userID,
			Source: source,
		}
		if view.Source == "" {
			view.Source = "feed"
		}
		if duration > 0 {
			d := int(math.Round(duration))
			view.Duration = &d
		}
	}

	weight := ranking.ActionWeight(action)
	if err := s.signals.RecordAction(ctx, userID, topics, action, weight, duration, view); err != nil {
		s.log.Error("signal update failed, dropping action",
			"user_id", userID, "post_id", postID, "action", action, "error", err)
	}
}

// TrackViews records a batch of impressions; entries without a duration get
// a small default so dwell averages stay meaningful.
func (s *trackerService) TrackViews(ctx context.Context, userID uuid.UUID, views []ViewEvent) {
	for _, v := range views {
		if v.PostID == uuid.Nil {
			continue
		}
		duration := v.Duration
		if duration <= 0 {
			duration = defaultViewDuration
		}
		source := v.Source
		if source == "" {
			source = "feed"
		}
		s.TrackAction(ctx, userID, v.PostID, domain.ActionView, duration, source)
	}
}
