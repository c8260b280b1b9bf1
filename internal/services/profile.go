package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	feedrepos "github.com/stunity/feed-service/internal/data/repos/feed"
	"github.com/stunity/feed-service/internal/platform/logger"
	"github.com/stunity/feed-service/internal/ranking"
)

const (
	topSignalLimit = 50
	likeScanLimit  = 200
	enrollmentLimit = 20

	interestSeedScore = 20
	skillSeedScore    = 15

	likeAffinityWeight = 3
	authorAffinityCap  = 100
)

// ProfileService assembles the per-request interest snapshot a feed call
// scores against.
type ProfileService interface {
	Build(ctx context.Context, userID uuid.UUID) (*ranking.Profile, error)
}

type profileService struct {
	log     *logger.Logger
	signals feedrepos.SignalRepo
	social  feedrepos.SocialRepo
}

func NewProfileService(log *logger.Logger, signals feedrepos.SignalRepo, social feedrepos.SocialRepo) ProfileService {
	return &profileService{
		log:     log.With("service", "ProfileService"),
		signals: signals,
		social:  social,
	}
}

// Build fetches learned topic signals and follow edges (required), then
// layers on declared interests, author affinity, and enrolled-course topics
// (each optional; failures degrade to empty).
func (s *profileService) Build(ctx context.Context, userID uuid.UUID) (*ranking.Profile, error) {
	profile := ranking.NewProfile(userID)

	signals, err := s.signals.TopByUser(ctx, userID, topSignalLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch topic signals: %w", err)
	}
	for _, sig := range signals {
		topic := strings.ToLower(sig.TopicID)
		profile.Topics[topic] = sig.Score
		profile.TopicDwell[topic] = sig.AvgViewDuration
		profile.OrderedTopics = append(profile.OrderedTopics, topic)
	}

	followIDs, err := s.social.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch follow edges: %w", err)
	}
	profile.SetFollowing(followIDs)

	// Declared interests/skills seed topics the user has not interacted
	// with yet; learned signals always win.
	interests, skills, err := s.social.UserInterests(ctx, userID)
	if err != nil {
		s.log.Warn("interest lookup failed, continuing without seeds", "user_id", userID, "error", err)
	} else {
		s.seedTopics(profile, interests, interestSeedScore)
		s.seedTopics(profile, skills, skillSeedScore)
	}

	likedAuthors, err := s.social.RecentLikedAuthors(ctx, userID, likeScanLimit)
	if err != nil {
		s.log.Warn("author affinity lookup failed, continuing without it", "user_id", userID, "error", err)
	} else {
		for _, authorID := range likedAuthors {
			aff := profile.AuthorAffinity[authorID] + likeAffinityWeight
			if aff > authorAffinityCap {
				aff = authorAffinityCap
			}
			profile.AuthorAffinity[authorID] = aff
		}
	}

	enrollments, err := s.social.EnrolledCourses(ctx, userID, enrollmentLimit)
	if err != nil {
		s.log.Warn("enrollment lookup failed, continuing without learning context", "user_id", userID, "error", err)
	} else {
		for _, e := range enrollments {
			if e.Course == nil {
				continue
			}
			for _, tag := range e.Course.Tags {
				if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
					profile.EnrolledTopics[t] = struct{}{}
				}
			}
			if c := strings.ToLower(strings.TrimSpace(e.Course.Category)); c != "" {
				profile.EnrolledTopics[c] = struct{}{}
			}
		}
	}

	return profile, nil
}

func (s *profileService) seedTopics(profile *ranking.Profile, topics []string, score float64) {
	for _, raw := range topics {
		topic := strings.ToLower(strings.TrimSpace(raw))
		if topic == "" {
			continue
		}
		if _, known := profile.Topics[topic]; known {
			continue
		}
		profile.Topics[topic] = score
		profile.OrderedTopics = append(profile.OrderedTopics, topic)
	}
}
