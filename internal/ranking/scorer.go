package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/stunity/feed-service/internal/domain"
)

const (
	// RecencyLambda gives an exponential half-life of roughly 24 hours
	// (ln 2 / 24).
	RecencyLambda = 0.029

	// PinBoost dominates every weighted term so pinned posts always sort
	// first.
	PinBoost = 1000.0

	velocityWeight = 0.05

	// Raw weighted engagement at which the soft-cap reaches half of its
	// maximum.
	engagementHalfMax = 50.0
)

type Scorer struct {
	weights WeightTable
	now     func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights(), now: time.Now}
}

// NewScorerAt fixes the scorer's clock; recency and velocity depend on it.
func NewScorerAt(now func() time.Time) *Scorer {
	return &Scorer{weights: DefaultWeights(), now: now}
}

func (s *Scorer) Weights() WeightTable { return s.weights }

// Score computes the weighted six-factor score for one candidate.
// reactions carries like/comment counts restricted to the viewer's followed
// users (social proof).
func (s *Scorer) Score(post *domain.Post, profile *Profile, reactions domain.ReactionCounts) ScoredPost {
	now := s.now()

	engagement := s.engagement(post)
	relevance := s.relevance(post, profile)
	quality := s.quality(post)
	recency := s.recency(post, now)
	socialProof := s.socialProof(reactions)
	learning := s.learningContext(post, profile)
	velocity := s.velocity(post, now)

	w := s.weights.For(post.PostType)

	var pin float64
	if post.IsPinned {
		pin = PinBoost
	}

	score := engagement*w.Engagement +
		relevance*w.Relevance +
		quality*w.Quality +
		recency*w.Recency +
		socialProof*w.SocialProof +
		learning*w.LearningContext +
		velocity*velocityWeight +
		pin

	return ScoredPost{
		Post:  post,
		Score: score,
		Breakdown: Breakdown{
			Engagement:      engagement,
			Relevance:       relevance,
			Quality:         quality,
			Recency:         recency,
			SocialProof:     socialProof,
			LearningContext: learning,
			VelocityBonus:   velocity,
		},
	}
}

func (s *Scorer) engagement(post *domain.Post) float64 {
	if post.Score != nil && post.Score.EngagementScore > 0 {
		return post.Score.EngagementScore
	}
	return EngagementScore(post.LikesCount, post.CommentsCount, post.SharesCount, post.ViewsCount)
}

// EngagementScore applies the weighted sum with a soft cap approaching 1.0.
// Shared with the refresh job.
func EngagementScore(likes, comments, shares, views int) float64 {
	raw := float64(likes)*3 + float64(comments)*5 + float64(shares)*7 + float64(views)*0.5
	return raw / (raw + engagementHalfMax)
}

func (s *Scorer) relevance(post *domain.Post, profile *Profile) float64 {
	var accum float64
	matched := 0
	for _, tag := range post.TopicTags {
		key := strings.ToLower(tag)
		w, ok := profile.Topics[key]
		if !ok {
			continue
		}
		// Topics the user actually lingers on count for more: up to
		// 1.5x as average dwell approaches 60s.
		mult := 1 + 0.5*math.Min(profile.TopicDwell[key]/60, 1)
		accum += w * mult
		matched++
	}

	var topicScore float64
	if matched > 0 {
		topicScore = math.Min(accum/(float64(matched)*100), 1.0)
	}

	var authorTerm float64
	if aff, ok := profile.AuthorAffinity[post.AuthorID]; ok && aff > 0 {
		authorTerm = math.Min(aff/100, 0.4)
	} else if profile.Follows(post.AuthorID) {
		authorTerm = 0.2
	}

	return math.Min(topicScore+authorTerm, 1.0)
}

func (s *Scorer) quality(post *domain.Post) float64 {
	if post.Score != nil && post.Score.QualityScore > 0 {
		return post.Score.QualityScore
	}
	return ContentQuality(post)
}

// ContentQuality is the per-type baseline plus content heuristics, used on
// the inline scoring path. The batch refresh persists QualityBaseline only.
func ContentQuality(post *domain.Post) float64 {
	score := QualityBaseline(post.PostType)
	if len(post.MediaURLs) > 0 {
		score += 0.10
	}
	if len(post.Content) > 200 {
		score += 0.05
	}
	if len(post.Content) > 500 {
		score += 0.05
	}
	if post.Author != nil && post.Author.IsVerified {
		score += 0.10
	}
	if post.Title != "" {
		score += 0.05
	}
	return math.Min(score, 1.0)
}

func (s *Scorer) recency(post *domain.Post, now time.Time) float64 {
	return DecayFactor(post.AgeHours(now))
}

// DecayFactor is the exponential recency decay, shared with the refresh job.
func DecayFactor(ageHours float64) float64 {
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Exp(-RecencyLambda * ageHours)
}

func (s *Scorer) socialProof(r domain.ReactionCounts) float64 {
	if r.Likes+r.Comments == 0 {
		return 0
	}
	return math.Min((float64(r.Likes)*2+float64(r.Comments)*3)/15, 1.0)
}

func (s *Scorer) learningContext(post *domain.Post, profile *Profile) float64 {
	if len(profile.EnrolledTopics) == 0 || len(post.TopicTags) == 0 {
		return 0
	}
	matched := 0
	for _, tag := range post.TopicTags {
		if _, ok := profile.EnrolledTopics[strings.ToLower(tag)]; ok {
			matched++
		}
	}
	score := float64(matched) / float64(len(post.TopicTags))
	if IsEducationalType(post.PostType) {
		score *= 1.3
	}
	return math.Min(score, 1.0)
}

func (s *Scorer) velocity(post *domain.Post, now time.Time) float64 {
	ageHours := post.AgeHours(now)
	if ageHours > 24 {
		return 0
	}
	perHour := float64(post.LikesCount+post.CommentsCount) / math.Max(ageHours, 0.5)
	return math.Min(perHour/10, 1.0)
}
