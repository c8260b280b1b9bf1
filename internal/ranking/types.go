package ranking

import (
	"sort"

	"github.com/stunity/feed-service/internal/domain"
)

type Mode string

const (
	ModeForYou    Mode = "FOR_YOU"
	ModeFollowing Mode = "FOLLOWING"
	ModeRecent    Mode = "RECENT"
)

func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeFollowing:
		return ModeFollowing
	case ModeRecent:
		return ModeRecent
	default:
		return ModeForYou
	}
}

// Breakdown holds the six normalized factors plus the additive velocity
// bonus that produced a final score. Factors are in [0,1]; the bonus is the
// raw [0,1] velocity before its 0.05 multiplier.
type Breakdown struct {
	Engagement      float64 `json:"engagement"`
	Relevance       float64 `json:"relevance"`
	Quality         float64 `json:"quality"`
	Recency         float64 `json:"recency"`
	SocialProof     float64 `json:"social_proof"`
	LearningContext float64 `json:"learning_context"`
	VelocityBonus   float64 `json:"velocity_bonus"`
}

// ScoredPost pairs a candidate with its computed score. Lives only for the
// duration of one feed-generation call.
type ScoredPost struct {
	Post      *domain.Post `json:"post"`
	Score     float64      `json:"score"`
	Breakdown Breakdown    `json:"breakdown"`
}

// SortByScore orders scored posts descending in place.
func SortByScore(posts []ScoredPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Score > posts[j].Score
	})
}

var actionWeights = map[domain.FeedAction]float64{
	domain.ActionView:     1,
	domain.ActionLike:     3,
	domain.ActionComment:  5,
	domain.ActionShare:    7,
	domain.ActionBookmark: 4,
}

func ActionWeight(a domain.FeedAction) float64 {
	if w, ok := actionWeights[a]; ok {
		return w
	}
	return 1
}
