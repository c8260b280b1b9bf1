package ranking

import (
	"github.com/google/uuid"
)

// Profile is a per-request snapshot of one user's interest signals. Built
// fresh for each feed call and never mutated afterwards.
type Profile struct {
	UserID uuid.UUID

	// Topic -> cumulative interest score (learned signals take precedence
	// over profile-declared seeds).
	Topics map[string]float64

	// Topic -> average view duration in seconds, for dwell amplification.
	TopicDwell map[string]float64

	// Topics in descending signal-score order, seeds after learned ones.
	// Explore retrieval excludes the head of this list.
	OrderedTopics []string

	FollowingList []uuid.UUID
	following     map[uuid.UUID]struct{}

	// Author -> affinity in [0,100], derived from recent likes.
	AuthorAffinity map[uuid.UUID]float64

	// Lowercased tags/categories of enrolled courses.
	EnrolledTopics map[string]struct{}
}

func NewProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:         userID,
		Topics:         map[string]float64{},
		TopicDwell:     map[string]float64{},
		following:      map[uuid.UUID]struct{}{},
		AuthorAffinity: map[uuid.UUID]float64{},
		EnrolledTopics: map[string]struct{}{},
	}
}

func (p *Profile) SetFollowing(ids []uuid.UUID) {
	p.FollowingList = ids
	p.following = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		p.following[id] = struct{}{}
	}
}

func (p *Profile) Follows(id uuid.UUID) bool {
	_, ok := p.following[id]
	return ok
}

// TopTopics returns up to n known topics, strongest first.
func (p *Profile) TopTopics(n int) []string {
	if n >= len(p.OrderedTopics) {
		return p.OrderedTopics
	}
	return p.OrderedTopics[:n]
}
