package ranking

import "github.com/stunity/feed-service/internal/domain"

// Weights is the per-content-type factor vector. The six fields sum to 1.0
// for every entry in the table; the velocity bonus and pin boost are applied
// outside this normalized sum.
type Weights struct {
	Engagement      float64
	Relevance       float64
	Quality         float64
	Recency         float64
	SocialProof     float64
	LearningContext float64
}

func (w Weights) Sum() float64 {
	return w.Engagement + w.Relevance + w.Quality + w.Recency + w.SocialProof + w.LearningContext
}

// WeightTable maps post types to weight vectors, with a base fallback for
// types without an override.
type WeightTable struct {
	base      Weights
	overrides map[string]Weights
}

func (t WeightTable) For(postType string) Weights {
	if w, ok := t.overrides[postType]; ok {
		return w
	}
	return t.base
}

func (t WeightTable) Base() Weights { return t.base }

func (t WeightTable) Types() []string {
	types := make([]string, 0, len(t.overrides))
	for k := range t.overrides {
		types = append(types, k)
	}
	return types
}

// DefaultWeights builds the immutable production weight table. Structured
// learning content leans on relevance and learning context; ephemeral types
// like questions and announcements lean on recency.
func DefaultWeights() WeightTable {
	return WeightTable{
		base: Weights{Engagement: 0.25, Relevance: 0.25, Quality: 0.15, Recency: 0.15, SocialProof: 0.10, LearningContext: 0.10},
		overrides: map[string]Weights{
			domain.PostTypeCourse:       {Engagement: 0.15, Relevance: 0.35, Quality: 0.15, Recency: 0.05, SocialProof: 0.05, LearningContext: 0.25},
			domain.PostTypeExam:         {Engagement: 0.10, Relevance: 0.35, Quality: 0.10, Recency: 0.15, SocialProof: 0.05, LearningContext: 0.25},
			domain.PostTypeAssignment:   {Engagement: 0.10, Relevance: 0.30, Quality: 0.10, Recency: 0.20, SocialProof: 0.05, LearningContext: 0.25},
			domain.PostTypeQuiz:         {Engagement: 0.20, Relevance: 0.30, Quality: 0.15, Recency: 0.10, SocialProof: 0.05, LearningContext: 0.20},
			domain.PostTypeTutorial:     {Engagement: 0.20, Relevance: 0.30, Quality: 0.20, Recency: 0.10, SocialProof: 0.05, LearningContext: 0.15},
			domain.PostTypeResource:     {Engagement: 0.15, Relevance: 0.30, Quality: 0.20, Recency: 0.10, SocialProof: 0.05, LearningContext: 0.20},
			domain.PostTypeResearch:     {Engagement: 0.15, Relevance: 0.30, Quality: 0.25, Recency: 0.05, SocialProof: 0.05, LearningContext: 0.20},
			domain.PostTypeQuestion:     {Engagement: 0.15, Relevance: 0.20, Quality: 0.10, Recency: 0.35, SocialProof: 0.10, LearningContext: 0.10},
			domain.PostTypeAnnouncement: {Engagement: 0.15, Relevance: 0.15, Quality: 0.10, Recency: 0.40, SocialProof: 0.15, LearningContext: 0.05},
			domain.PostTypeArticle:      {Engagement: 0.25, Relevance: 0.25, Quality: 0.15, Recency: 0.15, SocialProof: 0.10, LearningContext: 0.10},
			domain.PostTypePoll:         {Engagement: 0.25, Relevance: 0.20, Quality: 0.10, Recency: 0.25, SocialProof: 0.15, LearningContext: 0.05},
		},
	}
}

// qualityBaselines score education-dense types higher than low-effort ones.
var qualityBaselines = map[string]float64{
	domain.PostTypeCourse:        0.85,
	domain.PostTypeQuiz:          0.80,
	domain.PostTypeTutorial:      0.80,
	domain.PostTypeProject:       0.75,
	domain.PostTypeResearch:      0.75,
	domain.PostTypeResource:      0.70,
	domain.PostTypeExam:          0.70,
	domain.PostTypeAssignment:    0.65,
	domain.PostTypeCollaboration: 0.55,
	domain.PostTypeArticle:       0.50,
	domain.PostTypeAnnouncement:  0.50,
	domain.PostTypeQuestion:      0.45,
	domain.PostTypeReflection:    0.45,
	domain.PostTypeAchievement:   0.45,
	domain.PostTypePoll:          0.40,
}

const defaultQualityBaseline = 0.40

// QualityBaseline returns the per-type quality floor used both by the scorer
// and the batch refresh job.
func QualityBaseline(postType string) float64 {
	if q, ok := qualityBaselines[postType]; ok {
		return q
	}
	return defaultQualityBaseline
}

// educationalTypes get the learning-context multiplier.
var educationalTypes = map[string]struct{}{
	domain.PostTypeCourse:     {},
	domain.PostTypeQuiz:       {},
	domain.PostTypeExam:       {},
	domain.PostTypeAssignment: {},
	domain.PostTypeTutorial:   {},
	domain.PostTypeResource:   {},
	domain.PostTypeResearch:   {},
}

func IsEducationalType(postType string) bool {
	_, ok := educationalTypes[postType]
	return ok
}
