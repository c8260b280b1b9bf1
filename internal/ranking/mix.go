package ranking

import (
	"math"

	"github.com/google/uuid"
)

// Pool-mix ratios for FOR_YOU feeds.
const (
	relevanceShare = 0.60
	trendingShare  = 0.25
	exploreShare   = 0.15
)

// MixPools interleaves the three candidate pools into one deduplicated list,
// taking up to each pool's share of the over-generation target in priority
// order (relevance, then trending, then explore).
func MixPools(relevance, trending, explore []ScoredPost, target int) []ScoredPost {
	mixed := make([]ScoredPost, 0, target)
	seen := make(map[uuid.UUID]struct{}, target)

	addUnique := func(pool []ScoredPost, count int) {
		added := 0
		for _, item := range pool {
			if added >= count {
				break
			}
			if _, dup := seen[item.Post.ID]; dup {
				continue
			}
			seen[item.Post.ID] = struct{}{}
			mixed = append(mixed, item)
			added++
		}
	}

	addUnique(relevance, int(math.Ceil(float64(target)*relevanceShare)))
	addUnique(trending, int(math.Ceil(float64(target)*trendingShare)))
	addUnique(explore, int(math.Ceil(float64(target)*exploreShare)))

	return mixed
}
