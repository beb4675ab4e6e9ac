package engine

import (
	"math"
	"sort"

	"github.com/rawi-social/content-engine/internal/domain"
)

// Recommendation scoring constants.
const (
	verifiedBonus        = 2.0
	followerWeight       = 0.1
	defaultSuggestionCap = 10
)

// Recommender suggests users to follow by overlapping a user's interest
// tags with candidates' recent tags. Batch and stateless: no index is
// maintained between calls.
type Recommender struct{}

// NewRecommender creates a recommender.
func NewRecommender() *Recommender {
	return &Recommender{}
}

// BuildInterestSet flattens a user's recent TagSets into a deduplicated
// interest list, preserving first-occurrence order.
func BuildInterestSet(tagSets [][]string) []string {
	seen := make(map[string]struct{})
	interests := make([]string, 0)
	for _, tags := range tagSets {
		for _, tag := range tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			interests = append(interests, tag)
		}
	}
	return interests
}

// SuggestUsers scores candidates against the interest set and returns the
// top suggestions in descending score order. The acting user and anyone in
// following are excluded. limit <= 0 falls back to a default cap. Ties keep
// candidate input order (stable sort).
func (r *Recommender) SuggestUsers(
	selfID string,
	interests []string,
	following map[string]bool,
	candidates []domain.UserCandidate,
	limit int,
) []domain.UserSuggestion {
	if limit <= 0 {
		limit = defaultSuggestionCap
	}

	interestSet := make(map[string]struct{}, len(interests))
	for _, tag := range interests {
		interestSet[tag] = struct{}{}
	}

	suggestions := make([]domain.UserSuggestion, 0, len(candidates))
	for _, c := range candidates {
		if c.UserID == selfID || following[c.UserID] {
			continue
		}
		suggestions = append(suggestions, domain.UserSuggestion{
			UserID: c.UserID,
			Score:  scoreCandidate(interestSet, c),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// scoreCandidate counts the candidate's distinct tags that appear in the
// interest set, adds a flat bonus for verified accounts, and a logarithmic
// follower-count term so large accounts get a nudge without drowning
// interest overlap.
func scoreCandidate(interestSet map[string]struct{}, c domain.UserCandidate) float64 {
	matched := make(map[string]struct{})
	for _, tag := range c.Tags {
		if _, ok := interestSet[tag]; ok {
			matched[tag] = struct{}{}
		}
	}

	score := float64(len(matched))
	if c.Verified {
		score += verifiedBonus
	}
	score += math.Log(float64(c.FollowersCount)+1) * followerWeight

	return score
}
