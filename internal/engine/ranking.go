package engine

import (
	"sort"
	"time"

	"github.com/rawi-social/content-engine/internal/domain"
)

// Feed ranking weights. The rank favors quality and engagement and decays
// with age; the same expression is pushed into the feed SQL query, so the
// two must stay in lockstep.
const (
	rankQualityWeight    = 0.3
	rankEngagementWeight = 0.5
	rankLikeWeight       = 1.0
	rankCommentWeight    = 2.0
	rankShareWeight      = 3.0
	rankDecayPerHour     = 0.2
)

// RankScore computes the feed rank of a post from its quality score,
// engagement counters, and age in hours. Pure function of its inputs.
func RankScore(aiScore float64, likes, comments, shares int, hoursSinceCreation float64) float64 {
	engagement := float64(likes)*rankLikeWeight +
		float64(comments)*rankCommentWeight +
		float64(shares)*rankShareWeight

	return aiScore*rankQualityWeight +
		engagement*rankEngagementWeight -
		hoursSinceCreation*rankDecayPerHour
}

// FeedRanker orders candidate posts by descending feed rank.
type FeedRanker struct {
	now func() time.Time
}

// NewFeedRanker creates a feed ranker using the wall clock.
func NewFeedRanker() *FeedRanker {
	return &FeedRanker{now: time.Now}
}

// NewFeedRankerAt creates a feed ranker with a fixed notion of now, for
// reproducible ordering in tests and batch jobs.
func NewFeedRankerAt(now func() time.Time) *FeedRanker {
	return &FeedRanker{now: now}
}

// Rank returns posts ordered by descending feed rank. The sort is stable, so
// exact ties keep their input order. The input slice is not modified.
func (r *FeedRanker) Rank(posts []domain.FeedRankable) []domain.RankedPost {
	now := r.now()

	ranked := make([]domain.RankedPost, 0, len(posts))
	for _, p := range posts {
		hours := now.Sub(p.CreatedAt).Hours()
		ranked = append(ranked, domain.RankedPost{
			FeedRankable: p,
			FeedRank:     RankScore(p.AIScore, p.LikesCount, p.CommentsCount, p.SharesCount, hours),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FeedRank > ranked[j].FeedRank
	})

	return ranked
}
