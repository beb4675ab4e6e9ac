package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rawi-social/content-engine/internal/domain"
)

// RecommendationsRepository reads the interest and candidate data that the
// recommendation scorer consumes.
type RecommendationsRepository struct {
	db *sqlx.DB
}

// NewRecommendationsRepository creates a recommendations repository.
func NewRecommendationsRepository(db *sqlx.DB) *RecommendationsRepository {
	return &RecommendationsRepository{db: db}
}

// InterestTags returns the tag lists of the user's most recent analyzed
// posts, newest first. Each post contributes one list so the scorer can
// dedupe by first occurrence.
func (r *RecommendationsRepository) InterestTags(ctx context.Context, userID string, recent int) ([][]string, error) {
	var rows []struct {
		Tags pq.StringArray `db:"tags"`
	}

	query := `
		SELECT tags
		FROM posts
		WHERE author_id = $1 AND tags IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &rows, query, userID, recent); err != nil {
		return nil, fmt.Errorf("interest tags: %w", err)
	}

	lists := make([][]string, 0, len(rows))
	for _, row := range rows {
		lists = append(lists, []string(row.Tags))
	}
	return lists, nil
}

// Following returns the set of user IDs the given user already follows.
func (r *RecommendationsRepository) Following(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string

	query := `SELECT followee_id FROM follows WHERE follower_id = $1`

	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("following: %w", err)
	}

	following := make(map[string]bool, len(ids))
	for _, id := range ids {
		following[id] = true
	}
	return following, nil
}

// Candidates returns users the given user does not already follow, each
// with the tags aggregated from their recent posts. The self row and
// followed users are excluded here so the scorer only re-checks for safety.
func (r *RecommendationsRepository) Candidates(ctx context.Context, userID string, limit int) ([]domain.UserCandidate, error) {
	var rows []struct {
		UserID         string         `db:"user_id"`
		Tags           pq.StringArray `db:"tags"`
		FollowersCount int            `db:"followers_count"`
		Verified       bool           `db:"verified"`
	}

	query := `
		SELECT u.id AS user_id,
		       COALESCE(array_agg(DISTINCT t.tag) FILTER (WHERE t.tag IS NOT NULL), '{}') AS tags,
		       u.followers_count, u.verified
		FROM users u
		LEFT JOIN posts p ON p.author_id = u.id
		LEFT JOIN LATERAL unnest(p.tags) AS t(tag) ON true
		WHERE u.id <> $1
		  AND NOT EXISTS (
		      SELECT 1 FROM follows f
		      WHERE f.follower_id = $1 AND f.followee_id = u.id
		  )
		GROUP BY u.id, u.followers_count, u.verified
		ORDER BY u.followers_count DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("candidates: %w", err)
	}

	candidates := make([]domain.UserCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, domain.UserCandidate{
			UserID:         row.UserID,
			Tags:           []string(row.Tags),
			FollowersCount: row.FollowersCount,
			Verified:       row.Verified,
		})
	}
	return candidates, nil
}
