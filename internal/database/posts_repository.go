package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rawi-social/content-engine/internal/domain"
)

// feedRankExpr is the feed rank evaluated in SQL so ordering and pagination
// happen before rows leave the database. It must stay in lockstep with
// engine.RankScore.
const feedRankExpr = `
	COALESCE(p.ai_score, 0) * 0.3
	+ (p.likes_count * 1 + p.comments_count * 2 + p.shares_count * 3) * 0.5
	- EXTRACT(EPOCH FROM (now() - p.created_at)) / 3600.0 * 0.2`

// PostsRepository handles post analysis persistence and feed queries.
type PostsRepository struct {
	db *sqlx.DB
}

// NewPostsRepository creates a posts repository.
func NewPostsRepository(db *sqlx.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

// SaveAnalysis attaches an analysis result to the post record. The
// moderation verdict is deliberately not persisted; it is consumed at the
// publish decision and discarded.
func (r *PostsRepository) SaveAnalysis(ctx context.Context, postID string, result *domain.AnalysisResult) error {
	sentiment, err := json.Marshal(result.Sentiment)
	if err != nil {
		return fmt.Errorf("encode sentiment: %w", err)
	}

	query := `
		UPDATE posts
		SET ai_score = $2, tags = $3, sentiment = $4, engine_version = $5, analyzed_at = $6
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		postID,
		result.QualityScore,
		pq.Array(result.Tags),
		sentiment,
		result.EngineVersion,
		result.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetAnalysis returns the persisted analysis of a post.
func (r *PostsRepository) GetAnalysis(ctx context.Context, postID string) (*domain.AnalysisResult, error) {
	var row struct {
		AIScore       sql.NullFloat64 `db:"ai_score"`
		Tags          pq.StringArray  `db:"tags"`
		Sentiment     []byte          `db:"sentiment"`
		EngineVersion sql.NullString  `db:"engine_version"`
		AnalyzedAt    sql.NullTime    `db:"analyzed_at"`
	}

	query := `
		SELECT ai_score, tags, sentiment, engine_version, analyzed_at
		FROM posts
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &row, query, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	if !row.AIScore.Valid {
		return nil, domain.ErrNotFound
	}

	result := &domain.AnalysisResult{
		ContentID:     postID,
		QualityScore:  row.AIScore.Float64,
		Tags:          []string(row.Tags),
		EngineVersion: row.EngineVersion.String,
		AnalyzedAt:    row.AnalyzedAt.Time,
	}
	if len(row.Sentiment) > 0 {
		if err := json.Unmarshal(row.Sentiment, &result.Sentiment); err != nil {
			return nil, fmt.Errorf("decode sentiment: %w", err)
		}
	}
	return result, nil
}

// FetchUnanalyzed returns posts that have no analysis yet, oldest first.
// The backlog processor drains these.
func (r *PostsRepository) FetchUnanalyzed(ctx context.Context, limit int) ([]domain.Content, error) {
	var posts []domain.Content

	query := `
		SELECT id, author_id, body, likes_count, comments_count, shares_count, created_at
		FROM posts
		WHERE ai_score IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("fetch unanalyzed: %w", err)
	}
	return posts, nil
}

// FeedPage returns one page of the ranked feed, ordered by descending feed
// rank. Ties keep the stable created_at ordering of the underlying rows.
func (r *PostsRepository) FeedPage(ctx context.Context, limit, offset int) ([]domain.RankedPost, error) {
	var rows []struct {
		ID            string    `db:"id"`
		AIScore       float64   `db:"ai_score"`
		LikesCount    int       `db:"likes_count"`
		CommentsCount int       `db:"comments_count"`
		SharesCount   int       `db:"shares_count"`
		CreatedAt     time.Time `db:"created_at"`
		FeedRank      float64   `db:"feed_rank"`
	}

	query := `
		SELECT p.id, COALESCE(p.ai_score, 0) AS ai_score,
		       p.likes_count, p.comments_count, p.shares_count, p.created_at,
		       ` + feedRankExpr + ` AS feed_rank
		FROM posts p
		ORDER BY feed_rank DESC, p.created_at DESC
		LIMIT $1 OFFSET $2
	`

	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("feed page: %w", err)
	}

	posts := make([]domain.RankedPost, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, domain.RankedPost{
			FeedRankable: domain.FeedRankable{
				ID:            row.ID,
				AIScore:       row.AIScore,
				LikesCount:    row.LikesCount,
				CommentsCount: row.CommentsCount,
				SharesCount:   row.SharesCount,
				CreatedAt:     row.CreatedAt,
			},
			FeedRank: row.FeedRank,
		})
	}
	return posts, nil
}

// TrendingTags aggregates tag occurrences over posts created since the
// given time, most frequent first with the tag itself as tie-break.
func (r *PostsRepository) TrendingTags(ctx context.Context, since time.Time, limit int) ([]domain.TagCount, error) {
	var tags []domain.TagCount

	query := `
		SELECT t.tag AS tag, COUNT(*) AS count
		FROM posts p, unnest(p.tags) AS t(tag)
		WHERE p.created_at > $1
		GROUP BY t.tag
		ORDER BY count DESC, tag ASC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &tags, query, since, limit); err != nil {
		return nil, fmt.Errorf("trending tags: %w", err)
	}
	return tags, nil
}
