// Package domain contains the core domain models for the content engine.
package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an entity is not found in the database.
var ErrNotFound = errors.New("entity not found")

// ErrProviderUnavailable indicates the external text-intelligence provider
// could not produce a usable result. Components absorb it and fall back to
// their local heuristic; it never reaches API callers.
var ErrProviderUnavailable = errors.New("provider unavailable")

// Content is the engine's read projection of a post or comment. The
// persistence layer owns the full record; the engine only needs the text,
// engagement counters, and creation timestamp.
type Content struct {
	ID            string    `db:"id"             json:"id"`
	AuthorID      string    `db:"author_id"      json:"author_id"`
	Text          string    `db:"body"           json:"text"`
	LikesCount    int       `db:"likes_count"    json:"likes_count"`
	CommentsCount int       `db:"comments_count" json:"comments_count"`
	SharesCount   int       `db:"shares_count"   json:"shares_count"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
}

// FeedRankable is the minimal projection needed to rank a post in a feed.
// The ranker never mutates it.
type FeedRankable struct {
	ID            string    `json:"id"`
	AIScore       float64   `json:"ai_score"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	SharesCount   int       `json:"shares_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// RankedPost pairs a rankable post with its computed feed rank.
type RankedPost struct {
	FeedRankable
	FeedRank float64 `json:"feed_rank"`
}

// UserCandidate is a candidate user for follow recommendations, with the
// tags aggregated from their recent posts.
type UserCandidate struct {
	UserID         string   `json:"user_id"`
	Tags           []string `json:"tags"`
	FollowersCount int      `json:"followers_count"`
	Verified       bool     `json:"verified"`
}

// UserSuggestion is a scored follow recommendation.
type UserSuggestion struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// TagCount is a tag with its occurrence count over a trending window.
type TagCount struct {
	Tag   string `db:"tag"   json:"tag"`
	Count int    `db:"count" json:"count"`
}
