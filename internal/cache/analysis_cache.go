// Package cache provides the Redis-backed analysis result cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rawi-social/content-engine/internal/domain"
)

const (
	analysisKeyPrefix = "analysis:"
	trendingKey       = "trending:tags"

	connectTimeout = 5 * time.Second
)

// Config holds Redis connection configuration.
type Config struct {
	Address  string
	Password string
	Database int
	TTL      time.Duration
}

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// AnalysisCache stores analysis results keyed by a hash of the content
// text. Identical text yields an identical analysis, so a hit skips the
// whole engine pass including any provider calls.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and returns an analysis cache.
func New(cfg Config) (*AnalysisCache, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &AnalysisCache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached analysis for text, if any. The ContentID of a
// cached result is stale and must be overwritten by the caller.
func (c *AnalysisCache) Get(ctx context.Context, text string) (*domain.AnalysisResult, bool, error) {
	raw, err := c.client.Get(ctx, analysisKey(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &result, true, nil
}

// Set stores the analysis for text with the configured TTL.
func (c *AnalysisCache) Set(ctx context.Context, text string, result *domain.AnalysisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, analysisKey(text), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// SetTrending stores the current trending tag list.
func (c *AnalysisCache) SetTrending(ctx context.Context, tags []domain.TagCount) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("trending encode: %w", err)
	}
	if err := c.client.Set(ctx, trendingKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("trending set: %w", err)
	}
	return nil
}

// GetTrending returns the cached trending tag list, if any.
func (c *AnalysisCache) GetTrending(ctx context.Context) ([]domain.TagCount, bool, error) {
	raw, err := c.client.Get(ctx, trendingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("trending get: %w", err)
	}

	var tags []domain.TagCount
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, false, fmt.Errorf("trending decode: %w", err)
	}
	return tags, true, nil
}

// Close releases the underlying Redis connection.
func (c *AnalysisCache) Close() error {
	return c.client.Close()
}

// analysisKey hashes the content text so arbitrarily long posts map to a
// fixed-size key.
func analysisKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return analysisKeyPrefix + hex.EncodeToString(sum[:])
}
