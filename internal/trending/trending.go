// Package trending maintains the trending-topics view: tag counts
// aggregated over a sliding window, refreshed on a schedule and served
// from cache.
package trending

import (
	"context"
	"time"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/logger"
)

// TagSource aggregates tag counts from stored posts.
type TagSource interface {
	TrendingTags(ctx context.Context, since time.Time, limit int) ([]domain.TagCount, error)
}

// TagCache stores and serves the current trending snapshot.
type TagCache interface {
	SetTrending(ctx context.Context, tags []domain.TagCount) error
	GetTrending(ctx context.Context) ([]domain.TagCount, bool, error)
}

// Service computes and serves trending topics.
type Service struct {
	source TagSource
	cache  TagCache
	window time.Duration
	limit  int
	logger logger.Logger
	now    func() time.Time
}

// New creates a trending service. cache may be nil, in which case every
// Current call falls through to the source.
func New(source TagSource, cache TagCache, window time.Duration, limit int, log logger.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		window: window,
		limit:  limit,
		logger: log,
		now:    time.Now,
	}
}

// Refresh recomputes the trending snapshot from the database and stores it
// in the cache. Called on the cron schedule and once at startup.
func (s *Service) Refresh(ctx context.Context) error {
	since := s.now().Add(-s.window)
	tags, err := s.source.TrendingTags(ctx, since, s.limit)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.SetTrending(ctx, tags); err != nil {
			// Serving stale trending data beats failing the refresh.
			s.logger.Warn("trending cache write failed", logger.Error(err))
		}
	}
	s.logger.Debug("trending refreshed", logger.Int("tags", len(tags)))
	return nil
}

// Current returns the trending tags, preferring the cached snapshot and
// recomputing on a cache miss.
func (s *Service) Current(ctx context.Context) ([]domain.TagCount, error) {
	if s.cache != nil {
		tags, ok, err := s.cache.GetTrending(ctx)
		if err != nil {
			s.logger.Warn("trending cache read failed", logger.Error(err))
		} else if ok {
			return tags, nil
		}
	}

	since := s.now().Add(-s.window)
	tags, err := s.source.TrendingTags(ctx, since, s.limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTrending(ctx, tags); err != nil {
			s.logger.Warn("trending cache write failed", logger.Error(err))
		}
	}
	return tags, nil
}
