package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/logger"
	"github.com/rawi-social/content-engine/internal/metrics"
)

const defaultAnalysisTimeout = 5 * time.Second

// AnalysisCache stores analysis results keyed by content text. Identical
// text always yields an identical analysis (external blending aside), so
// results are safe to reuse.
type AnalysisCache interface {
	Get(ctx context.Context, text string) (*domain.AnalysisResult, bool, error)
	Set(ctx context.Context, text string, result *domain.AnalysisResult) error
}

// Engine orchestrates the four classifiers over one piece of text. The
// classifiers have no data dependency on one another, so the provider-backed
// ones run concurrently under a shared deadline; each degrades independently
// to its local heuristic.
type Engine struct {
	quality    *QualityScorer
	tags       *TagGenerator
	sentiment  *SentimentClassifier
	moderation *ModerationFilter
	cache      AnalysisCache
	timeout    time.Duration
	version    string
	logger     logger.Logger
	metrics    *metrics.Recorder
}

// Config holds construction options for the engine.
type Config struct {
	Quality    *QualityScorer
	Tags       *TagGenerator
	Sentiment  *SentimentClassifier
	Moderation *ModerationFilter
	Cache      AnalysisCache // optional
	Timeout    time.Duration // bounds external calls; defaults to 5s
	Version    string
}

// New creates an analysis engine.
func New(cfg Config, log logger.Logger, rec *metrics.Recorder) *Engine {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAnalysisTimeout
	}
	return &Engine{
		quality:    cfg.Quality,
		tags:       cfg.Tags,
		sentiment:  cfg.Sentiment,
		moderation: cfg.Moderation,
		cache:      cfg.Cache,
		timeout:    timeout,
		version:    cfg.Version,
		logger:     log,
		metrics:    rec,
	}
}

// Analyze runs all classifiers on text and assembles the combined result.
// It never fails on degenerate input and never surfaces provider errors;
// the only error path is a cancelled parent context.
func (e *Engine) Analyze(ctx context.Context, contentID, text string) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	if cached := e.fromCache(ctx, contentID, text); cached != nil {
		e.metrics.AnalysisCompleted("cache", time.Since(start))
		return cached, nil
	}

	// One deadline bounds every external call so a provider outage cannot
	// stall content creation past the configured budget.
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result := &domain.AnalysisResult{
		ContentID:     contentID,
		EngineVersion: e.version,
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		result.QualityScore = e.quality.Score(callCtx, text)
	}()
	go func() {
		defer wg.Done()
		result.Sentiment = e.sentiment.Classify(callCtx, text)
	}()
	go func() {
		defer wg.Done()
		result.Moderation = e.moderation.Check(callCtx, text)
	}()

	result.Tags = e.tags.Generate(text)
	wg.Wait()

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	result.AnalyzedAt = time.Now()

	e.toCache(ctx, text, result)
	e.metrics.AnalysisCompleted("engine", time.Since(start))

	e.logger.Debug("content analyzed",
		logger.String("content_id", contentID),
		logger.Float64("quality_score", result.QualityScore),
		logger.String("sentiment", result.Sentiment.Label),
		logger.Bool("safe", result.Moderation.Safe),
		logger.Int("tags", len(result.Tags)),
		logger.Int64("processing_time_ms", result.ProcessingTimeMs))

	return result, nil
}

func (e *Engine) fromCache(ctx context.Context, contentID, text string) *domain.AnalysisResult {
	if e.cache == nil || text == "" {
		return nil
	}
	cached, ok, err := e.cache.Get(ctx, text)
	if err != nil {
		e.logger.Warn("analysis cache read failed", logger.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	cached.ContentID = contentID
	return cached
}

func (e *Engine) toCache(ctx context.Context, text string, result *domain.AnalysisResult) {
	if e.cache == nil || text == "" {
		return
	}
	if err := e.cache.Set(ctx, text, result); err != nil {
		e.logger.Warn("analysis cache write failed", logger.Error(err))
	}
}
