// Package processor drains the analysis backlog: posts persisted before
// the engine saw them, or posts whose analysis failed and was retried.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/engine"
	"github.com/rawi-social/content-engine/internal/logger"
)

const defaultConcurrency = 4

// AnalysisStore persists analysis results for processed posts.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, postID string, result *domain.AnalysisResult) error
}

// ProcessResult holds the outcome of analyzing a single post.
type ProcessResult struct {
	Post     domain.Content
	Analysis *domain.AnalysisResult
	Err      error
}

// BatchProcessor analyzes batches of posts with a small worker pool and
// persists the results.
type BatchProcessor struct {
	engine      *engine.Engine
	store       AnalysisStore
	concurrency int
	logger      logger.Logger
}

// NewBatchProcessor creates a batch processor. concurrency <= 0 selects a
// conservative default.
func NewBatchProcessor(eng *engine.Engine, store AnalysisStore, concurrency int, log logger.Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &BatchProcessor{
		engine:      eng,
		store:       store,
		concurrency: concurrency,
		logger:      log,
	}
}

// Process analyzes the given posts and saves each result. Per-post
// failures are recorded in the returned results, not propagated, so one
// bad post never stalls the batch.
func (b *BatchProcessor) Process(ctx context.Context, posts []domain.Content) ([]ProcessResult, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	batchID := uuid.NewString()
	start := time.Now()
	b.logger.Info("batch started",
		logger.String("batch_id", batchID),
		logger.Int("size", len(posts)),
		logger.Int("concurrency", b.concurrency),
	)

	jobs := make(chan domain.Content, len(posts))
	results := make(chan ProcessResult, len(posts))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, jobs, results, &wg)
	}

	for _, post := range posts {
		jobs <- post
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]ProcessResult, 0, len(posts))
	failed := 0
	for result := range results {
		if result.Err != nil {
			failed++
		}
		out = append(out, result)
	}

	b.logger.Info("batch complete",
		logger.String("batch_id", batchID),
		logger.Int("processed", len(out)),
		logger.Int("failed", failed),
		logger.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (b *BatchProcessor) worker(ctx context.Context, jobs <-chan domain.Content, results chan<- ProcessResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for post := range jobs {
		select {
		case <-ctx.Done():
			results <- ProcessResult{Post: post, Err: ctx.Err()}
			continue
		default:
		}
		results <- b.processOne(ctx, post)
	}
}

func (b *BatchProcessor) processOne(ctx context.Context, post domain.Content) ProcessResult {
	result := ProcessResult{Post: post}

	analysis, err := b.engine.Analyze(ctx, post.ID, post.Text)
	if err != nil {
		result.Err = fmt.Errorf("analyze post %s: %w", post.ID, err)
		b.logger.Error("analysis failed", logger.String("post_id", post.ID), logger.Error(err))
		return result
	}
	result.Analysis = analysis

	// Items without an ID are ad hoc text with nothing to persist against,
	// and a missing post means the same thing. Neither fails the item.
	if post.ID != "" {
		if err := b.store.SaveAnalysis(ctx, post.ID, analysis); err != nil && !errors.Is(err, domain.ErrNotFound) {
			result.Err = fmt.Errorf("save analysis for post %s: %w", post.ID, err)
			b.logger.Error("saving analysis failed", logger.String("post_id", post.ID), logger.Error(err))
			return result
		}
	}

	b.logger.Debug("post analyzed",
		logger.String("post_id", post.ID),
		logger.Float64("quality", analysis.QualityScore),
	)
	return result
}
