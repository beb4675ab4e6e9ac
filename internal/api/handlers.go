// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/engine"
	"github.com/rawi-social/content-engine/internal/logger"
	"github.com/rawi-social/content-engine/internal/processor"
)

const (
	maxBatchSize    = 100
	defaultPageSize = 20
	maxPageSize     = 100
)

// AnalysisStore persists and reads post analyses and serves the ranked feed.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, postID string, result *domain.AnalysisResult) error
	GetAnalysis(ctx context.Context, postID string) (*domain.AnalysisResult, error)
	FeedPage(ctx context.Context, limit, offset int) ([]domain.RankedPost, error)
}

// RecommendationStore reads the data the recommendation scorer consumes.
type RecommendationStore interface {
	InterestTags(ctx context.Context, userID string, recent int) ([][]string, error)
	Following(ctx context.Context, userID string) (map[string]bool, error)
	Candidates(ctx context.Context, userID string, limit int) ([]domain.UserCandidate, error)
}

// TrendingSource serves the current trending tags.
type TrendingSource interface {
	Current(ctx context.Context) ([]domain.TagCount, error)
}

// Pinger checks a dependency for readiness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HandlerConfig holds handler tuning.
type HandlerConfig struct {
	ServiceName      string
	Version          string
	FeedPageSize     int
	RecommendLimit   int
	RecentPostWindow int
}

// Handler handles HTTP requests for the content engine API.
type Handler struct {
	engine      *engine.Engine
	batch       *processor.BatchProcessor
	recommender *engine.Recommender
	posts       AnalysisStore
	recs        RecommendationStore
	trending    TrendingSource
	db          Pinger
	cfg         HandlerConfig
	logger      logger.Logger
}

// NewHandler creates an API handler. trending and db may be nil; the
// corresponding endpoints degrade gracefully.
func NewHandler(
	eng *engine.Engine,
	batch *processor.BatchProcessor,
	posts AnalysisStore,
	recs RecommendationStore,
	trending TrendingSource,
	db Pinger,
	cfg HandlerConfig,
	log logger.Logger,
) *Handler {
	if cfg.FeedPageSize <= 0 {
		cfg.FeedPageSize = defaultPageSize
	}
	return &Handler{
		engine:      eng,
		batch:       batch,
		recommender: engine.NewRecommender(),
		posts:       posts,
		recs:        recs,
		trending:    trending,
		db:          db,
		cfg:         cfg,
		logger:      log,
	}
}

// AnalyzeRequest is a single analysis request. ContentID is optional; when
// set, the result is persisted against that post.
type AnalyzeRequest struct {
	ContentID string `json:"content_id"`
	Text      string `json:"text"`
}

// BatchAnalyzeRequest carries up to maxBatchSize analysis requests.
type BatchAnalyzeRequest struct {
	Items []AnalyzeRequest `json:"items" binding:"required,min=1,max=100"`
}

// BatchAnalyzeResponse summarizes a batch run.
type BatchAnalyzeResponse struct {
	Results []*domain.AnalysisResult `json:"results"`
	Total   int                      `json:"total"`
	Failed  int                      `json:"failed"`
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.Analyze(c.Request.Context(), req.ContentID, req.Text)
	if err != nil {
		h.logger.Error("analysis failed", logger.String("content_id", req.ContentID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	if req.ContentID != "" {
		if err := h.posts.SaveAnalysis(c.Request.Context(), req.ContentID, result); err != nil {
			// A missing post just means the caller analyzed ad hoc text
			// with an ID we do not store. Anything else is logged but the
			// analysis itself is still returned.
			if !errors.Is(err, domain.ErrNotFound) {
				h.logger.Error("saving analysis failed",
					logger.String("content_id", req.ContentID), logger.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzeBatch handles POST /api/v1/analyze/batch.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid batch request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Items) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}

	posts := make([]domain.Content, 0, len(req.Items))
	for _, item := range req.Items {
		posts = append(posts, domain.Content{ID: item.ContentID, Text: item.Text})
	}

	results, err := h.batch.Process(c.Request.Context(), posts)
	if err != nil {
		h.logger.Error("batch analysis failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch analysis failed"})
		return
	}

	resp := BatchAnalyzeResponse{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			resp.Failed++
			continue
		}
		resp.Results = append(resp.Results, r.Analysis)
	}
	c.JSON(http.StatusOK, resp)
}

// GetAnalysis handles GET /api/v1/posts/:id/analysis.
func (h *Handler) GetAnalysis(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id is required"})
		return
	}

	result, err := h.posts.GetAnalysis(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		h.logger.Error("loading analysis failed", logger.String("post_id", postID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Feed handles GET /api/v1/feed.
func (h *Handler) Feed(c *gin.Context) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := queryInt(c, "page_size", h.cfg.FeedPageSize)
	if size < 1 || size > maxPageSize {
		size = h.cfg.FeedPageSize
	}

	posts, err := h.posts.FeedPage(c.Request.Context(), size, (page-1)*size)
	if err != nil {
		h.logger.Error("feed query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":     posts,
		"page":      page,
		"page_size": size,
	})
}

// RecommendUsers handles GET /api/v1/recommendations/users.
func (h *Handler) RecommendUsers(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	ctx := c.Request.Context()

	tagSets, err := h.recs.InterestTags(ctx, userID, h.cfg.RecentPostWindow)
	if err != nil {
		h.logger.Error("interest query failed", logger.String("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recommendations"})
		return
	}

	following, err := h.recs.Following(ctx, userID)
	if err != nil {
		h.logger.Error("following query failed", logger.String("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recommendations"})
		return
	}

	// Over-fetch candidates so scoring has room to reorder before the cap.
	candidates, err := h.recs.Candidates(ctx, userID, h.cfg.RecommendLimit*10)
	if err != nil {
		h.logger.Error("candidate query failed", logger.String("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recommendations"})
		return
	}

	interests := engine.BuildInterestSet(tagSets)
	suggestions := h.recommender.SuggestUsers(userID, interests, following, candidates, h.cfg.RecommendLimit)

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"suggestions": suggestions,
	})
}

// RecommendTopics handles GET /api/v1/recommendations/topics.
func (h *Handler) RecommendTopics(c *gin.Context) {
	if h.trending == nil {
		c.JSON(http.StatusOK, gin.H{"topics": []domain.TagCount{}})
		return
	}

	topics, err := h.trending.Current(c.Request.Context())
	if err != nil {
		h.logger.Error("trending query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load topics"})
		return
	}
	if topics == nil {
		topics = []domain.TagCount{}
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.ServiceName,
		"version": h.cfg.Version,
	})
}

// ReadyCheck handles GET /ready.
func (h *Handler) ReadyCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
