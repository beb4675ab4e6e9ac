package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/engine"
	"github.com/rawi-social/content-engine/internal/lexicon"
	"github.com/rawi-social/content-engine/internal/logger"
	"github.com/rawi-social/content-engine/internal/processor"
)

type stubAnalysisStore struct {
	analyses map[string]*domain.AnalysisResult
	feed     []domain.RankedPost
	saved    map[string]*domain.AnalysisResult
}

func newStubAnalysisStore() *stubAnalysisStore {
	return &stubAnalysisStore{
		analyses: make(map[string]*domain.AnalysisResult),
		saved:    make(map[string]*domain.AnalysisResult),
	}
}

func (s *stubAnalysisStore) SaveAnalysis(ctx context.Context, postID string, result *domain.AnalysisResult) error {
	if _, ok := s.analyses[postID]; !ok {
		return domain.ErrNotFound
	}
	s.saved[postID] = result
	return nil
}

func (s *stubAnalysisStore) GetAnalysis(ctx context.Context, postID string) (*domain.AnalysisResult, error) {
	if r, ok := s.analyses[postID]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubAnalysisStore) FeedPage(ctx context.Context, limit, offset int) ([]domain.RankedPost, error) {
	if offset >= len(s.feed) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.feed) {
		end = len(s.feed)
	}
	return s.feed[offset:end], nil
}

type stubRecStore struct {
	tagSets    [][]string
	following  map[string]bool
	candidates []domain.UserCandidate
	err        error
}

func (s *stubRecStore) InterestTags(ctx context.Context, userID string, recent int) ([][]string, error) {
	return s.tagSets, s.err
}

func (s *stubRecStore) Following(ctx context.Context, userID string) (map[string]bool, error) {
	return s.following, s.err
}

func (s *stubRecStore) Candidates(ctx context.Context, userID string, limit int) ([]domain.UserCandidate, error) {
	return s.candidates, s.err
}

type stubTrending struct {
	topics []domain.TagCount
	err    error
}

func (s *stubTrending) Current(ctx context.Context) ([]domain.TagCount, error) {
	return s.topics, s.err
}

func newTestRouter(t *testing.T, posts *stubAnalysisStore, recs *stubRecStore, trend TrendingSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lex := lexicon.Default()
	features := engine.NewFeatureExtractor(lex)
	log := logger.NewNop()

	eng := engine.New(engine.Config{
		Quality:    engine.NewQualityScorer(features, nil, 100, log, nil),
		Tags:       engine.NewTagGenerator(lex, 5),
		Sentiment:  engine.NewSentimentClassifier(features, nil, 50, log, nil),
		Moderation: engine.NewModerationFilter(lex, nil, log, nil),
		Version:    "test",
	}, log, nil)

	batch := processor.NewBatchProcessor(eng, posts, 2, log)

	handler := NewHandler(eng, batch, posts, recs, trend, nil, HandlerConfig{
		ServiceName:      "content-engine",
		Version:          "test",
		FeedPageSize:     2,
		RecommendLimit:   10,
		RecentPostWindow: 20,
	}, log)

	router := gin.New()
	SetupRoutes(router, handler, nil)
	return router
}

func performJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Analyze(t *testing.T) {
	router := newTestRouter(t, newStubAnalysisStore(), &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Text: "منشور رائع عن البرمجة #تقنية",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.QualityScore < 0 || result.QualityScore > 10 {
		t.Errorf("quality out of range: %f", result.QualityScore)
	}
	if result.Sentiment.Label != domain.SentimentPositive {
		t.Errorf("expected positive sentiment, got %s", result.Sentiment.Label)
	}
}

func TestHandler_Analyze_InvalidBody(t *testing.T) {
	router := newTestRouter(t, newStubAnalysisStore(), &stubRecStore{}, &stubTrending{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandler_Analyze_PersistsForKnownPost(t *testing.T) {
	posts := newStubAnalysisStore()
	posts.analyses["p1"] = &domain.AnalysisResult{ContentID: "p1"}
	router := newTestRouter(t, posts, &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		ContentID: "p1",
		Text:      "some fresh text",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, ok := posts.saved["p1"]; !ok {
		t.Error("expected analysis persisted for known post")
	}
}

func TestHandler_AnalyzeBatch(t *testing.T) {
	posts := newStubAnalysisStore()
	posts.analyses["b1"] = &domain.AnalysisResult{}
	posts.analyses["b2"] = &domain.AnalysisResult{}
	router := newTestRouter(t, posts, &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodPost, "/api/v1/analyze/batch", BatchAnalyzeRequest{
		Items: []AnalyzeRequest{
			{ContentID: "b1", Text: "نص أول"},
			{ContentID: "b2", Text: "نص ثاني"},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp BatchAnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}
}

func TestHandler_AnalyzeBatch_AdHocItemsSucceed(t *testing.T) {
	posts := newStubAnalysisStore()
	router := newTestRouter(t, posts, &stubRecStore{}, &stubTrending{})

	// One item without an id, one whose id matches no stored post. Both are
	// analyzed and returned, and neither counts as a failure.
	w := performJSON(router, http.MethodPost, "/api/v1/analyze/batch", BatchAnalyzeRequest{
		Items: []AnalyzeRequest{
			{Text: "نص بدون معرف"},
			{ContentID: "no-such-post", Text: "text for a deleted post"},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp BatchAnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Failed != 0 {
		t.Errorf("expected no failures, got %d", resp.Failed)
	}
	if len(resp.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(resp.Results))
	}
}

func TestHandler_GetAnalysis(t *testing.T) {
	posts := newStubAnalysisStore()
	posts.analyses["p9"] = &domain.AnalysisResult{
		ContentID:    "p9",
		QualityScore: 6.5,
		Tags:         []string{"برمجة"},
		AnalyzedAt:   time.Now(),
	}
	router := newTestRouter(t, posts, &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/api/v1/posts/p9/analysis", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.QualityScore != 6.5 {
		t.Errorf("expected quality 6.5, got %f", result.QualityScore)
	}
}

func TestHandler_GetAnalysis_NotFound(t *testing.T) {
	router := newTestRouter(t, newStubAnalysisStore(), &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/api/v1/posts/missing/analysis", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandler_Feed_Paginates(t *testing.T) {
	posts := newStubAnalysisStore()
	now := time.Now()
	for _, id := range []string{"f1", "f2", "f3"} {
		posts.feed = append(posts.feed, domain.RankedPost{
			FeedRankable: domain.FeedRankable{ID: id, CreatedAt: now},
		})
	}
	router := newTestRouter(t, posts, &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/api/v1/feed?page=2&page_size=2", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Posts []domain.RankedPost `json:"posts"`
		Page  int                 `json:"page"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Page != 2 {
		t.Errorf("expected page 2, got %d", resp.Page)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].ID != "f3" {
		t.Errorf("expected second page [f3], got %v", resp.Posts)
	}
}

func TestHandler_RecommendUsers(t *testing.T) {
	recs := &stubRecStore{
		tagSets:   [][]string{{"برمجة", "تقنية", "تصميم"}},
		following: map[string]bool{"followed": true},
		candidates: []domain.UserCandidate{
			{UserID: "followed", Tags: []string{"برمجة"}},
			{UserID: "match", Tags: []string{"برمجة", "تقنية"}, Verified: true, FollowersCount: 99},
			{UserID: "none", Tags: []string{"طبخ"}},
		},
	}
	router := newTestRouter(t, newStubAnalysisStore(), recs, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/api/v1/recommendations/users?user_id=me", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Suggestions []domain.UserSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(resp.Suggestions))
	}
	if resp.Suggestions[0].UserID != "match" {
		t.Errorf("expected match first, got %s", resp.Suggestions[0].UserID)
	}
}

func TestHandler_RecommendUsers_RequiresUserID(t *testing.T) {
	router := newTestRouter(t, newStubAnalysisStore(), &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/api/v1/recommendations/users", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandler_RecommendUsers_StoreError(t *testing.T) {
	recs := &stubRecStore{err: errors.New("db down")}
	router := newTestRouter(t, newStubAnalysisStore(), recs, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/api/v1/recommendations/users?user_id=me", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHandler_RecommendTopics(t *testing.T) {
	trend := &stubTrending{topics: []domain.TagCount{{Tag: "برمجة", Count: 12}}}
	router := newTestRouter(t, newStubAnalysisStore(), &stubRecStore{}, trend)

	w := performJSON(router, http.MethodGet, "/api/v1/recommendations/topics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Topics []domain.TagCount `json:"topics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Topics) != 1 || resp.Topics[0].Tag != "برمجة" {
		t.Errorf("expected trending برمجة, got %v", resp.Topics)
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	router := newTestRouter(t, newStubAnalysisStore(), &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/health", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHandler_ReadyCheck_NoDependencies(t *testing.T) {
	router := newTestRouter(t, newStubAnalysisStore(), &stubRecStore{}, &stubTrending{})

	w := performJSON(router, http.MethodGet, "/ready", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 without configured dependencies, got %d", w.Code)
	}
}
