package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rawi-social/content-engine/internal/domain"
)

func TestNew_EmptyAddress(t *testing.T) {
	c, err := New(Config{})

	if !errors.Is(err, ErrEmptyAddress) {
		t.Errorf("expected ErrEmptyAddress, got %v", err)
	}
	if c != nil {
		t.Error("expected nil cache for empty address")
	}
}

func TestAnalysisCache_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c, err := New(Config{Address: "localhost:6379", TTL: time.Minute})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	text := "منشور للاختبار في الذاكرة المؤقتة"
	result := &domain.AnalysisResult{
		ContentID:    "cache-test",
		QualityScore: 7.5,
		Tags:         []string{"برمجة"},
		Sentiment:    domain.SentimentResult{Label: domain.SentimentNeutral},
	}

	if err := c.Set(ctx, text, result); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok, err := c.Get(ctx, text)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.QualityScore != 7.5 {
		t.Errorf("expected quality 7.5, got %f", got.QualityScore)
	}
}

func TestAnalysisCache_MissOnUnknownText(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c, err := New(Config{Address: "localhost:6379", TTL: time.Minute})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, ok, err := c.Get(ctx, "text that was never cached")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Error("expected cache miss")
	}
}
