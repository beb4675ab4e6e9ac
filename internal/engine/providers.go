package engine

import "context"

// The engine blends its local heuristics with an optional external
// text-intelligence provider. Every provider call is best-effort: a failure
// or an out-of-range result makes the component fall back to its local
// heuristic, and the error never propagates past the component.

// QualityProvider scores text quality on a 0-10 scale.
type QualityProvider interface {
	ScoreQuality(ctx context.Context, text string) (float64, error)
}

// SentimentProvider classifies text sentiment.
type SentimentProvider interface {
	ClassifySentiment(ctx context.Context, text string) (label string, confidence float64, err error)
}

// ModerationProvider returns the category labels the provider flagged the
// text with. An empty slice means the provider saw nothing objectionable.
type ModerationProvider interface {
	FlagContent(ctx context.Context, text string) ([]string, error)
}
