package domain

import "time"

// Sentiment labels assigned by the classifier.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Moderation category labels.
const (
	CategoryInappropriateLanguage = "inappropriate_language"
	CategorySpam                  = "spam"
	CategoryExcessiveLinks        = "excessive_links"
)

// SentimentDetail carries the raw keyword-hit counts behind a sentiment label.
type SentimentDetail struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// SentimentResult is the outcome of sentiment classification.
// Label is always one of the Sentiment* constants; Confidence is in [0,1].
type SentimentResult struct {
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Detail     SentimentDetail `json:"detail"`
}

// ModerationVerdict is the outcome of the moderation filter. Safe is false
// exactly when Categories is non-empty. The verdict is advisory: whether an
// unsafe post is blocked or queued for review is the caller's policy, and
// the verdict is never persisted on the content record.
type ModerationVerdict struct {
	Safe       bool     `json:"safe"`
	Categories []string `json:"categories"`
	Confidence float64  `json:"confidence"`
}

// AnalysisResult is everything the engine derives from one piece of text.
// QualityScore, Tags, and Sentiment are persisted on the content record at
// creation time; Moderation is consumed synchronously by the caller.
type AnalysisResult struct {
	ContentID        string            `json:"content_id,omitempty"`
	QualityScore     float64           `json:"quality_score"`
	Tags             []string          `json:"tags"`
	Sentiment        SentimentResult   `json:"sentiment"`
	Moderation       ModerationVerdict `json:"moderation"`
	EngineVersion    string            `json:"engine_version"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	AnalyzedAt       time.Time         `json:"analyzed_at"`
}
