package engine

import (
	"context"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/logger"
	"github.com/rawi-social/content-engine/internal/metrics"
)

const componentSentiment = "sentiment"

// SentimentClassifier buckets text into positive/negative/neutral by keyword
// dominance, optionally blended with an external model for longer posts.
type SentimentClassifier struct {
	features *FeatureExtractor
	provider SentimentProvider
	minChars int
	logger   logger.Logger
	metrics  *metrics.Recorder
}

// NewSentimentClassifier creates a sentiment classifier. provider may be nil.
func NewSentimentClassifier(features *FeatureExtractor, provider SentimentProvider, minChars int, log logger.Logger, rec *metrics.Recorder) *SentimentClassifier {
	return &SentimentClassifier{
		features: features,
		provider: provider,
		minChars: minChars,
		logger:   log,
		metrics:  rec,
	}
}

// Classify returns the sentiment of text. The label is the bucket whose hit
// count strictly exceeds both others; ties (including all-zero counts) fall
// back to neutral. Confidence is the winning bucket's share of all hits.
func (s *SentimentClassifier) Classify(ctx context.Context, text string) domain.SentimentResult {
	local := s.localClassify(text)

	if s.provider == nil || len(text) <= s.minChars {
		return local
	}

	extLabel, extConfidence, err := s.provider.ClassifySentiment(ctx, text)
	if err != nil || !validLabel(extLabel) || extConfidence < 0 || extConfidence > 1 {
		s.metrics.ProviderFallback(componentSentiment)
		s.logger.Debug("sentiment provider unavailable, using local result",
			logger.String("local_label", local.Label),
			logger.Error(err))
		return local
	}

	// Average the confidences first, then let the external label win only
	// when its own confidence beats the blended value. The asymmetry is
	// intentional: an external label that merely ties the blend is not
	// trusted over the local lexicon.
	blended := local
	blended.Confidence = (local.Confidence + extConfidence) / 2
	if extConfidence > blended.Confidence {
		blended.Label = extLabel
	}
	return blended
}

func (s *SentimentClassifier) localClassify(text string) domain.SentimentResult {
	f := s.features.Extract(text)

	detail := domain.SentimentDetail{
		Positive: f.PositiveHits,
		Negative: f.NegativeHits,
		Neutral:  f.NeutralHits,
	}

	total := f.PositiveHits + f.NegativeHits + f.NeutralHits
	denom := total
	if denom < 1 {
		denom = 1
	}

	switch {
	case f.PositiveHits > f.NegativeHits && f.PositiveHits > f.NeutralHits:
		return domain.SentimentResult{
			Label:      domain.SentimentPositive,
			Confidence: float64(f.PositiveHits) / float64(denom),
			Detail:     detail,
		}
	case f.NegativeHits > f.PositiveHits && f.NegativeHits > f.NeutralHits:
		return domain.SentimentResult{
			Label:      domain.SentimentNegative,
			Confidence: float64(f.NegativeHits) / float64(denom),
			Detail:     detail,
		}
	default:
		return domain.SentimentResult{
			Label:      domain.SentimentNeutral,
			Confidence: float64(f.NeutralHits) / float64(denom),
			Detail:     detail,
		}
	}
}

func validLabel(label string) bool {
	switch label {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
		return true
	}
	return false
}
