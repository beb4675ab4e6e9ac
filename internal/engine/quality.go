package engine

import (
	"context"

	"github.com/rawi-social/content-engine/internal/logger"
	"github.com/rawi-social/content-engine/internal/metrics"
)

// Quality scoring weights. The score is a bounded proxy for content value:
// longer posts with hashtags, links, and positive wording score higher,
// negative wording pulls the score down.
const (
	maxQualityScore  = 10.0
	wordCountWeight  = 0.5
	wordCountCap     = 10.0
	hashtagWeight    = 0.5
	linkWeight       = 1.0
	positiveWeight   = 1.0
	negativePenalty  = 0.5
	qualityBlendHalf = 2.0
	componentQuality = "quality"
)

// QualityScorer assigns a [0,10] quality score to text from its lexical
// features, optionally averaged with an external provider score for longer
// posts.
type QualityScorer struct {
	features *FeatureExtractor
	provider QualityProvider
	minChars int
	logger   logger.Logger
	metrics  *metrics.Recorder
}

// NewQualityScorer creates a quality scorer. provider may be nil, in which
// case scoring is purely local. minChars is the text length above which the
// provider is consulted.
func NewQualityScorer(features *FeatureExtractor, provider QualityProvider, minChars int, log logger.Logger, rec *metrics.Recorder) *QualityScorer {
	return &QualityScorer{
		features: features,
		provider: provider,
		minChars: minChars,
		logger:   log,
		metrics:  rec,
	}
}

// Score computes the quality score for text. It never fails: degenerate
// input scores 0 and provider errors degrade silently to the local score.
func (q *QualityScorer) Score(ctx context.Context, text string) float64 {
	local := q.localScore(text)

	if q.provider == nil || len(text) <= q.minChars {
		return local
	}

	external, err := q.provider.ScoreQuality(ctx, text)
	if err != nil || external < 0 || external > maxQualityScore {
		q.metrics.ProviderFallback(componentQuality)
		q.logger.Debug("quality provider unavailable, using local score",
			logger.Float64("local_score", local),
			logger.Error(err))
		return local
	}

	return clampScore((local + external) / qualityBlendHalf)
}

func (q *QualityScorer) localScore(text string) float64 {
	if text == "" {
		return 0
	}

	f := q.features.Extract(text)

	score := float64(f.WordCount) * wordCountWeight
	if score > wordCountCap {
		score = wordCountCap
	}
	score += float64(f.HashtagCount)*hashtagWeight + float64(f.LinkCount)*linkWeight
	score += float64(f.PositiveHits)*positiveWeight - float64(f.NegativeHits)*negativePenalty

	return clampScore(score)
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > maxQualityScore {
		return maxQualityScore
	}
	return s
}
