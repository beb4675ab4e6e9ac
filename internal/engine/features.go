// Package engine implements the content scoring and feed ranking engine:
// lexical feature extraction, quality scoring, tag generation, sentiment
// classification, moderation filtering, feed ranking, and follow
// recommendations.
package engine

import (
	"regexp"
	"strings"

	"github.com/rawi-social/content-engine/internal/lexicon"
)

var (
	// hashtagPattern matches # followed by word characters, including the
	// Arabic block so Arabic hashtags count.
	hashtagPattern = regexp.MustCompile(`#[\w\x{0600}-\x{06FF}]+`)
	linkPattern    = regexp.MustCompile(`https?://[^\s]+`)
)

// ContentFeatures are the lexical features extracted from one piece of text.
// They are derived per scoring call and never persisted.
type ContentFeatures struct {
	WordCount    int
	HashtagCount int
	LinkCount    int
	PositiveHits int
	NegativeHits int
	NeutralHits  int
}

// FeatureExtractor tokenizes text and counts sentiment-bearing words against
// the lexicon.
type FeatureExtractor struct {
	lexicon *lexicon.Lexicon
}

// NewFeatureExtractor creates a feature extractor backed by lex.
func NewFeatureExtractor(lex *lexicon.Lexicon) *FeatureExtractor {
	return &FeatureExtractor{lexicon: lex}
}

// Extract computes the lexical features of text. Empty text yields all-zero
// features; extraction never fails.
func (e *FeatureExtractor) Extract(text string) ContentFeatures {
	if text == "" {
		return ContentFeatures{}
	}

	pos, neg, neu := e.lexicon.SentimentHits(text)

	return ContentFeatures{
		WordCount:    len(strings.Fields(text)),
		HashtagCount: len(hashtagPattern.FindAllString(text, -1)),
		LinkCount:    len(linkPattern.FindAllString(text, -1)),
		PositiveHits: pos,
		NegativeHits: neg,
		NeutralHits:  neu,
	}
}

// Hashtags returns the hashtag tokens in text with the leading # stripped,
// in order of appearance.
func Hashtags(text string) []string {
	raw := hashtagPattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, h := range raw {
		tags = append(tags, strings.TrimPrefix(h, "#"))
	}
	return tags
}
