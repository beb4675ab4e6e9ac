package engine

import (
	"reflect"
	"testing"

	"github.com/rawi-social/content-engine/internal/lexicon"
)

func TestFeatureExtractor_Extract_Empty(t *testing.T) {
	extractor := NewFeatureExtractor(lexicon.Default())

	f := extractor.Extract("")

	if f != (ContentFeatures{}) {
		t.Errorf("expected zero features for empty text, got %+v", f)
	}
}

func TestFeatureExtractor_Extract_Counts(t *testing.T) {
	extractor := NewFeatureExtractor(lexicon.Default())

	f := extractor.Extract("good post #golang visit https://example.com today")

	if f.WordCount != 6 {
		t.Errorf("expected 6 words, got %d", f.WordCount)
	}
	if f.HashtagCount != 1 {
		t.Errorf("expected 1 hashtag, got %d", f.HashtagCount)
	}
	if f.LinkCount != 1 {
		t.Errorf("expected 1 link, got %d", f.LinkCount)
	}
	if f.PositiveHits != 1 {
		t.Errorf("expected 1 positive hit, got %d", f.PositiveHits)
	}
	if f.NegativeHits != 0 {
		t.Errorf("expected 0 negative hits, got %d", f.NegativeHits)
	}
}

func TestFeatureExtractor_Extract_ArabicHashtag(t *testing.T) {
	extractor := NewFeatureExtractor(lexicon.Default())

	f := extractor.Extract("منشور عن #تقنية و #برمجة")

	if f.HashtagCount != 2 {
		t.Errorf("expected 2 Arabic hashtags, got %d", f.HashtagCount)
	}
}

func TestHashtags_StripsPrefixAndKeepsOrder(t *testing.T) {
	tags := Hashtags("intro #first middle #second #first end")

	want := []string{"first", "second", "first"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("expected %v, got %v", want, tags)
	}
}

func TestHashtags_NoneReturnsNil(t *testing.T) {
	if tags := Hashtags("plain text without tags"); tags != nil {
		t.Errorf("expected nil, got %v", tags)
	}
}
