package engine

import (
	"reflect"
	"testing"

	"github.com/rawi-social/content-engine/internal/lexicon"
)

func TestTagGenerator_Generate_Empty(t *testing.T) {
	gen := NewTagGenerator(lexicon.Default(), 5)

	tags := gen.Generate("")

	if len(tags) != 0 {
		t.Errorf("expected no tags for empty text, got %v", tags)
	}
}

func TestTagGenerator_Generate_FrequencyOrderWithHashtag(t *testing.T) {
	gen := NewTagGenerator(lexicon.Default(), 5)

	tags := gen.Generate("برمجة برمجة تصميم #تقنية")

	want := []string{"برمجة", "تصميم", "تقنية"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("expected %v, got %v", want, tags)
	}
}

func TestTagGenerator_Generate_CapAtMaxTags(t *testing.T) {
	gen := NewTagGenerator(lexicon.Default(), 5)

	tags := gen.Generate("apple banana cherry durian elderberry feijoa grape")

	if len(tags) != 5 {
		t.Errorf("expected 5 tags, got %d: %v", len(tags), tags)
	}
}

func TestTagGenerator_Generate_DropsStopwordsAndShortTokens(t *testing.T) {
	gen := NewTagGenerator(lexicon.Default(), 5)

	tags := gen.Generate("the go and programming with golang")

	for _, tag := range tags {
		switch tag {
		case "the", "and", "with", "go":
			t.Errorf("unexpected tag %q in %v", tag, tags)
		}
	}
	if len(tags) != 2 {
		t.Errorf("expected [programming golang], got %v", tags)
	}
}

func TestTagGenerator_Generate_DeduplicatesHashtagAndKeyword(t *testing.T) {
	gen := NewTagGenerator(lexicon.Default(), 5)

	tags := gen.Generate("golang golang #golang")

	if len(tags) != 1 || tags[0] != "golang" {
		t.Errorf("expected single golang tag, got %v", tags)
	}
}

func TestTagGenerator_Generate_TieBreakKeepsFirstSeenOrder(t *testing.T) {
	gen := NewTagGenerator(lexicon.Default(), 5)

	tags := gen.Generate("zebra apple zebra apple mango")

	want := []string{"zebra", "apple", "mango"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("expected %v, got %v", want, tags)
	}
}

func TestTagGenerator_Generate_HashtagsAfterKeywords(t *testing.T) {
	gen := NewTagGenerator(lexicon.Default(), 5)

	tags := gen.Generate("coffee coffee #news")

	want := []string{"coffee", "news"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("expected %v, got %v", want, tags)
	}
}
