package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/lexicon"
	"github.com/rawi-social/content-engine/internal/logger"
)

type stubModerationProvider struct {
	categories []string
	err        error
	calls      int
}

func (s *stubModerationProvider) FlagContent(ctx context.Context, text string) ([]string, error) {
	s.calls++
	return s.categories, s.err
}

func newLocalModerationFilter() *ModerationFilter {
	return NewModerationFilter(lexicon.Default(), nil, logger.NewNop(), nil)
}

func TestModerationFilter_Check_CleanText(t *testing.T) {
	filter := newLocalModerationFilter()

	got := filter.Check(context.Background(), "منشور عادي عن الطبخ والقهوة")

	if !got.Safe {
		t.Errorf("expected safe verdict, got categories %v", got.Categories)
	}
	if got.Confidence != 0.2 {
		t.Errorf("expected clean confidence 0.2, got %f", got.Confidence)
	}
}

func TestModerationFilter_Check_BannedWord(t *testing.T) {
	filter := newLocalModerationFilter()

	got := filter.Check(context.Background(), "هذا احتيال واضح")

	if got.Safe {
		t.Error("expected unsafe verdict")
	}
	if !containsCategory(got.Categories, domain.CategoryInappropriateLanguage) {
		t.Errorf("expected inappropriate_language, got %v", got.Categories)
	}
	if got.Confidence != 0.8 {
		t.Errorf("expected flagged confidence 0.8, got %f", got.Confidence)
	}
}

func TestModerationFilter_Check_RepeatedCharactersAreSpam(t *testing.T) {
	filter := newLocalModerationFilter()

	got := filter.Check(context.Background(), "AAAAAAAAAAAAAAAAAAAA")

	if got.Safe {
		t.Error("expected unsafe verdict for repeated characters")
	}
	if !containsCategory(got.Categories, domain.CategorySpam) {
		t.Errorf("expected spam, got %v", got.Categories)
	}
}

func TestModerationFilter_Check_ShoutingLineIsSpam(t *testing.T) {
	filter := newLocalModerationFilter()

	got := filter.Check(context.Background(), "BUY NOW LIMITED OFFER!!")

	if !containsCategory(got.Categories, domain.CategorySpam) {
		t.Errorf("expected spam for shouting line, got %v", got.Categories)
	}
}

func TestModerationFilter_Check_AnyLinkIsSpam(t *testing.T) {
	filter := newLocalModerationFilter()

	got := filter.Check(context.Background(), "check out https://example.com for details")

	if !containsCategory(got.Categories, domain.CategorySpam) {
		t.Errorf("expected spam for link, got %v", got.Categories)
	}
	if containsCategory(got.Categories, domain.CategoryExcessiveLinks) {
		t.Errorf("single link must not flag excessive_links, got %v", got.Categories)
	}
}

func TestModerationFilter_Check_ExcessiveLinks(t *testing.T) {
	filter := newLocalModerationFilter()

	text := "https://a.co https://b.co https://c.co https://d.co"
	got := filter.Check(context.Background(), text)

	if !containsCategory(got.Categories, domain.CategoryExcessiveLinks) {
		t.Errorf("expected excessive_links for 4 links, got %v", got.Categories)
	}
	if !containsCategory(got.Categories, domain.CategorySpam) {
		t.Errorf("expected spam alongside excessive_links, got %v", got.Categories)
	}
}

func TestModerationFilter_Check_ExternalCategoriesUnioned(t *testing.T) {
	provider := &stubModerationProvider{categories: []string{"hate_speech", domain.CategorySpam}}
	filter := NewModerationFilter(lexicon.Default(), provider, logger.NewNop(), nil)

	got := filter.Check(context.Background(), "visit https://example.com now")

	want := []string{domain.CategorySpam, "hate_speech"}
	if !reflect.DeepEqual(got.Categories, want) {
		t.Errorf("expected %v, got %v", want, got.Categories)
	}
	if got.Safe {
		t.Error("expected unsafe verdict")
	}
}

func TestModerationFilter_Check_ProviderErrorKeepsLocal(t *testing.T) {
	provider := &stubModerationProvider{err: errors.New("provider down")}
	filter := NewModerationFilter(lexicon.Default(), provider, logger.NewNop(), nil)

	got := filter.Check(context.Background(), "plain harmless sentence")

	if !got.Safe {
		t.Errorf("expected safe verdict, got %v", got.Categories)
	}
}

func TestModerationFilter_Check_SafeMatchesEmptyCategories(t *testing.T) {
	filter := newLocalModerationFilter()

	for _, text := range []string{"", "كلام طيب", "SPAM!!!! https://x.co", "هذا نصب"} {
		got := filter.Check(context.Background(), text)
		if got.Safe != (len(got.Categories) == 0) {
			t.Errorf("safe/categories mismatch for %q: %+v", text, got)
		}
	}
}

func TestHasRepeatedRun(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want bool
	}{
		{"aaaaa", 5, true},
		{"aaaa", 5, false},
		{"xxديديديxx", 5, false},
		{"abcdeeeeef", 5, true},
		{"", 5, false},
	}

	for _, tt := range tests {
		if got := hasRepeatedRun(tt.text, tt.n); got != tt.want {
			t.Errorf("hasRepeatedRun(%q, %d) = %v, want %v", tt.text, tt.n, got, tt.want)
		}
	}
}

func containsCategory(categories []string, want string) bool {
	for _, c := range categories {
		if c == want {
			return true
		}
	}
	return false
}
