package engine

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rawi-social/content-engine/internal/lexicon"
)

const (
	defaultMaxTags  = 5
	keywordPoolSize = 10
	minTokenRunes   = 3
)

// Characters outside the Latin word-character and Arabic ranges are noise
// for keyword extraction and get stripped before tokenizing.
var nonWordPattern = regexp.MustCompile(`[^\w\s\x{0600}-\x{06FF}]`)

// TagGenerator extracts an ordered set of topical tags from text: the most
// frequent keywords first, then any hashtags, deduplicated and capped.
type TagGenerator struct {
	lexicon *lexicon.Lexicon
	maxTags int
}

// NewTagGenerator creates a tag generator. maxTags <= 0 falls back to the
// default cap of 5.
func NewTagGenerator(lex *lexicon.Lexicon, maxTags int) *TagGenerator {
	if maxTags <= 0 {
		maxTags = defaultMaxTags
	}
	return &TagGenerator{lexicon: lex, maxTags: maxTags}
}

// Generate returns at most maxTags unique tags for text. Keywords are ranked
// by descending frequency with first-seen order breaking ties; hashtags are
// appended after keywords. Empty text yields an empty list.
func (g *TagGenerator) Generate(text string) []string {
	if text == "" {
		return []string{}
	}

	keywords := g.topKeywords(text)
	merged := make([]string, 0, len(keywords)+g.maxTags)
	seen := make(map[string]struct{})

	appendUnique := func(tag string) {
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}

	for _, kw := range keywords {
		appendUnique(kw)
	}
	for _, ht := range Hashtags(text) {
		appendUnique(ht)
	}

	if len(merged) > g.maxTags {
		merged = merged[:g.maxTags]
	}
	return merged
}

// topKeywords returns up to 10 tokens ranked by descending frequency.
// The sort is stable so equally frequent tokens keep first-seen order.
func (g *TagGenerator) topKeywords(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(text, "")

	type tokenCount struct {
		token string
		count int
	}

	counts := make(map[string]int)
	order := make([]string, 0)

	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) < minTokenRunes || g.lexicon.IsStopword(tok) {
			continue
		}
		if _, exists := counts[tok]; !exists {
			order = append(order, tok)
		}
		counts[tok]++
	}

	ranked := make([]tokenCount, 0, len(order))
	for _, tok := range order {
		ranked = append(ranked, tokenCount{token: tok, count: counts[tok]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})

	if len(ranked) > keywordPoolSize {
		ranked = ranked[:keywordPoolSize]
	}

	keywords := make([]string, 0, len(ranked))
	for _, tc := range ranked {
		keywords = append(keywords, tc.token)
	}
	return keywords
}
