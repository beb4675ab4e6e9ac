// Package lexicon holds the fixed keyword lists behind sentiment scoring and
// moderation, with Aho-Corasick matchers for single-pass substring lookup.
//
// Matching is deliberately substring containment, not word-boundary matching:
// a listed word embedded inside a longer unrelated word still counts. That
// mirrors the scoring behavior the rest of the system was tuned against, so
// callers must tolerate partial-word false positives.
package lexicon

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lexicon bundles the sentiment buckets, stop words, and banned words.
// It is immutable after construction and safe for concurrent use.
type Lexicon struct {
	positive []string
	negative []string
	neutral  []string
	banned   []string

	posMatcher *ahocorasick.Matcher
	negMatcher *ahocorasick.Matcher
	neuMatcher *ahocorasick.Matcher
	banMatcher *ahocorasick.Matcher

	stopwords map[string]struct{}
}

// Config overrides the default word lists. Empty fields keep the defaults.
type Config struct {
	Positive  []string `yaml:"positive"`
	Negative  []string `yaml:"negative"`
	Neutral   []string `yaml:"neutral"`
	Banned    []string `yaml:"banned"`
	Stopwords []string `yaml:"stopwords"`
}

// Default returns a lexicon built from the built-in word lists.
func Default() *Lexicon {
	return New(Config{})
}

// New builds a lexicon from cfg, falling back to the built-in lists for any
// empty field.
func New(cfg Config) *Lexicon {
	l := &Lexicon{
		positive:  normalizeAll(orDefault(cfg.Positive, defaultPositive)),
		negative:  normalizeAll(orDefault(cfg.Negative, defaultNegative)),
		neutral:   normalizeAll(orDefault(cfg.Neutral, defaultNeutral)),
		banned:    normalizeAll(orDefault(cfg.Banned, defaultBanned)),
		stopwords: make(map[string]struct{}),
	}

	for _, w := range orDefault(cfg.Stopwords, defaultStopwords) {
		l.stopwords[Normalize(w)] = struct{}{}
	}

	l.posMatcher = buildMatcher(l.positive)
	l.negMatcher = buildMatcher(l.negative)
	l.neuMatcher = buildMatcher(l.neutral)
	l.banMatcher = buildMatcher(l.banned)

	return l
}

// SentimentHits counts how many words from each sentiment bucket occur as
// substrings of text. Each listed word counts at most once.
func (l *Lexicon) SentimentHits(text string) (positive, negative, neutral int) {
	if text == "" {
		return 0, 0, 0
	}
	in := []byte(Normalize(text))
	return matchCount(l.posMatcher, in), matchCount(l.negMatcher, in), matchCount(l.neuMatcher, in)
}

// BannedMatches returns the banned words that occur as substrings of text,
// in list order.
func (l *Lexicon) BannedMatches(text string) []string {
	if text == "" || l.banMatcher == nil {
		return nil
	}
	hits := l.banMatcher.Match([]byte(Normalize(text)))
	if len(hits) == 0 {
		return nil
	}
	matched := make([]string, 0, len(hits))
	for _, idx := range hits {
		if idx < len(l.banned) {
			matched = append(matched, l.banned[idx])
		}
	}
	return matched
}

// IsStopword reports whether the (normalized) token is a stop word.
func (l *Lexicon) IsStopword(token string) bool {
	_, ok := l.stopwords[Normalize(token)]
	return ok
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text and strips combining marks, which removes Arabic
// diacritics (tashkeel) so vocalized and bare spellings match the same entry.
func Normalize(s string) string {
	s = strings.ToLower(s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return strings.ReplaceAll(out, "ـ", "") // tatweel
}

func buildMatcher(words []string) *ahocorasick.Matcher {
	if len(words) == 0 {
		return nil
	}
	return ahocorasick.NewStringMatcher(words)
}

func matchCount(m *ahocorasick.Matcher, in []byte) int {
	if m == nil {
		return 0
	}
	return len(m.Match(in))
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		n := Normalize(strings.TrimSpace(w))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func orDefault(words, def []string) []string {
	if len(words) == 0 {
		return def
	}
	return words
}
