package engine

import (
	"context"
	"regexp"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/lexicon"
	"github.com/rawi-social/content-engine/internal/logger"
	"github.com/rawi-social/content-engine/internal/metrics"
)

const (
	componentModeration = "moderation"

	repeatedRunLength = 5
	maxLinkCount      = 3

	flaggedConfidence = 0.8
	cleanConfidence   = 0.2
)

// shoutingPattern matches an all-caps/exclamation line of at least 20
// characters, a structural signal for low-effort spam.
var shoutingPattern = regexp.MustCompile(`(?m)^[A-Z\s!]{20,}$`)

// ModerationFilter flags content via the banned-word list and structural
// spam patterns, optionally unioned with an external moderation API. It
// classifies only; whether an unsafe verdict blocks publication is the
// caller's policy.
type ModerationFilter struct {
	lexicon  *lexicon.Lexicon
	provider ModerationProvider
	logger   logger.Logger
	metrics  *metrics.Recorder
}

// NewModerationFilter creates a moderation filter. provider may be nil.
func NewModerationFilter(lex *lexicon.Lexicon, provider ModerationProvider, log logger.Logger, rec *metrics.Recorder) *ModerationFilter {
	return &ModerationFilter{
		lexicon:  lex,
		provider: provider,
		logger:   log,
		metrics:  rec,
	}
}

// Check classifies text and returns a verdict. Safe is false exactly when at
// least one category was flagged. Provider failures are ignored; the local
// categories stand alone.
func (m *ModerationFilter) Check(ctx context.Context, text string) domain.ModerationVerdict {
	categories := make([]string, 0, 3)

	if len(m.lexicon.BannedMatches(text)) > 0 {
		categories = append(categories, domain.CategoryInappropriateLanguage)
	}
	if m.looksLikeSpam(text) {
		categories = append(categories, domain.CategorySpam)
	}
	if len(linkPattern.FindAllString(text, -1)) > maxLinkCount {
		categories = append(categories, domain.CategoryExcessiveLinks)
	}

	if m.provider != nil && text != "" {
		external, err := m.provider.FlagContent(ctx, text)
		if err != nil {
			m.metrics.ProviderFallback(componentModeration)
			m.logger.Debug("moderation provider unavailable, using local categories only",
				logger.Error(err))
		} else {
			categories = unionCategories(categories, external)
		}
	}

	for _, c := range categories {
		m.metrics.ModerationFlagged(c)
	}

	confidence := cleanConfidence
	if len(categories) > 0 {
		confidence = flaggedConfidence
	}

	return domain.ModerationVerdict{
		Safe:       len(categories) == 0,
		Categories: categories,
		Confidence: confidence,
	}
}

// looksLikeSpam applies the structural spam patterns: a long run of one
// repeated rune, a shouting line, or the presence of a URL. The URL check is
// independent of the excessive-links count and flags any link at all; that
// matches the scoring behavior the feed was tuned against.
func (m *ModerationFilter) looksLikeSpam(text string) bool {
	if hasRepeatedRun(text, repeatedRunLength) {
		return true
	}
	if shoutingPattern.MatchString(text) {
		return true
	}
	return linkPattern.MatchString(text)
}

// hasRepeatedRun reports whether any rune repeats at least n times
// consecutively. Backreference patterns are unavailable in RE2, so the scan
// is explicit.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// unionCategories appends external categories that are not already present,
// preserving order.
func unionCategories(local, external []string) []string {
	seen := make(map[string]struct{}, len(local))
	for _, c := range local {
		seen[c] = struct{}{}
	}
	for _, c := range external {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		local = append(local, c)
	}
	return local
}
