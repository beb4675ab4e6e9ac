// Package openai adapts the OpenAI API to the engine's provider interfaces
// for quality scoring, sentiment classification, and moderation.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/rawi-social/content-engine/internal/domain"
)

const (
	defaultTimeout = 5 * time.Second
	defaultRPS     = 10
	maxScore       = 10.0

	qualityPrompt = "Rate the quality of the following social media post on a scale " +
		"from 0 to 10. Respond with a single number and nothing else.\n\n"
	sentimentPrompt = "Classify the sentiment of the following social media post. " +
		"Respond with JSON exactly of the form " +
		`{"label":"positive|negative|neutral","confidence":0.0}` + " and nothing else.\n\n"

	completionMaxTokens = 20
)

// Config holds provider configuration.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	RPS     int
	// BaseURL overrides the API endpoint, used in tests.
	BaseURL string
}

// Client calls the OpenAI API with per-call timeouts and a shared rate
// limit. It satisfies the engine's QualityProvider, SentimentProvider, and
// ModerationProvider interfaces.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// New creates a provider client. Returns nil when no API key is configured,
// which the engine treats as "no provider".
func New(cfg Config) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
	}
}

// ScoreQuality fetches an external quality score in [0,10]. A non-numeric or
// out-of-range reply is an error, never silently clamped.
func (c *Client) ScoreQuality(ctx context.Context, text string) (float64, error) {
	reply, err := c.complete(ctx, qualityPrompt+text)
	if err != nil {
		return 0, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed score %q", domain.ErrProviderUnavailable, reply)
	}
	if score < 0 || score > maxScore {
		return 0, fmt.Errorf("%w: score %v out of range", domain.ErrProviderUnavailable, score)
	}
	return score, nil
}

type sentimentReply struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ClassifySentiment fetches an external sentiment label and confidence.
func (c *Client) ClassifySentiment(ctx context.Context, text string) (string, float64, error) {
	reply, err := c.complete(ctx, sentimentPrompt+text)
	if err != nil {
		return "", 0, err
	}

	var parsed sentimentReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &parsed); err != nil {
		return "", 0, fmt.Errorf("%w: malformed sentiment reply %q", domain.ErrProviderUnavailable, reply)
	}

	switch parsed.Label {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
	default:
		return "", 0, fmt.Errorf("%w: unknown sentiment label %q", domain.ErrProviderUnavailable, parsed.Label)
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return "", 0, fmt.Errorf("%w: confidence %v out of range", domain.ErrProviderUnavailable, parsed.Confidence)
	}

	return parsed.Label, parsed.Confidence, nil
}

// FlagContent runs the moderation endpoint and returns the flagged category
// names.
func (c *Client) FlagContent(ctx context.Context, text string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.Moderations(callCtx, openai.ModerationRequest{Input: text})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: empty moderation response", domain.ErrProviderUnavailable)
	}

	return flaggedCategories(resp.Results[0]), nil
}

func flaggedCategories(result openai.Result) []string {
	if !result.Flagged {
		return nil
	}

	cats := result.Categories
	var flagged []string
	for _, c := range []struct {
		name    string
		flagged bool
	}{
		{"hate", cats.Hate || cats.HateThreatening},
		{"harassment", cats.Harassment || cats.HarassmentThreatening},
		{"self_harm", cats.SelfHarm || cats.SelfHarmIntent || cats.SelfHarmInstructions},
		{"sexual", cats.Sexual || cats.SexualMinors},
		{"violence", cats.Violence || cats.ViolenceGraphic},
	} {
		if c.flagged {
			flagged = append(flagged, c.name)
		}
	}
	return flagged
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: completionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrProviderUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}
