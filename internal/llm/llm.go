// Package llm adapts the configured completion provider to the narrow
// capability the scoring engine consumes.
package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/config"
	"github.com/sells-group/leadscore/internal/scoring"
	"github.com/sells-group/leadscore/pkg/anthropic"
	"github.com/sells-group/leadscore/pkg/groq"
)

// NewCompleter builds a scoring.Completer for the configured provider.
func NewCompleter(cfg config.LLMConfig) (scoring.Completer, error) {
	switch cfg.Provider {
	case "groq", "":
		if cfg.Groq.Key == "" {
			return nil, eris.New("llm: groq api key not configured")
		}
		opts := []groq.Option{groq.WithRateLimit(cfg.Groq.RateLimit)}
		if cfg.Groq.BaseURL != "" {
			opts = append(opts, groq.WithBaseURL(cfg.Groq.BaseURL))
		}
		if cfg.Groq.Model != "" {
			opts = append(opts, groq.WithModel(cfg.Groq.Model))
		}
		return &groqCompleter{client: groq.NewClient(cfg.Groq.Key, opts...)}, nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("llm: anthropic api key not configured")
		}
		return &anthropicCompleter{
			client: anthropic.NewClient(cfg.Anthropic.Key),
			model:  cfg.Anthropic.Model,
		}, nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// groqCompleter issues a single-message chat completion per prompt.
type groqCompleter struct {
	client groq.Client
}

func (c *groqCompleter) Complete(ctx context.Context, prompt string, opts scoring.CompleteOptions) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Messages:    []groq.Message{{Role: "user", Content: prompt}},
		MaxTokens:   &opts.MaxTokens,
		Temperature: &opts.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("llm: empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// anthropicCompleter issues a single-turn message per prompt.
type anthropicCompleter struct {
	client anthropic.Client
	model  string
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string, opts scoring.CompleteOptions) (string, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   int64(opts.MaxTokens),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &opts.Temperature,
	})
	if err != nil {
		return "", err
	}
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", eris.New("llm: empty completion response")
	}
	return strings.TrimSpace(text.String()), nil
}
