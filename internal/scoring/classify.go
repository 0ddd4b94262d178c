package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/model"
)

// Completer is the external text-classification capability: it accepts a
// prompt and returns a single freeform completion, or fails. Implementations
// must honor ctx cancellation and deadlines.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// CompleteOptions bounds a single completion call.
type CompleteOptions struct {
	MaxTokens   int
	Temperature float64
}

const (
	batchMaxTokens  = 800
	singleMaxTokens = 150

	// Near-deterministic decoding so repeated runs classify consistently.
	classifyTemperature = 0.1
)

const unparsedReasoning = "could not parse response"

// classifyBatch issues one completion for a batch of leads and parses the
// reply into one result per lead. Any failure (transport, timeout, empty or
// malformed output) degrades to Low fallbacks for the whole batch; this
// method never fails past its own boundary.
func (e *Engine) classifyBatch(ctx context.Context, leads []model.Lead, offer model.Offer, batchIdx int) []model.ScoreResult {
	prompt := buildBatchPrompt(leads, offer)

	response, err := e.completer.Complete(ctx, prompt, CompleteOptions{
		MaxTokens:   batchMaxTokens,
		Temperature: classifyTemperature,
	})
	if err != nil {
		zap.L().Warn("batch classification failed",
			zap.Int("batch", batchIdx),
			zap.Int("leads", len(leads)),
			zap.Error(err),
		)
		return e.fallbackResults(len(leads), fmt.Sprintf("classification unavailable: %v", err))
	}

	return e.parseBatchResponse(response, len(leads))
}

// parseBatchResponse locates the "PROSPECT k:" line for each expected
// ordinal and classifies it. A missing marker line yields a per-lead Low
// fallback without affecting sibling leads.
func (e *Engine) parseBatchResponse(response string, expected int) []model.ScoreResult {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	results := make([]model.ScoreResult, 0, expected)
	for k := 1; k <= expected; k++ {
		marker := fmt.Sprintf("PROSPECT %d:", k)
		var found string
		for _, line := range lines {
			if strings.Contains(strings.ToUpper(line), marker) {
				found = line
				break
			}
		}

		if found == "" {
			results = append(results, model.ScoreResult{
				Intent:    model.IntentLow,
				Score:     e.weights.AILow,
				Reasoning: unparsedReasoning,
			})
			continue
		}

		intent := intentFromText(found)
		results = append(results, model.ScoreResult{
			Intent:    intent,
			Score:     e.intentScore(intent),
			Reasoning: reasoningFromLine(found),
		})
	}
	return results
}

// classifySingle classifies one lead with its own prompt and the same
// fallback semantics as a batch.
func (e *Engine) classifySingle(ctx context.Context, lead model.Lead, offer model.Offer) model.ScoreResult {
	prompt := buildSinglePrompt(lead, offer)

	response, err := e.completer.Complete(ctx, prompt, CompleteOptions{
		MaxTokens:   singleMaxTokens,
		Temperature: classifyTemperature,
	})
	if err != nil {
		zap.L().Warn("single classification failed",
			zap.String("lead", lead.Name),
			zap.Error(err),
		)
		return model.ScoreResult{
			Intent:    model.IntentLow,
			Score:     e.weights.AILow,
			Reasoning: fmt.Sprintf("classification unavailable: %v", err),
		}
	}

	response = strings.TrimSpace(response)
	intent := intentFromText(response)
	return model.ScoreResult{
		Intent:    intent,
		Score:     e.intentScore(intent),
		Reasoning: reasoningFromLine(response),
	}
}

// intentFromText maps freeform classifier output to an intent. Substring
// checks in priority order: HIGH wins over MEDIUM wins over the Low default.
func intentFromText(s string) model.Intent {
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "HIGH"):
		return model.IntentHigh
	case strings.Contains(upper, "MEDIUM"):
		return model.IntentMedium
	default:
		return model.IntentLow
	}
}

// reasoningFromLine returns the text after the first "-" separator, or the
// whole line when no separator is present.
func reasoningFromLine(line string) string {
	if idx := strings.Index(line, "-"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return line
}

func (e *Engine) intentScore(intent model.Intent) int {
	switch intent {
	case model.IntentHigh:
		return e.weights.AIHigh
	case model.IntentMedium:
		return e.weights.AIMedium
	default:
		return e.weights.AILow
	}
}

func (e *Engine) fallbackResults(n int, reasoning string) []model.ScoreResult {
	results := make([]model.ScoreResult, n)
	for i := range results {
		results[i] = model.ScoreResult{
			Intent:    model.IntentLow,
			Score:     e.weights.AILow,
			Reasoning: reasoning,
		}
	}
	return results
}
