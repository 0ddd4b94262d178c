package scoring

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscore/internal/model"
)

func TestScoreBulk_Empty(t *testing.T) {
	e := newTestEngine(&mockCompleter{})

	results := e.ScoreBulk(context.Background(), nil, model.Offer{})

	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestScoreBulk_MergesRuleAndClassificationScores(t *testing.T) {
	e := newTestEngine(&mockCompleter{
		response: "PROSPECT 1: HIGH - perfect fit\nPROSPECT 2: LOW - wrong industry",
	})

	leads := []model.Lead{
		{Name: "Ava", Role: "CEO", Company: "Acme", Industry: "SaaS"},
		{Name: "Ben"},
	}
	offer := model.Offer{Name: "Tool", IdealUseCases: []string{"saas"}}

	results := e.ScoreBulk(context.Background(), leads, offer)
	require.Len(t, results, 2)

	// Lead 1: rule 30+25+10 = 65, classification High = 50.
	assert.Equal(t, model.IntentHigh, results[0].Intent)
	assert.Equal(t, 115, results[0].Score)
	assert.Equal(t, "perfect fit", results[0].Reasoning)

	// Lead 2: rule 0, classification Low = 10.
	assert.Equal(t, model.IntentLow, results[1].Intent)
	assert.Equal(t, 10, results[1].Score)
}

func TestScoreBulk_RuleScoringNeverAltersIntent(t *testing.T) {
	// A lead with a huge rule score still keeps the classifier's intent.
	e := newTestEngine(&mockCompleter{response: "PROSPECT 1: LOW - not a buyer"})

	lead := model.Lead{Name: "Ava", Role: "CEO", Company: "Acme", Industry: "SaaS"}
	results := e.ScoreBulk(context.Background(), []model.Lead{lead}, model.Offer{IdealUseCases: []string{"saas"}})

	require.Len(t, results, 1)
	assert.Equal(t, model.IntentLow, results[0].Intent)
	assert.Equal(t, "not a buyer", results[0].Reasoning)
	assert.Equal(t, 65+10, results[0].Score)
}

// batchResponse fabricates a well-formed reply for however many PROSPECT
// entries the prompt asked about.
func batchResponse(prompt, intent string) string {
	count := strings.Count(prompt, "PROSPECT ") - 2 // minus the two format-instruction lines
	var b strings.Builder
	for k := 1; k <= count; k++ {
		fmt.Fprintf(&b, "PROSPECT %d: %s - canned\n", k, intent)
	}
	return b.String()
}

func TestScoreBulk_PreservesOrderAcrossBatches(t *testing.T) {
	// Batch size 1 across three leads; the first batch is delayed so later
	// batches complete first. Output must still follow input order.
	completer := &mockCompleter{fn: func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Name: A\n") {
			time.Sleep(50 * time.Millisecond)
			return "PROSPECT 1: HIGH - first lead", nil
		}
		if strings.Contains(prompt, "Name: B\n") {
			return "PROSPECT 1: MEDIUM - second lead", nil
		}
		return "PROSPECT 1: LOW - third lead", nil
	}}

	e := NewEngine(completer, Config{BatchSize: 1, MaxWorkers: 3})
	leads := []model.Lead{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	results := e.ScoreBulk(context.Background(), leads, model.Offer{})
	require.Len(t, results, 3)

	assert.Equal(t, model.IntentHigh, results[0].Intent)
	assert.Equal(t, "first lead", results[0].Reasoning)
	assert.Equal(t, model.IntentMedium, results[1].Intent)
	assert.Equal(t, "second lead", results[1].Reasoning)
	assert.Equal(t, model.IntentLow, results[2].Intent)
	assert.Equal(t, "third lead", results[2].Reasoning)
}

func TestScoreBulk_FailedBatchIsIsolated(t *testing.T) {
	// Batch 2 of 3 fails; its leads degrade to Low fallbacks while the
	// sibling batches keep their classifier results.
	completer := &mockCompleter{fn: func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Name: lead-3\n") {
			return "", assert.AnError
		}
		if strings.Contains(prompt, "Name: lead-1\n") {
			return batchResponse(prompt, "HIGH"), nil
		}
		return batchResponse(prompt, "MEDIUM"), nil
	}}

	e := NewEngine(completer, Config{BatchSize: 2, MaxWorkers: 3})
	leads := []model.Lead{
		{Name: "lead-1"}, {Name: "lead-2"},
		{Name: "lead-3"}, {Name: "lead-4"},
		{Name: "lead-5"},
	}

	results := e.ScoreBulk(context.Background(), leads, model.Offer{})
	require.Len(t, results, 5)

	assert.Equal(t, model.IntentHigh, results[0].Intent)
	assert.Equal(t, model.IntentHigh, results[1].Intent)

	assert.Equal(t, model.IntentLow, results[2].Intent)
	assert.Contains(t, results[2].Reasoning, "classification unavailable")
	assert.Equal(t, model.IntentLow, results[3].Intent)
	assert.Contains(t, results[3].Reasoning, "classification unavailable")

	assert.Equal(t, model.IntentMedium, results[4].Intent)
}

func TestScoreBulk_TotalFailureStillReturnsFullLength(t *testing.T) {
	e := NewEngine(&mockCompleter{err: assert.AnError}, Config{BatchSize: 3})

	leads := make([]model.Lead, 10)
	for i := range leads {
		leads[i] = model.Lead{Name: fmt.Sprintf("lead-%d", i)}
	}

	results := e.ScoreBulk(context.Background(), leads, model.Offer{})
	require.Len(t, results, len(leads))

	for _, r := range results {
		assert.Equal(t, model.IntentLow, r.Intent)
		assert.Equal(t, 10, r.Score)
	}
}

func TestScoreBulk_BatchTimeout(t *testing.T) {
	// The completer honors ctx; a stalled batch times out and degrades
	// without delaying the run past its own deadline.
	completer := &mockCompleter{fn: func(ctx context.Context, prompt string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "PROSPECT 1: HIGH - too late", nil
		}
	}}

	e := NewEngine(completer, Config{BatchSize: 1, BatchTimeout: 20 * time.Millisecond})

	start := time.Now()
	results := e.ScoreBulk(context.Background(), []model.Lead{{Name: "A"}}, model.Offer{})
	elapsed := time.Since(start)

	require.Len(t, results, 1)
	assert.Equal(t, model.IntentLow, results[0].Intent)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestScoreBulk_BatchPartitioning(t *testing.T) {
	// 25 leads at batch size 10 should produce exactly 3 calls.
	completer := &mockCompleter{fn: func(ctx context.Context, prompt string) (string, error) {
		return batchResponse(prompt, "MEDIUM"), nil
	}}

	e := NewEngine(completer, Config{BatchSize: 10, MaxWorkers: 1})
	leads := make([]model.Lead, 25)
	for i := range leads {
		leads[i] = model.Lead{Name: fmt.Sprintf("lead-%d", i)}
	}

	results := e.ScoreBulk(context.Background(), leads, model.Offer{})
	require.Len(t, results, 25)
	assert.Equal(t, int64(3), completer.calls.Load())
}

func TestScoreOne(t *testing.T) {
	e := newTestEngine(&mockCompleter{response: "MEDIUM - some alignment"})

	lead := model.Lead{Name: "Ava", Role: "Senior Engineer", Company: "Acme", Industry: "SaaS"}
	result := e.ScoreOne(context.Background(), lead, model.Offer{IdealUseCases: []string{"saas"}})

	// Rule 15+25+10 = 50, classification Medium = 30.
	assert.Equal(t, model.IntentMedium, result.Intent)
	assert.Equal(t, 80, result.Score)
	assert.Equal(t, "some alignment", result.Reasoning)
}

func TestScoreOne_Fallback(t *testing.T) {
	e := newTestEngine(&mockCompleter{err: assert.AnError})

	result := e.ScoreOne(context.Background(), model.Lead{Name: "Ava"}, model.Offer{})

	assert.Equal(t, model.IntentLow, result.Intent)
	assert.Equal(t, 10, result.Score)
}
