// Package scoring computes purchase-intent scores for sales leads by
// combining deterministic rule sub-scores with a natural-language fitness
// classification obtained from an external completion capability.
package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscore/internal/model"
)

const (
	defaultBatchSize     = 10
	defaultMaxWorkers    = 3
	defaultBatchTimeout  = 30 * time.Second
	defaultSingleTimeout = 15 * time.Second
)

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	BatchSize     int           `yaml:"batch_size" mapstructure:"batch_size"`
	MaxWorkers    int           `yaml:"max_workers" mapstructure:"max_workers"`
	BatchTimeout  time.Duration `yaml:"batch_timeout" mapstructure:"batch_timeout"`
	SingleTimeout time.Duration `yaml:"single_timeout" mapstructure:"single_timeout"`
	Weights       Weights       `yaml:"weights" mapstructure:"weights"`
}

// Engine scores leads against an offer. Construction fixes the weights and
// concurrency knobs; the engine itself holds no per-run state.
type Engine struct {
	completer     Completer
	weights       Weights
	batchSize     int
	maxWorkers    int
	batchTimeout  time.Duration
	singleTimeout time.Duration
}

// NewEngine creates an Engine backed by the given completion capability.
func NewEngine(completer Completer, cfg Config) *Engine {
	e := &Engine{
		completer:     completer,
		weights:       cfg.Weights,
		batchSize:     cfg.BatchSize,
		maxWorkers:    cfg.MaxWorkers,
		batchTimeout:  cfg.BatchTimeout,
		singleTimeout: cfg.SingleTimeout,
	}
	if e.weights == (Weights{}) {
		e.weights = DefaultWeights()
	}
	if e.batchSize <= 0 {
		e.batchSize = defaultBatchSize
	}
	if e.maxWorkers <= 0 {
		e.maxWorkers = defaultMaxWorkers
	}
	if e.batchTimeout <= 0 {
		e.batchTimeout = defaultBatchTimeout
	}
	if e.singleTimeout <= 0 {
		e.singleTimeout = defaultSingleTimeout
	}
	return e
}

// ScoreBulk scores every lead against the offer and returns one result per
// lead in input order. Classification failures degrade individual batches to
// Low fallbacks; the returned slice always has len(leads) entries and the
// method itself never fails.
func (e *Engine) ScoreBulk(ctx context.Context, leads []model.Lead, offerLike any) []model.ScoreResult {
	if len(leads) == 0 {
		return []model.ScoreResult{}
	}

	offer := NormalizeOffer(offerLike)

	// Contiguous fixed-size batches, keyed by index so out-of-order
	// completion cannot disturb the output ordering.
	numBatches := (len(leads) + e.batchSize - 1) / e.batchSize
	batchResults := make([][]model.ScoreResult, numBatches)

	var g errgroup.Group
	g.SetLimit(e.maxWorkers)

	for i := 0; i < numBatches; i++ {
		start := i * e.batchSize
		end := min(start+e.batchSize, len(leads))

		g.Go(func() error {
			bctx, cancel := context.WithTimeout(ctx, e.batchTimeout)
			defer cancel()
			batchResults[i] = e.classifyBatch(bctx, leads[start:end], offer, i)
			return nil
		})
	}
	// Workers absorb their own failures into fallback results.
	_ = g.Wait()

	results := make([]model.ScoreResult, 0, len(leads))
	for _, batch := range batchResults {
		results = append(results, batch...)
	}

	for i := range results {
		ruleScore := e.RuleScore(leads[i], offer)
		aiScore := results[i].Score
		results[i].Score = ruleScore + aiScore

		zap.L().Info("lead scored",
			zap.Int("lead", i+1),
			zap.String("name", leads[i].Name),
			zap.Int("final_score", results[i].Score),
			zap.Int("rule_score", ruleScore),
			zap.Int("ai_score", aiScore),
			zap.String("intent", string(results[i].Intent)),
		)
	}
	return results
}

// ScoreOne scores a single lead with a dedicated single-lead prompt and
// timeout. Same merge and fallback semantics as ScoreBulk.
func (e *Engine) ScoreOne(ctx context.Context, lead model.Lead, offerLike any) model.ScoreResult {
	offer := NormalizeOffer(offerLike)

	cctx, cancel := context.WithTimeout(ctx, e.singleTimeout)
	defer cancel()

	result := e.classifySingle(cctx, lead, offer)
	ruleScore := e.RuleScore(lead, offer)
	result.Score += ruleScore

	zap.L().Info("lead scored",
		zap.String("name", lead.Name),
		zap.String("company", lead.Company),
		zap.Int("final_score", result.Score),
		zap.Int("rule_score", ruleScore),
		zap.String("intent", string(result.Intent)),
	)
	return result
}
