// Package pipeline orchestrates the fallacy analysis flow: validation,
// detection, explanation, ranking, rewrite, and assembly. The orchestrator
// owns the analysis budget and the degradation policy; the stages themselves
// stay oblivious to one another.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rvelikov/fallax/internal/cache"
	"github.com/rvelikov/fallax/internal/detect"
	"github.com/rvelikov/fallax/internal/diag"
	"github.com/rvelikov/fallax/internal/explain"
	"github.com/rvelikov/fallax/internal/llm"
	"github.com/rvelikov/fallax/internal/model"
	"github.com/rvelikov/fallax/internal/rank"
	"github.com/rvelikov/fallax/internal/rewrite"
	"github.com/rvelikov/fallax/internal/validate"
)

// Stage names the pipeline states. An analysis moves forward only; Failed is
// reachable solely from Validating, and from a detection that times out with
// no data.
type Stage string

const (
	StageValidating Stage = "validating"
	StageDetecting  Stage = "detecting"
	StageExplaining Stage = "explaining"
	StageRanking    Stage = "ranking"
	StageRewriting  Stage = "rewriting"
	StageAssembling Stage = "assembling"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// textValidator is the input gate ahead of the reasoning stages.
type textValidator interface {
	Validate(raw string) (string, error)
}

// Pipeline runs complete analyses. Safe for concurrent use: all per-request
// state lives on the stack of Analyze.
type Pipeline struct {
	cfg       *model.Config
	validator textValidator
	detector  *detect.Detector
	explainer *explain.Explainer
	rewriter  *rewrite.Rewriter
	results   *cache.ResultCache
	recorder  *diag.Recorder
	clock     Clock

	// disabled means no reasoning provider is configured. Input is still
	// validated; every analysis then degrades to an indeterminate result.
	disabled bool
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithClock substitutes the time source. Tests use this to drive the budget
// deterministically.
func WithClock(c Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithClient substitutes the reasoning client, bypassing provider
// construction entirely.
func WithClient(client llm.ReasoningClient) Option {
	return func(p *Pipeline) {
		p.detector = detect.NewDetector(client)
		p.explainer = explain.NewExplainer(client, p.cfg.Pipeline.ExplainConcurrency)
		p.rewriter = rewrite.NewRewriter(client)
	}
}

// New creates a pipeline from configuration. Without WithClient, a provider
// is built from cfg.LLM. An empty provider name disables reasoning entirely:
// the pipeline still validates input but every analysis comes back
// indeterminate.
func New(cfg *model.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	p := &Pipeline{
		cfg:       cfg,
		validator: validate.NewTextValidator(cfg.Validation),
		recorder:  diag.NewRecorder(logger),
		clock:     SystemClock{},
	}

	if cfg.Cache.Enabled {
		p.results = cache.NewResultCache(cfg.Cache.TTL)
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.detector == nil {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("create reasoning provider: %w", err)
		}
		if provider == nil {
			p.disabled = true
			return p, nil
		}
		client := llm.NewClient(provider, llm.ConfigFromModel(cfg.LLM))
		p.detector = detect.NewDetector(client)
		p.explainer = explain.NewExplainer(client, cfg.Pipeline.ExplainConcurrency)
		p.rewriter = rewrite.NewRewriter(client)
	}

	return p, nil
}

// Analyze runs the full pipeline over one text. Only two failures surface as
// errors: invalid input, and a detection that exhausts the budget with no
// data. Everything downstream degrades into the result instead.
func (p *Pipeline) Analyze(ctx context.Context, text string, opts model.AnalysisOptions) (*model.AnalysisResult, error) {
	p.recorder.Stage(string(StageValidating), "analysis started",
		slog.String("text_ref", diag.TextRef(text)),
	)

	normalized, err := p.validator.Validate(text)
	if err != nil {
		p.recorder.Failed(string(StageFailed), err)
		return nil, err
	}

	// Elapsed time and the budget both run from validator-pass, not from
	// request arrival.
	start := p.clock.Now()

	if opts.MinConfidence < 0 {
		opts.MinConfidence = 0
	}

	if p.disabled {
		p.recorder.Stage(string(StageAssembling), "reasoning disabled, result is indeterminate")
		return p.assemble(normalized, nil, nil, true, start), nil
	}

	cacheKey := cache.Key(normalized, opts)
	if cached, found := p.results.Get(cacheKey); found {
		p.recorder.Stage(string(StageDone), "cache hit",
			slog.String("text_ref", diag.TextRef(normalized)),
		)
		return cached, nil
	}

	// The budget spans detection through rewrite. Both enforcement paths are
	// active: the context cancels in-flight calls in real runs, and the clock
	// checks at stage boundaries keep the policy testable.
	deadline := start.Add(p.budget())
	budgetCtx, cancel := context.WithTimeout(ctx, p.budget())
	defer cancel()

	p.recorder.Stage(string(StageDetecting), "detection started")
	candidates, detectErr := p.detector.Detect(budgetCtx, normalized)

	if detectErr != nil {
		if p.expired(deadline) || errors.Is(detectErr, context.DeadlineExceeded) {
			p.recorder.Failed(string(StageFailed), model.ErrBudgetExceeded)
			return nil, model.ErrBudgetExceeded
		}
		// Transport or parse exhaustion with time left: degrade to an
		// indeterminate result rather than failing the request. Degraded
		// results are never cached, so a recovered provider is retried on
		// the next request for the same text.
		p.recorder.Degraded(string(StageDetecting), detectErr)
		return p.assemble(normalized, nil, nil, true, start), nil
	}

	if len(candidates) == 0 {
		p.recorder.Stage(string(StageAssembling), "no fallacies detected")
		result := p.assemble(normalized, nil, nil, false, start)
		p.results.Set(cacheKey, result)
		return result, nil
	}

	p.recorder.Stage(string(StageExplaining), "explanation fan-out",
		slog.Int("candidates", len(candidates)),
	)
	explanations := p.explainer.Explain(p.stageCtx(budgetCtx, deadline), candidates)

	detected := make([]model.DetectedFallacy, len(candidates))
	for i, c := range candidates {
		detected[i] = model.DetectedFallacy{
			CandidateFallacy: c,
			Explanation:      explanations[i],
		}
	}

	p.recorder.Stage(string(StageRanking), "ranking",
		slog.Int("min_confidence", opts.MinConfidence),
	)
	ranked := rank.Rank(detected, opts.MinConfidence)

	var rewritten *model.BalancedRewrite
	switch {
	case !opts.IncludeRewrite || len(ranked) == 0:
		p.recorder.Stage(string(StageRewriting), "no rewrite necessary")
	case p.expired(deadline):
		p.recorder.Stage(string(StageRewriting), "rewrite skipped, budget spent")
	default:
		p.recorder.Stage(string(StageRewriting), "rewrite started")
		rewritten, err = p.rewriter.Rewrite(budgetCtx, normalized, ranked)
		if err != nil {
			p.recorder.Degraded(string(StageRewriting), err)
			rewritten = nil
		}
	}

	p.recorder.Stage(string(StageAssembling), "assembling",
		slog.Int("fallacies", len(ranked)),
	)
	result := p.assemble(normalized, ranked, rewritten, false, start)
	if err := checkInvariants(normalized, result); err != nil {
		p.recorder.Failed(string(StageFailed), err)
		return nil, err
	}

	p.results.Set(cacheKey, result)
	p.recorder.Stage(string(StageDone), "analysis complete",
		slog.Int64("elapsed_ms", result.ElapsedMS),
	)
	return result, nil
}

func (p *Pipeline) assemble(text string, fallacies []model.DetectedFallacy, rewritten *model.BalancedRewrite, indeterminate bool, start time.Time) *model.AnalysisResult {
	if fallacies == nil {
		fallacies = []model.DetectedFallacy{}
	}
	return &model.AnalysisResult{
		InputText:         text,
		DetectedFallacies: fallacies,
		Summary:           BuildSummary(fallacies, indeterminate),
		Rewrite:           rewritten,
		ElapsedMS:         p.clock.Now().Sub(start).Milliseconds(),
	}
}

func (p *Pipeline) budget() time.Duration {
	if p.cfg.Pipeline.Budget <= 0 {
		return 10 * time.Second
	}
	return p.cfg.Pipeline.Budget
}

func (p *Pipeline) expired(deadline time.Time) bool {
	return !p.clock.Now().Before(deadline)
}

// stageCtx returns the budget context, or an already-cancelled one when the
// clock says the budget is spent. The cancelled context makes downstream
// stages take their degradation path without real waiting.
func (p *Pipeline) stageCtx(budgetCtx context.Context, deadline time.Time) context.Context {
	if !p.expired(deadline) {
		return budgetCtx
	}
	expired, cancel := context.WithCancel(budgetCtx)
	cancel()
	return expired
}
