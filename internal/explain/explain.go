package explain

import (
	"context"

	"github.com/rvelikov/fallax/internal/llm"
	"github.com/rvelikov/fallax/internal/model"
	"github.com/rvelikov/fallax/internal/worker"
)

// MaxConcurrency caps the explanation fan-out regardless of configuration.
const MaxConcurrency = 5

// Explainer produces an explanation for every candidate, fanning out across a
// worker pool. It never fails: any candidate whose engine call does not
// succeed gets a canned fallback explanation instead.
type Explainer struct {
	client      llm.ReasoningClient
	concurrency int
}

// NewExplainer creates an explainer with the given fan-out width, capped at
// MaxConcurrency.
func NewExplainer(client llm.ReasoningClient, concurrency int) *Explainer {
	if concurrency <= 0 || concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}
	return &Explainer{client: client, concurrency: concurrency}
}

type explainJob struct {
	ctx       context.Context
	client    llm.ReasoningClient
	index     int
	candidate model.CandidateFallacy
}

type explainResult struct {
	index       int
	explanation *model.Explanation
	err         error
}

func (r *explainResult) GetError() error { return r.err }

func (j *explainJob) Execute(_ context.Context) worker.Result {
	// The budget context governs the call, not the pool's lifetime context.
	if j.ctx.Err() != nil {
		return &explainResult{index: j.index, err: j.ctx.Err()}
	}

	exp, err := j.client.ExplainFallacy(j.ctx, j.candidate.Kind, j.candidate.Excerpt)
	if err != nil {
		return &explainResult{index: j.index, err: err}
	}
	return &explainResult{index: j.index, explanation: exp}
}

// Explain returns exactly one explanation per candidate, in candidate order.
// Failed or budget-starved calls yield fallback explanations, so the output
// length always equals the input length.
func (e *Explainer) Explain(ctx context.Context, candidates []model.CandidateFallacy) []*model.Explanation {
	explanations := make([]*model.Explanation, len(candidates))
	if len(candidates) == 0 {
		return explanations
	}

	pool := worker.NewPoolSized(e.concurrency, len(candidates))
	pool.Start()

	for i, c := range candidates {
		pool.Submit(&explainJob{ctx: ctx, client: e.client, index: i, candidate: c})
	}

	for _, res := range pool.Wait() {
		r := res.(*explainResult)
		explanations[r.index] = r.explanation
	}

	for i, exp := range explanations {
		if exp == nil {
			explanations[i] = FallbackExplanation(candidates[i].Kind)
		}
	}

	return explanations
}
