package rewrite

import (
	"context"

	"github.com/rvelikov/fallax/internal/llm"
	"github.com/rvelikov/fallax/internal/model"
)

// Rewriter produces a balanced rewrite of a text given its surviving fallacy
// set. It is a best-effort stage: callers treat any error as "no rewrite"
// rather than failing the analysis.
type Rewriter struct {
	client llm.ReasoningClient
}

// NewRewriter creates a rewriter over the given reasoning client.
func NewRewriter(client llm.ReasoningClient) *Rewriter {
	return &Rewriter{client: client}
}

// Rewrite returns a corrected version of the text, or nil when there is
// nothing to correct.
func (r *Rewriter) Rewrite(ctx context.Context, text string, fallacies []model.DetectedFallacy) (*model.BalancedRewrite, error) {
	if len(fallacies) == 0 {
		return nil, nil
	}
	return r.client.GenerateRewrite(ctx, text, fallacies)
}
