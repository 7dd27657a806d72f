package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rvelikov/fallax/internal/model"
	"github.com/rvelikov/fallax/internal/worker"
)

// ReasoningClient is the narrow capability the pipeline stages depend on:
// three operations against the semantic-reasoning engine. Stage code never
// sees a concrete provider, which keeps the pipeline's control flow fully
// testable with deterministic doubles.
type ReasoningClient interface {
	// DetectFallacies finds candidate reasoning fallacies in the text
	DetectFallacies(ctx context.Context, text string) ([]model.CandidateFallacy, error)

	// ExplainFallacy explains one detected fallacy occurrence
	ExplainFallacy(ctx context.Context, kind, excerpt string) (*model.Explanation, error)

	// GenerateRewrite produces a balanced rewrite addressing the fallacy set
	GenerateRewrite(ctx context.Context, text string, fallacies []model.DetectedFallacy) (*model.BalancedRewrite, error)
}

// Client implements ReasoningClient on top of a raw completion Provider.
// Each operation gets a per-call timeout, retries with fixed backoff on
// transport failure, and shared rate limiting. Malformed output is never
// retried: it surfaces as a ParseError and the caller decides the fallback.
type Client struct {
	provider Provider
	config   Config
	limiter  *worker.Limiter
}

// NewClient creates a reasoning client over the given provider.
func NewClient(provider Provider, config Config) *Client {
	return &Client{
		provider: provider,
		config:   config,
		limiter:  worker.NewLimiter(config.RequestsPerSecond, config.BurstSize),
	}
}

// Provider exposes the underlying provider (for availability probes).
func (c *Client) Provider() Provider {
	return c.provider
}

const analystSystem = "You are a precise logic analyst. You identify reasoning fallacies in argumentative text. You respond with the exact JSON requested and nothing else."

// Wire structures for the engine's near-structured output. Fields may be
// missing or out of range; downstream stages normalize them.

type wireCandidate struct {
	Kind       string `json:"kind"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Excerpt    string `json:"excerpt"`
	Confidence int    `json:"confidence"`
}

type wireExplanation struct {
	Definition      string `json:"definition"`
	Rationale       string `json:"rationale"`
	EducationalNote string `json:"educational_note"`
}

type wireRewrite struct {
	Text    string `json:"text"`
	Changes []struct {
		OriginalSegment string `json:"original_segment"`
		RevisedSegment  string `json:"revised_segment"`
		Reason          string `json:"reason"`
	} `json:"changes"`
}

// DetectFallacies runs the detection call and parses its structured output
// into candidate records. Candidates are returned as parsed; bounds checking
// and confidence clamping belong to the detector stage.
func (c *Client) DetectFallacies(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
	prompt := buildDetectPrompt(text)

	response, err := c.complete(ctx, "detect", prompt)
	if err != nil {
		return nil, err
	}

	jsonStr, ok := extractJSONArray(response)
	if !ok {
		return nil, &model.ParseError{Op: "detect", Err: fmt.Errorf("no JSON array found in response")}
	}

	var wire []wireCandidate
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		return nil, &model.ParseError{Op: "detect", Err: fmt.Errorf("unmarshal candidates: %w", err)}
	}

	candidates := make([]model.CandidateFallacy, 0, len(wire))
	for _, w := range wire {
		candidates = append(candidates, model.CandidateFallacy{
			Kind:          strings.TrimSpace(strings.ToLower(w.Kind)),
			Start:         w.Start,
			End:           w.End,
			Excerpt:       w.Excerpt,
			RawConfidence: w.Confidence,
		})
	}

	return candidates, nil
}

// ExplainFallacy runs one explanation call.
func (c *Client) ExplainFallacy(ctx context.Context, kind, excerpt string) (*model.Explanation, error) {
	prompt := buildExplainPrompt(kind, excerpt)

	response, err := c.complete(ctx, "explain", prompt)
	if err != nil {
		return nil, err
	}

	jsonStr, ok := extractJSONObject(response)
	if !ok {
		return nil, &model.ParseError{Op: "explain", Err: fmt.Errorf("no JSON object found in response")}
	}

	var wire wireExplanation
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		return nil, &model.ParseError{Op: "explain", Err: fmt.Errorf("unmarshal explanation: %w", err)}
	}

	if wire.Definition == "" && wire.Rationale == "" {
		return nil, &model.ParseError{Op: "explain", Err: fmt.Errorf("explanation is empty")}
	}

	return &model.Explanation{
		Definition:      wire.Definition,
		Rationale:       wire.Rationale,
		EducationalNote: wire.EducationalNote,
	}, nil
}

// GenerateRewrite runs the rewrite call conditioned on the full fallacy set.
func (c *Client) GenerateRewrite(ctx context.Context, text string, fallacies []model.DetectedFallacy) (*model.BalancedRewrite, error) {
	prompt := buildRewritePrompt(text, fallacies)

	response, err := c.complete(ctx, "rewrite", prompt)
	if err != nil {
		return nil, err
	}

	jsonStr, ok := extractJSONObject(response)
	if !ok {
		return nil, &model.ParseError{Op: "rewrite", Err: fmt.Errorf("no JSON object found in response")}
	}

	var wire wireRewrite
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		return nil, &model.ParseError{Op: "rewrite", Err: fmt.Errorf("unmarshal rewrite: %w", err)}
	}

	if strings.TrimSpace(wire.Text) == "" {
		return nil, &model.ParseError{Op: "rewrite", Err: fmt.Errorf("rewritten text is empty")}
	}

	changes := make([]model.RewriteChange, 0, len(wire.Changes))
	for _, ch := range wire.Changes {
		changes = append(changes, model.RewriteChange{
			OriginalSegment: ch.OriginalSegment,
			RevisedSegment:  ch.RevisedSegment,
			Reason:          ch.Reason,
		})
	}

	return &model.BalancedRewrite{
		Text:    strings.TrimSpace(wire.Text),
		Changes: changes,
	}, nil
}

// complete performs one prompt round-trip with rate limiting, a per-call
// timeout, and up to MaxRetries retries on transport failure. Only transport
// failures retry: once a response arrives, parsing it is the caller's job and
// a malformed body is never worth another call.
func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &model.TransportError{Op: op, Err: ctx.Err()}
			case <-time.After(c.config.RetryBackoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", &model.TransportError{Op: op, Err: err}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout())
		out, err := c.provider.Complete(callCtx, CompletionRequest{
			System:      analystSystem,
			Prompt:      prompt,
			Model:       c.config.Model,
			MaxTokens:   c.config.MaxTokens,
			Temperature: 0.2,
		})
		cancel()

		if err == nil {
			return out, nil
		}
		lastErr = err

		// The surrounding budget is gone; further attempts are pointless.
		if ctx.Err() != nil {
			break
		}
	}

	return "", &model.TransportError{Op: op, Err: lastErr}
}

func (c *Client) callTimeout() time.Duration {
	if c.config.Timeout <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.config.Timeout) * time.Second
}

// extractJSONArray finds the outermost JSON array in a response that may be
// wrapped in prose or code fences.
func extractJSONArray(response string) (string, bool) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return response[start : end+1], true
}

// extractJSONObject finds the outermost JSON object in a response.
func extractJSONObject(response string) (string, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return response[start : end+1], true
}
