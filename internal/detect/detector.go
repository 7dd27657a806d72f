package detect

import (
	"context"
	"strings"

	"github.com/rvelikov/fallax/internal/llm"
	"github.com/rvelikov/fallax/internal/model"
)

// Detector runs fallacy detection and normalizes the engine's output into
// trustworthy candidates. The engine's positions and confidence values are
// treated as hints, not facts: spans get verified against the actual text and
// confidence is clamped into range.
type Detector struct {
	client llm.ReasoningClient
}

// NewDetector creates a detector over the given reasoning client.
func NewDetector(client llm.ReasoningClient) *Detector {
	return &Detector{client: client}
}

// Detect returns normalized candidates for the text. Errors pass through
// unwrapped so the caller can distinguish transport from parse failures.
func (d *Detector) Detect(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
	raw, err := d.client.DetectFallacies(ctx, text)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.CandidateFallacy, 0, len(raw))
	for _, c := range raw {
		if c.Kind == "" {
			continue
		}
		normalized, ok := repairSpan(text, c)
		if !ok {
			continue
		}
		normalized.RawConfidence = clampConfidence(normalized.RawConfidence)
		candidates = append(candidates, normalized)
	}

	return candidates, nil
}

// repairSpan reconciles the reported positions with the reported excerpt.
// Valid positions win and re-derive the excerpt from the text itself. When
// positions are unusable, the quoted excerpt locates the span instead. A
// candidate with neither positions nor a findable excerpt keeps its kind and
// confidence but carries a zero span.
func repairSpan(text string, c model.CandidateFallacy) (model.CandidateFallacy, bool) {
	if c.Start >= 0 && c.End > c.Start && c.End <= len(text) {
		c.Excerpt = text[c.Start:c.End]
		return c, true
	}

	if c.Excerpt != "" {
		if idx := strings.Index(text, c.Excerpt); idx >= 0 {
			c.Start = idx
			c.End = idx + len(c.Excerpt)
			return c, true
		}
	}

	if c.Excerpt == "" {
		return c, false
	}

	// The excerpt is a paraphrase rather than a quote. Keep the finding but
	// mark its location unknown.
	c.Start = 0
	c.End = 0
	return c, true
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
