package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvelikov/fallax/internal/model"
)

func sampleResult() *model.AnalysisResult {
	avg := 85.0
	return &model.AnalysisResult{
		InputText: "Only a fool would disagree.",
		DetectedFallacies: []model.DetectedFallacy{
			{
				CandidateFallacy: model.CandidateFallacy{
					Kind: "ad hominem", Start: 0, End: 26,
					Excerpt: "Only a fool would disagree", RawConfidence: 85,
				},
				Explanation: &model.Explanation{
					Definition:      "Attacking the person.",
					Rationale:       "Dismisses dissenters as fools.",
					EducationalNote: "Address the objection itself.",
				},
				ConfidenceLevel: model.ConfidenceHigh,
			},
		},
		Summary: model.AnalysisSummary{
			TotalCount:        1,
			CountsByKind:      map[string]int{"ad hominem": 1},
			AverageConfidence: &avg,
			Message:           "1 reasoning fallacy detected",
		},
		Rewrite: &model.BalancedRewrite{
			Text: "Reasonable people may disagree, but the evidence favors the plan.",
			Changes: []model.RewriteChange{
				{OriginalSegment: "Only a fool", RevisedSegment: "Reasonable people", Reason: "removes the insult"},
			},
		},
		ElapsedMS: 1234,
	}
}

func TestRenderJSONRoundTrips(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})

	out, err := r.RenderJSON(sampleResult())
	require.NoError(t, err)

	var decoded model.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 1, decoded.Summary.TotalCount)
	require.NotNil(t, decoded.Summary.AverageConfidence)
	assert.Equal(t, 85.0, *decoded.Summary.AverageConfidence)
}

func TestRenderMarkdown(t *testing.T) {
	r := NewRenderer(model.OutputConfig{IncludeFooter: true, Verbose: true})

	out := r.RenderMarkdown(sampleResult())
	assert.Contains(t, out, "# Fallacy Analysis")
	assert.Contains(t, out, "Ad Hominem")
	assert.Contains(t, out, "high confidence")
	assert.Contains(t, out, "> Only a fool would disagree")
	assert.Contains(t, out, "## Balanced Rewrite")
	assert.Contains(t, out, "### Changes")
	assert.Contains(t, out, "1234 ms")
}

func TestRenderMarkdownWithoutFooter(t *testing.T) {
	r := NewRenderer(model.OutputConfig{IncludeFooter: false})

	out := r.RenderMarkdown(sampleResult())
	assert.NotContains(t, out, "1234 ms")
}

func TestRenderMarkdownMarksFallbackExplanations(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})
	result := sampleResult()
	result.DetectedFallacies[0].Explanation.Fallback = true

	out := r.RenderMarkdown(result)
	assert.Contains(t, out, "Generic explanation")
}

func TestRenderText(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})

	out := r.RenderText(sampleResult())
	assert.Contains(t, out, "1 reasoning fallacy detected")
	assert.Contains(t, out, "Ad Hominem [high, 85/100]")
	assert.Contains(t, out, "Balanced rewrite:")
}
