package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rvelikov/fallax/internal/model"
)

// Renderer formats analysis results for output.
type Renderer struct {
	verbose       bool
	includeFooter bool
}

// NewRenderer creates a renderer with the given output settings.
func NewRenderer(cfg model.OutputConfig) *Renderer {
	return &Renderer{
		verbose:       cfg.Verbose,
		includeFooter: cfg.IncludeFooter,
	}
}

// RenderJSON returns the result as indented JSON.
func (r *Renderer) RenderJSON(result *model.AnalysisResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// RenderMarkdown returns the result as a Markdown report.
func (r *Renderer) RenderMarkdown(result *model.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString("# Fallacy Analysis\n\n")
	sb.WriteString(fmt.Sprintf("**%s**\n\n", result.Summary.Message))

	if result.Summary.AverageConfidence != nil {
		sb.WriteString(fmt.Sprintf("Average confidence: %.1f\n\n", *result.Summary.AverageConfidence))
	}

	for i, f := range result.DetectedFallacies {
		sb.WriteString(fmt.Sprintf("## %d. %s (%s confidence, %d)\n\n", i+1, titleCase(f.Kind), f.ConfidenceLevel, f.RawConfidence))
		if f.Excerpt != "" {
			sb.WriteString(fmt.Sprintf("> %s\n\n", f.Excerpt))
		}
		if f.Explanation != nil {
			sb.WriteString(fmt.Sprintf("**What it is:** %s\n\n", f.Explanation.Definition))
			if f.Explanation.Rationale != "" {
				sb.WriteString(fmt.Sprintf("**Why here:** %s\n\n", f.Explanation.Rationale))
			}
			if f.Explanation.EducationalNote != "" {
				sb.WriteString(fmt.Sprintf("**How to fix:** %s\n\n", f.Explanation.EducationalNote))
			}
			if f.Explanation.Fallback {
				sb.WriteString("*Generic explanation: a tailored one was unavailable.*\n\n")
			}
		}
	}

	if result.Rewrite != nil {
		sb.WriteString("## Balanced Rewrite\n\n")
		sb.WriteString(result.Rewrite.Text)
		sb.WriteString("\n\n")
		if r.verbose && len(result.Rewrite.Changes) > 0 {
			sb.WriteString("### Changes\n\n")
			for _, ch := range result.Rewrite.Changes {
				sb.WriteString(fmt.Sprintf("- %q → %q (%s)\n", ch.OriginalSegment, ch.RevisedSegment, ch.Reason))
			}
			sb.WriteString("\n")
		}
	}

	if r.includeFooter {
		sb.WriteString(fmt.Sprintf("---\n*%d ms*\n", result.ElapsedMS))
	}

	return sb.String()
}

// RenderText returns a terminal-friendly plain-text summary.
func (r *Renderer) RenderText(result *model.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString(result.Summary.Message)
	sb.WriteString("\n")

	for i, f := range result.DetectedFallacies {
		sb.WriteString(fmt.Sprintf("\n%d. %s [%s, %d/100]\n", i+1, titleCase(f.Kind), f.ConfidenceLevel, f.RawConfidence))
		if f.Excerpt != "" {
			sb.WriteString(fmt.Sprintf("   \"%s\"\n", f.Excerpt))
		}
		if f.Explanation != nil && f.Explanation.Rationale != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", f.Explanation.Rationale))
		}
	}

	if result.Rewrite != nil {
		sb.WriteString("\nBalanced rewrite:\n")
		sb.WriteString(result.Rewrite.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
