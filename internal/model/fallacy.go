package model

// ConfidenceLevel is the three-tier classification derived from a numeric
// confidence score.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"    // score < 60
	ConfidenceMedium ConfidenceLevel = "medium" // 60 <= score < 80
	ConfidenceHigh   ConfidenceLevel = "high"   // score >= 80
)

// CandidateFallacy is an unexplained detection as returned by the reasoning
// engine, after normalization. Start/End are byte offsets into the
// normalized input text. A zero span (Start == End == 0) means the engine's
// positions were unusable and only the excerpt text is reliable.
type CandidateFallacy struct {
	Kind          string `json:"kind"`           // e.g. "ad hominem", "straw man"
	Start         int    `json:"start"`          // span start, inclusive
	End           int    `json:"end"`            // span end, exclusive
	Excerpt       string `json:"excerpt"`        // the offending text segment
	RawConfidence int    `json:"raw_confidence"` // 0-100, clamped
}

// Explanation is the educational breakdown attached to a detected fallacy.
// Fallback marks boilerplate substituted for a failed explanation call, so
// degraded items are distinguishable from explained ones in the result.
type Explanation struct {
	Definition      string `json:"definition"`
	Rationale       string `json:"rationale"`
	EducationalNote string `json:"educational_note"`
	Fallback        bool   `json:"fallback,omitempty"`
}

// DetectedFallacy is the final per-fallacy record: a validated candidate with
// its explanation and confidence classification. Immutable once assembled.
type DetectedFallacy struct {
	CandidateFallacy
	Explanation     *Explanation    `json:"explanation,omitempty"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
}

// AnalysisSummary holds derived statistics over the surviving fallacy set.
// It is recomputed for every analysis and never cached across runs.
type AnalysisSummary struct {
	TotalCount        int            `json:"total_count"`
	CountsByKind      map[string]int `json:"counts_by_kind"`
	AverageConfidence *float64       `json:"average_confidence"` // nil when no fallacies survive
	Indeterminate     bool           `json:"indeterminate,omitempty"`
	Message           string         `json:"message"`
}

// RewriteChange records one edit made by the balanced rewrite.
type RewriteChange struct {
	OriginalSegment string `json:"original_segment"`
	RevisedSegment  string `json:"revised_segment"`
	Reason          string `json:"reason"`
}

// BalancedRewrite is a corrected version of the input with itemized changes.
type BalancedRewrite struct {
	Text    string          `json:"text"`
	Changes []RewriteChange `json:"changes"`
}

// AnalysisResult is the top-level aggregate returned to the caller. It is
// created once per request and never mutated after assembly.
type AnalysisResult struct {
	InputText         string            `json:"input_text"`
	DetectedFallacies []DetectedFallacy `json:"detected_fallacies"`
	Summary           AnalysisSummary   `json:"summary"`
	Rewrite           *BalancedRewrite  `json:"rewrite,omitempty"`
	ElapsedMS         int64             `json:"elapsed_ms"`
}

// AnalysisOptions are the per-request knobs exposed to callers.
type AnalysisOptions struct {
	IncludeRewrite bool `json:"include_rewrite"`
	MinConfidence  int  `json:"min_confidence"` // fallacies strictly below are filtered out
}

// DefaultOptions returns the caller-facing defaults: rewrite requested,
// no confidence filtering.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeRewrite: true,
		MinConfidence:  0,
	}
}
