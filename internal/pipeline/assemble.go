package pipeline

import (
	"fmt"

	"github.com/rvelikov/fallax/internal/model"
)

// BuildSummary computes the derived statistics over the surviving fallacy
// set. AverageConfidence stays nil when nothing survives, so "no fallacies"
// never renders as "average confidence 0".
func BuildSummary(fallacies []model.DetectedFallacy, indeterminate bool) model.AnalysisSummary {
	summary := model.AnalysisSummary{
		TotalCount:    len(fallacies),
		CountsByKind:  make(map[string]int),
		Indeterminate: indeterminate,
	}

	if indeterminate {
		summary.Message = "analysis indeterminate: the reasoning service could not be reached"
		return summary
	}

	if len(fallacies) == 0 {
		summary.Message = "no reasoning fallacies detected; the argument appears sound"
		return summary
	}

	var total int
	for _, f := range fallacies {
		summary.CountsByKind[f.Kind]++
		total += f.RawConfidence
	}

	avg := float64(total) / float64(len(fallacies))
	summary.AverageConfidence = &avg

	if len(fallacies) == 1 {
		summary.Message = "1 reasoning fallacy detected"
	} else {
		summary.Message = fmt.Sprintf("%d reasoning fallacies detected", len(fallacies))
	}

	return summary
}

// checkInvariants verifies the assembled result before it leaves the
// pipeline. A violation is a programming defect, not an input problem.
func checkInvariants(text string, result *model.AnalysisResult) error {
	for i, f := range result.DetectedFallacies {
		if f.Explanation == nil {
			return &model.InvariantError{
				Msg: fmt.Sprintf("fallacy %d reached assembly without an explanation", i),
			}
		}
		if f.RawConfidence < 0 || f.RawConfidence > 100 {
			return &model.InvariantError{
				Msg: fmt.Sprintf("fallacy %d has confidence %d outside [0,100]", i, f.RawConfidence),
			}
		}
		if f.Start == 0 && f.End == 0 {
			continue // location unknown, excerpt only
		}
		if f.Start < 0 || f.End <= f.Start || f.End > len(text) {
			return &model.InvariantError{
				Msg: fmt.Sprintf("fallacy %d has span [%d,%d) outside text of length %d", i, f.Start, f.End, len(text)),
			}
		}
	}

	if result.Summary.TotalCount != len(result.DetectedFallacies) {
		return &model.InvariantError{
			Msg: fmt.Sprintf("summary count %d disagrees with %d fallacies", result.Summary.TotalCount, len(result.DetectedFallacies)),
		}
	}

	return nil
}
