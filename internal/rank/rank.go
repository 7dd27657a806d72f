package rank

import (
	"sort"

	"github.com/rvelikov/fallax/internal/model"
)

// Level thresholds. Every confidence in [0,100] maps to exactly one level.
const (
	mediumThreshold = 60
	highThreshold   = 80
)

// LevelFor maps a clamped confidence value to its qualitative level.
func LevelFor(confidence int) model.ConfidenceLevel {
	switch {
	case confidence >= highThreshold:
		return model.ConfidenceHigh
	case confidence >= mediumThreshold:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// Rank assigns confidence levels, orders fallacies by descending confidence,
// and drops those strictly below minConfidence. Ties keep their detection
// order, so repeated runs over the same findings produce the same report.
func Rank(fallacies []model.DetectedFallacy, minConfidence int) []model.DetectedFallacy {
	ranked := make([]model.DetectedFallacy, 0, len(fallacies))
	for _, f := range fallacies {
		if f.RawConfidence < minConfidence {
			continue
		}
		f.ConfidenceLevel = LevelFor(f.RawConfidence)
		ranked = append(ranked, f)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RawConfidence > ranked[j].RawConfidence
	})

	return ranked
}
