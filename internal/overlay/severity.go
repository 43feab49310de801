package overlay

import (
	"math"
	"slices"

	"github.com/WSG23/overlayreview/internal/types"
)

// CountSeverityBuckets tallies the items whose status is in visible, one tally
// per aggregated item regardless of its Count.
func CountSeverityBuckets(items []types.Aggregated, visible []types.Status) types.SeverityCounts {
	var counts types.SeverityCounts
	for _, item := range items {
		if !slices.Contains(visible, item.Status) {
			continue
		}
		counts.Add(item.Severity())
	}
	return counts
}

// SeverityPercentages converts counts to percentages of their total, rounded
// to one decimal. A zero total yields all zeros.
func SeverityPercentages(counts types.SeverityCounts) types.SeverityPercentages {
	total := counts.Total()
	if total == 0 {
		return types.SeverityPercentages{}
	}
	pct := func(n int) float64 {
		return math.Round(float64(n)/float64(total)*1000) / 10
	}
	return types.SeverityPercentages{
		High:   pct(counts.High),
		Medium: pct(counts.Medium),
		Low:    pct(counts.Low),
		None:   pct(counts.None),
	}
}
