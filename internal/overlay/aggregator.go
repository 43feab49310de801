package overlay

import (
	"sort"

	"github.com/WSG23/overlayreview/internal/types"
)

// Aggregate groups suggestions into review items keyed by GroupKey.
//
// A group's status is the highest-priority member status, its area the sum of
// member areas, and its representative the member with the latest timestamp
// (a later member replaces on ties). Groups are returned in order of first
// appearance. Callers normally deduplicate first with FilterLatestUnitSpace.
func Aggregate(suggestions []types.Suggestion) []types.Aggregated {
	byKey := make(map[string]*types.Aggregated)
	for i, s := range suggestions {
		key := GroupKey(s)
		status := types.NormalizeStatus(s.Status)
		area := DeriveArea(s)
		ts := DeriveTimestamp(s)
		metric, _ := MissingMetric(s)

		g, ok := byKey[key]
		if !ok {
			byKey[key] = &types.Aggregated{
				Key:              key,
				Suggestion:       s,
				Count:            1,
				Status:           status,
				MissingMetricKey: metric,
				TotalArea:        area,
				FirstIndex:       i,
				LatestAt:         ts,
			}
			continue
		}

		g.Count++
		g.TotalArea += area
		if status.Priority() > g.Status.Priority() {
			g.Status = status
		}
		if g.MissingMetricKey == "" && metric != "" {
			g.MissingMetricKey = metric
		}
		if ts >= g.LatestAt {
			g.Suggestion = s
			g.LatestAt = ts
		}
	}

	groups := make([]types.Aggregated, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].FirstIndex < groups[j].FirstIndex
	})
	return groups
}
