// Package review runs the overlay suggestion pipeline for one project:
// deduplicate, aggregate, filter, then summarise into a Report.
package review

import (
	"fmt"
	"strings"

	"github.com/WSG23/overlayreview/internal/filter"
	"github.com/WSG23/overlayreview/internal/overlay"
	"github.com/WSG23/overlayreview/internal/types"
)

// Options configures a pipeline run. Nil filters show everything.
type Options struct {
	Project           string
	UnitSpacePrefixes []string
	Status            *filter.StatusFilter
	Severity          *filter.SeverityFilter
	Gate              filter.ExportGate
}

// Row is one rendered review item.
type Row struct {
	Key              string         `json:"key"`
	Label            string         `json:"label"`
	Code             string         `json:"code"`
	Status           types.Status   `json:"status"`
	Severity         types.Severity `json:"severity"`
	Count            int            `json:"count"`
	TotalArea        float64        `json:"total_area"`
	SuggestionID     int64          `json:"suggestion_id"`
	MissingMetricKey string         `json:"missing_metric_key,omitempty"`
}

// Totals records how many records survived each stage.
type Totals struct {
	Suggestions  int `json:"suggestions"`
	Deduplicated int `json:"deduplicated"`
	Groups       int `json:"groups"`
	Visible      int `json:"visible"`
}

// Report is the derived view of a project's suggestions under the active filters.
type Report struct {
	Project         string                    `json:"project,omitempty"`
	Statuses        []types.Status            `json:"statuses"`
	Severities      []types.Severity          `json:"severities"`
	Rows            []Row                     `json:"rows"`
	Counts          types.SeverityCounts      `json:"counts"`
	Percentages     types.SeverityPercentages `json:"percentages"`
	Totals          Totals                    `json:"totals"`
	PendingVisible  int                       `json:"pending_visible"`
	PendingHidden   int                       `json:"pending_hidden"`
	Export          filter.GateResult         `json:"export"`
	DecisionTargets []int64                   `json:"decision_targets"`
}

// Build runs the full pipeline. The input slice is not modified.
func Build(suggestions []types.Suggestion, opts Options) *Report {
	deduped := overlay.FilterLatestUnitSpace(suggestions, opts.UnitSpacePrefixes...)
	groups := overlay.Aggregate(deduped)
	visible := filter.Apply(groups, opts.Status, opts.Severity)

	statuses := types.Statuses
	if opts.Status != nil {
		statuses = opts.Status.Values()
	}
	severities := types.Severities
	if opts.Severity != nil {
		severities = opts.Severity.Values()
	}

	counts := overlay.CountSeverityBuckets(groups, statuses)

	r := &Report{
		Project:     opts.Project,
		Statuses:    statuses,
		Severities:  severities,
		Rows:        make([]Row, 0, len(visible)),
		Counts:      counts,
		Percentages: overlay.SeverityPercentages(counts),
		Totals: Totals{
			Suggestions:  len(suggestions),
			Deduplicated: len(deduped),
			Groups:       len(groups),
			Visible:      len(visible),
		},
		PendingVisible: filter.CountStatus(visible, types.StatusPending),
		PendingHidden:  filter.HiddenPending(groups, opts.Status, opts.Severity),
		Export:         opts.Gate.Evaluate(groups, opts.Status, opts.Severity),
	}

	visibleKeys := make(map[string]bool, len(visible))
	for _, g := range visible {
		visibleKeys[g.Key] = true
		r.Rows = append(r.Rows, newRow(g))
	}
	r.DecisionTargets = DecisionTargets(deduped, visibleKeys)
	return r
}

// DecisionTargets returns the IDs of pending suggestions whose group is in
// visibleKeys. Decisions always address individual suggestions, never groups.
// A nil visibleKeys selects every pending suggestion.
func DecisionTargets(deduped []types.Suggestion, visibleKeys map[string]bool) []int64 {
	ids := make([]int64, 0)
	for _, s := range deduped {
		if types.NormalizeStatus(s.Status) != types.StatusPending {
			continue
		}
		if visibleKeys != nil && !visibleKeys[overlay.GroupKey(s)] {
			continue
		}
		ids = append(ids, s.ID)
	}
	return ids
}

func newRow(g types.Aggregated) Row {
	return Row{
		Key:              g.Key,
		Label:            Label(g),
		Code:             g.Suggestion.Code,
		Status:           g.Status,
		Severity:         g.Severity(),
		Count:            g.Count,
		TotalArea:        g.TotalArea,
		SuggestionID:     g.Suggestion.ID,
		MissingMetricKey: g.MissingMetricKey,
	}
}

// Label is the display text for a group: title, else rationale, else key,
// suffixed with the member count when the group folds several suggestions.
func Label(g types.Aggregated) string {
	label := strings.TrimSpace(g.Suggestion.Title)
	if label == "" {
		label = strings.TrimSpace(g.Suggestion.Rationale)
	}
	if label == "" {
		label = g.Key
	}
	if g.Count > 1 {
		label = fmt.Sprintf("%s (x%d)", label, g.Count)
	}
	return label
}
