// Package overlayreview provides a public API for reviewing the overlay
// suggestions a CAD engine produces for a project: unit/space deduplication,
// grouping into review items, severity tallies and status/severity filtering.
//
// This is the library entry point. For the CLI tool, see cmd/overlayreview/.
package overlayreview

import (
	"github.com/WSG23/overlayreview/internal/client"
	"github.com/WSG23/overlayreview/internal/filter"
	"github.com/WSG23/overlayreview/internal/overlay"
	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/types"
)

// Re-export core types so consumers don't need to import internal packages.
type (
	Suggestion          = types.Suggestion
	Payload             = types.Payload
	Status              = types.Status
	Severity            = types.Severity
	Decision            = types.Decision
	Aggregated          = types.Aggregated
	SeverityCounts      = types.SeverityCounts
	SeverityPercentages = types.SeverityPercentages

	StatusFilter   = filter.StatusFilter
	SeverityFilter = filter.SeverityFilter
	GateMode       = filter.GateMode
	GateResult     = filter.GateResult

	Report = review.Report
	Row    = review.Row
)

const (
	StatusSource   = types.StatusSource
	StatusPending  = types.StatusPending
	StatusApproved = types.StatusApproved
	StatusRejected = types.StatusRejected

	SeverityHigh   = types.SeverityHigh
	SeverityMedium = types.SeverityMedium
	SeverityLow    = types.SeverityLow
	SeverityNone   = types.SeverityNone

	DecisionApprove = types.DecisionApprove
	DecisionReject  = types.DecisionReject

	GateFiltered = filter.GateFiltered
	GateAll      = filter.GateAll
)

// FilterLatestUnitSpace keeps only the most recent unit/space suggestion and
// passes every other suggestion through in order. With no prefixes the
// built-in unit_space, unit-space and unitspace prefixes apply.
func FilterLatestUnitSpace(suggestions []Suggestion, prefixes ...string) []Suggestion {
	return overlay.FilterLatestUnitSpace(suggestions, prefixes...)
}

// Aggregate groups suggestions into review items in order of first appearance.
func Aggregate(suggestions []Suggestion) []Aggregated {
	return overlay.Aggregate(suggestions)
}

// CountSeverityBuckets tallies items whose status is in visible.
func CountSeverityBuckets(items []Aggregated, visible []Status) SeverityCounts {
	return overlay.CountSeverityBuckets(items, visible)
}

// Percentages converts counts into percentages rounded to one decimal.
func Percentages(counts SeverityCounts) SeverityPercentages {
	return overlay.SeverityPercentages(counts)
}

// NewStatusFilter returns a status filter whose default set is defaults, or
// every status when defaults is empty.
func NewStatusFilter(defaults ...Status) *StatusFilter {
	return filter.NewStatusFilter(defaults...)
}

// NewSeverityFilter returns a severity filter defaulting to defaults, or all buckets.
func NewSeverityFilter(defaults ...Severity) *SeverityFilter {
	return filter.NewSeverityFilter(defaults...)
}

// ApplyFilters keeps items passing the status filter, then the severity filter.
func ApplyFilters(items []Aggregated, status *StatusFilter, severity *SeverityFilter) []Aggregated {
	return filter.Apply(items, status, severity)
}

// DecodeSuggestions parses a backend response: a JSON array, or an object
// carrying an "items" or "suggestions" array. Wrongly typed fields decode to
// zero values instead of failing.
func DecodeSuggestions(data []byte) ([]Suggestion, error) {
	return client.DecodeSuggestions(data)
}

// Review runs the full pipeline and returns the derived report.
func Review(suggestions []Suggestion, opts ...Option) (*Report, error) {
	cfg := applyOpts(opts)

	status := filter.NewStatusFilter(cfg.statusDefaults...)
	if cfg.statuses != nil {
		if err := status.Set(cfg.statuses...); err != nil {
			return nil, err
		}
	}
	severity := filter.NewSeverityFilter()
	if cfg.severities != nil {
		if err := severity.Set(cfg.severities...); err != nil {
			return nil, err
		}
	}

	return review.Build(suggestions, review.Options{
		Project:           cfg.project,
		UnitSpacePrefixes: cfg.unitSpacePrefixes,
		Status:            status,
		Severity:          severity,
		Gate:              filter.ExportGate{Mode: cfg.gate},
	}), nil
}
