package filter

import (
	"fmt"
	"strings"

	"github.com/WSG23/overlayreview/internal/types"
)

// ByStatus keeps items whose status is visible. A nil filter keeps everything.
func ByStatus(items []types.Aggregated, status *StatusFilter) []types.Aggregated {
	out := make([]types.Aggregated, 0, len(items))
	for _, item := range items {
		if status == nil || status.Contains(item.Status) {
			out = append(out, item)
		}
	}
	return out
}

// BySeverity keeps items whose severity is visible. A nil filter keeps everything.
func BySeverity(items []types.Aggregated, severity *SeverityFilter) []types.Aggregated {
	out := make([]types.Aggregated, 0, len(items))
	for _, item := range items {
		if severity == nil || severity.Contains(item.Severity()) {
			out = append(out, item)
		}
	}
	return out
}

// Apply filters by status, then by severity.
func Apply(items []types.Aggregated, status *StatusFilter, severity *SeverityFilter) []types.Aggregated {
	return BySeverity(ByStatus(items, status), severity)
}

// CountStatus counts items with the given status.
func CountStatus(items []types.Aggregated, s types.Status) int {
	n := 0
	for _, item := range items {
		if item.Status == s {
			n++
		}
	}
	return n
}

// HiddenPending is the number of pending items visible under the status
// filter alone but hidden once the severity filter is applied.
func HiddenPending(items []types.Aggregated, status *StatusFilter, severity *SeverityFilter) int {
	byStatus := ByStatus(items, status)
	return CountStatus(byStatus, types.StatusPending) - CountStatus(BySeverity(byStatus, severity), types.StatusPending)
}

// GateMode selects which items the export gate counts.
type GateMode string

const (
	// GateFiltered counts pending items under the active filters.
	GateFiltered GateMode = "filtered"
	// GateAll counts every pending item.
	GateAll GateMode = "all"
)

// ParseGateMode parses a gate mode; empty means GateFiltered.
func ParseGateMode(s string) (GateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "filtered":
		return GateFiltered, nil
	case "all", "unfiltered":
		return GateAll, nil
	default:
		return "", fmt.Errorf("unknown export gate mode: %q", s)
	}
}

// GateResult reports whether export is allowed.
type GateResult struct {
	Mode    GateMode `json:"mode"`
	Pending int      `json:"pending"`
	Allowed bool     `json:"allowed"`
}

// ExportGate blocks export while pending items remain.
type ExportGate struct {
	Mode GateMode
}

// Evaluate counts pending items according to the gate mode.
func (g ExportGate) Evaluate(items []types.Aggregated, status *StatusFilter, severity *SeverityFilter) GateResult {
	mode := g.Mode
	if mode == "" {
		mode = GateFiltered
	}
	var pending int
	if mode == GateAll {
		pending = CountStatus(items, types.StatusPending)
	} else {
		pending = CountStatus(Apply(items, status, severity), types.StatusPending)
	}
	return GateResult{Mode: mode, Pending: pending, Allowed: pending == 0}
}
