// Package overlay implements the suggestion passes behind the review screen:
// unit/space deduplication, grouping into review items and severity tallies.
// Every function is pure; inputs are never mutated.
package overlay

import (
	"math"
	"strings"
	"time"

	"github.com/WSG23/overlayreview/internal/types"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// DeriveTimestamp returns the suggestion's recency in milliseconds since the
// epoch: UpdatedAt, else CreatedAt, else 0. Zone-less values are read as UTC.
func DeriveTimestamp(s types.Suggestion) int64 {
	if ts, ok := parseTimestamp(s.UpdatedAt); ok {
		return ts
	}
	if ts, ok := parseTimestamp(s.CreatedAt); ok {
		return ts
	}
	return 0
}

func parseTimestamp(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// DeriveArea returns the area a suggestion contributes to its group:
// area_sqm, else affected_area_sqm, else a score-based estimate, else 0.
// Negative values count as 0.
func DeriveArea(s types.Suggestion) float64 {
	if v, ok := s.Payload.Number("area_sqm"); ok {
		return math.Max(0, v)
	}
	if v, ok := s.Payload.Number("affected_area_sqm"); ok {
		return math.Max(0, v)
	}
	if s.Score != nil && !math.IsNaN(*s.Score) && !math.IsInf(*s.Score, 0) {
		return math.Max(0, math.Round(*s.Score*1000)/10)
	}
	return 0
}

// MissingMetric returns the payload's missing_metric, falling back to metric.
func MissingMetric(s types.Suggestion) (string, bool) {
	if v, ok := s.Payload.String("missing_metric"); ok {
		return v, true
	}
	return s.Payload.String("metric")
}

// GroupKey is the key a suggestion is aggregated under.
func GroupKey(s types.Suggestion) string {
	if metric, ok := MissingMetric(s); ok {
		return metric
	}
	return s.Code
}
