// Package types defines shared data structures (Suggestion, Status, Severity,
// Aggregated) used across the overlay, filter, review and output packages to
// prevent import cycles.
package types

import (
	"fmt"
	"strings"
)

// Status is the canonical lifecycle state of an overlay suggestion.
type Status string

const (
	StatusSource   Status = "source"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every canonical status in display order.
var Statuses = []Status{StatusSource, StatusPending, StatusApproved, StatusRejected}

// NormalizeStatus maps a backend status string onto a canonical status.
// Anything that is not approved, rejected or pending (case-insensitive) is source.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	case "pending":
		return StatusPending
	default:
		return StatusSource
	}
}

// ParseStatus is the strict counterpart of NormalizeStatus, used for user input.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case StatusSource, StatusPending, StatusApproved, StatusRejected:
		return v, nil
	default:
		return "", fmt.Errorf("unknown status: %q", s)
	}
}

// Priority orders statuses for aggregation: pending > rejected > approved > source.
func (s Status) Priority() int {
	switch s {
	case StatusPending:
		return 3
	case StatusRejected:
		return 2
	case StatusApproved:
		return 1
	default:
		return 0
	}
}

func (s Status) String() string { return string(s) }

// Severity is one of the four coarse severity buckets.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityNone   Severity = "none"
)

// Severities lists every bucket from most to least urgent.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow, SeverityNone}

// NormalizeSeverity maps a raw severity onto a bucket; absent or unknown values are none.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityNone
	}
}

// ParseSeverity converts user input to a Severity, rejecting unknown values.
func ParseSeverity(s string) (Severity, error) {
	v := Severity(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case SeverityHigh, SeverityMedium, SeverityLow, SeverityNone:
		return v, nil
	default:
		return "", fmt.Errorf("unknown severity: %q", s)
	}
}

func (s Severity) String() string { return string(s) }

// Decision is a reviewer verdict sent to the backend for one suggestion.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts approve/reject and their past-tense forms.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("unknown decision: %q", s)
	}
}

// Aggregated is one review row: a group of suggestions sharing a grouping key.
type Aggregated struct {
	Key              string     `json:"key"`
	Suggestion       Suggestion `json:"suggestion"`
	Count            int        `json:"count"`
	Status           Status     `json:"status"`
	MissingMetricKey string     `json:"missing_metric_key,omitempty"`
	TotalArea        float64    `json:"total_area"`
	FirstIndex       int        `json:"-"`
	LatestAt         int64      `json:"-"`
}

// Severity returns the representative suggestion's severity bucket.
func (a Aggregated) Severity() Severity {
	return NormalizeSeverity(a.Suggestion.Severity)
}

// SeverityCounts tallies aggregated items per severity bucket.
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	None   int `json:"none"`
}

// Add increments the bucket for sev.
func (c *SeverityCounts) Add(sev Severity) {
	switch sev {
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	default:
		c.None++
	}
}

// Get returns the count for one bucket.
func (c SeverityCounts) Get(sev Severity) int {
	switch sev {
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	default:
		return c.None
	}
}

func (c SeverityCounts) Total() int {
	return c.High + c.Medium + c.Low + c.None
}

// SeverityPercentages holds per-bucket percentages rounded to one decimal.
type SeverityPercentages struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
	None   float64 `json:"none"`
}

// Get returns the percentage for one bucket.
func (p SeverityPercentages) Get(sev Severity) float64 {
	switch sev {
	case SeverityHigh:
		return p.High
	case SeverityMedium:
		return p.Medium
	case SeverityLow:
		return p.Low
	default:
		return p.None
	}
}
