package overlayreview

import "github.com/WSG23/overlayreview/internal/filter"

// reviewConfig holds the resolved configuration for a review run.
type reviewConfig struct {
	project           string
	statusDefaults    []Status
	statuses          []Status
	severities        []Severity
	unitSpacePrefixes []string
	gate              GateMode
}

// Option configures a review run.
type Option func(*reviewConfig)

func applyOpts(opts []Option) *reviewConfig {
	cfg := &reviewConfig{
		statusDefaults: filter.TriageStatuses,
		gate:           GateFiltered,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithProject labels the report with a project ID.
func WithProject(id string) Option {
	return func(c *reviewConfig) {
		c.project = id
	}
}

// WithAllStatusesByDefault makes every status visible by default instead of
// the triage set (source and pending).
func WithAllStatusesByDefault() Option {
	return func(c *reviewConfig) {
		c.statusDefaults = filter.AllStatuses
	}
}

// WithStatuses sets the visible statuses. At least one must remain.
func WithStatuses(statuses ...Status) Option {
	return func(c *reviewConfig) {
		c.statuses = append([]Status{}, statuses...)
	}
}

// WithSeverities sets the visible severity buckets. At least one must remain.
func WithSeverities(severities ...Severity) Option {
	return func(c *reviewConfig) {
		c.severities = append([]Severity{}, severities...)
	}
}

// WithUnitSpacePrefixes replaces the code prefixes treated as unit/space suggestions.
func WithUnitSpacePrefixes(prefixes ...string) Option {
	return func(c *reviewConfig) {
		c.unitSpacePrefixes = prefixes
	}
}

// WithExportGate sets whether the export gate counts pending items under the
// active filters (GateFiltered) or all of them (GateAll).
func WithExportGate(mode GateMode) Option {
	return func(c *reviewConfig) {
		c.gate = mode
	}
}
