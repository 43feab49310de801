// Package filter holds the reviewer-facing status and severity filters and the
// rules for composing them over aggregated review items.
//
// Both filters keep at least one value selected: toggling the last active
// value off is refused.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/WSG23/overlayreview/internal/types"
)

var (
	ErrUnknownStatus   = errors.New("unknown status")
	ErrUnknownSeverity = errors.New("unknown severity")
	ErrEmptySelection  = errors.New("at least one value must stay selected")
	ErrPresetNotFound  = errors.New("preset not found")
)

// Default status sets offered to host screens.
var (
	TriageStatuses = []types.Status{types.StatusSource, types.StatusPending}
	AllStatuses    = slices.Clone(types.Statuses)
	AllSeverities  = slices.Clone(types.Severities)
)

// selection is an ordered set over a fixed universe with a resettable default.
type selection[T comparable] struct {
	universe []T
	defaults []T
	active   map[T]bool
}

func newSelection[T comparable](universe, defaults []T) selection[T] {
	s := selection[T]{universe: universe}
	for _, v := range defaults {
		if slices.Contains(universe, v) && !slices.Contains(s.defaults, v) {
			s.defaults = append(s.defaults, v)
		}
	}
	if len(s.defaults) == 0 {
		s.defaults = slices.Clone(universe)
	}
	s.reset()
	return s
}

func (s *selection[T]) reset() {
	s.active = make(map[T]bool, len(s.universe))
	for _, v := range s.defaults {
		s.active[v] = true
	}
}

func (s *selection[T]) toggle(v T) bool {
	if !slices.Contains(s.universe, v) {
		return false
	}
	if s.active[v] {
		if len(s.active) == 1 {
			return false
		}
		delete(s.active, v)
		return true
	}
	s.active[v] = true
	return true
}

func (s *selection[T]) set(values []T) error {
	next := make(map[T]bool, len(values))
	for _, v := range values {
		if slices.Contains(s.universe, v) {
			next[v] = true
		}
	}
	if len(next) == 0 {
		return ErrEmptySelection
	}
	s.active = next
	return nil
}

func (s *selection[T]) contains(v T) bool { return s.active[v] }

// values returns the active set in universe order.
func (s *selection[T]) values() []T {
	out := make([]T, 0, len(s.active))
	for _, v := range s.universe {
		if s.active[v] {
			out = append(out, v)
		}
	}
	return out
}

// StatusFilter selects which canonical statuses are visible.
type StatusFilter struct {
	sel selection[types.Status]
}

// NewStatusFilter creates a filter whose default (and initial) set is
// defaults; with no defaults every status is visible.
func NewStatusFilter(defaults ...types.Status) *StatusFilter {
	return &StatusFilter{sel: newSelection(types.Statuses, defaults)}
}

// Toggle flips one status and reports whether the set changed.
func (f *StatusFilter) Toggle(s types.Status) bool { return f.sel.toggle(s) }

// Reset restores the default set.
func (f *StatusFilter) Reset() { f.sel.reset() }

// Set replaces the active set.
func (f *StatusFilter) Set(statuses ...types.Status) error { return f.sel.set(statuses) }

func (f *StatusFilter) Contains(s types.Status) bool { return f.sel.contains(s) }
func (f *StatusFilter) Values() []types.Status     { return f.sel.values() }
func (f *StatusFilter) Defaults() []types.Status   { return slices.Clone(f.sel.defaults) }

// SeverityFilter selects which severity buckets are visible and keeps named
// presets of past selections.
type SeverityFilter struct {
	sel     selection[types.Severity]
	presets map[string][]types.Severity
}

// NewSeverityFilter creates a filter defaulting to defaults, or to every
// bucket when none are given.
func NewSeverityFilter(defaults ...types.Severity) *SeverityFilter {
	return &SeverityFilter{
		sel:     newSelection(types.Severities, defaults),
		presets: make(map[string][]types.Severity),
	}
}

func (f *SeverityFilter) Toggle(s types.Severity) bool { return f.sel.toggle(s) }
func (f *SeverityFilter) Reset()                       { f.sel.reset() }
func (f *SeverityFilter) Set(severities ...types.Severity) error {
	return f.sel.set(severities)
}
func (f *SeverityFilter) Contains(s types.Severity) bool { return f.sel.contains(s) }
func (f *SeverityFilter) Values() []types.Severity     { return f.sel.values() }

// SavePreset snapshots the live selection under name. The live set is untouched.
func (f *SeverityFilter) SavePreset(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("preset name is empty")
	}
	if f.presets == nil {
		f.presets = make(map[string][]types.Severity)
	}
	f.presets[name] = f.sel.values()
	return nil
}

// LoadPreset registers a preset without touching the live selection.
func (f *SeverityFilter) LoadPreset(name string, severities []types.Severity) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if f.presets == nil {
		f.presets = make(map[string][]types.Severity)
	}
	f.presets[name] = slices.Clone(severities)
}

// ApplyPreset replaces the live selection with a saved preset.
func (f *SeverityFilter) ApplyPreset(name string) error {
	p, ok := f.presets[strings.TrimSpace(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return f.sel.set(p)
}

func (f *SeverityFilter) DeletePreset(name string) {
	delete(f.presets, strings.TrimSpace(name))
}

// Preset returns a copy of a saved preset.
func (f *SeverityFilter) Preset(name string) ([]types.Severity, bool) {
	p, ok := f.presets[strings.TrimSpace(name)]
	return slices.Clone(p), ok
}

// PresetNames returns saved preset names in sorted order.
func (f *SeverityFilter) PresetNames() []string {
	names := make([]string, 0, len(f.presets))
	for n := range f.presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseStatuses parses comma-separated or repeated status values. "all"
// selects every status.
func ParseStatuses(values []string) ([]types.Status, error) {
	var out []types.Status
	for _, tok := range splitValues(values) {
		if tok == "all" {
			return slices.Clone(AllStatuses), nil
		}
		s, err := types.ParseStatus(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, tok)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ParseSeverities is ParseStatuses for severity buckets.
func ParseSeverities(values []string) ([]types.Severity, error) {
	var out []types.Severity
	for _, tok := range splitValues(values) {
		if tok == "all" {
			return slices.Clone(AllSeverities), nil
		}
		s, err := types.ParseSeverity(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSeverity, tok)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}
