package overlay

import (
	"strings"

	"github.com/WSG23/overlayreview/internal/types"
)

// DefaultUnitSpacePrefixes identify unit/space detection codes.
var DefaultUnitSpacePrefixes = []string{"unit_space", "unit-space", "unitspace"}

// IsUnitSpace reports whether code starts with one of prefixes (case-insensitive).
func IsUnitSpace(code string, prefixes []string) bool {
	lc := strings.ToLower(code)
	for _, p := range prefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.HasPrefix(lc, p) {
			return true
		}
	}
	return false
}

// FilterLatestUnitSpace drops stale unit/space suggestions. For each unit/space
// code only the entry with the latest derived timestamp is kept; among entries
// tied at that timestamp the first one wins. Other suggestions pass through.
// Relative order is preserved. With no prefixes, DefaultUnitSpacePrefixes apply.
func FilterLatestUnitSpace(suggestions []types.Suggestion, prefixes ...string) []types.Suggestion {
	if len(prefixes) == 0 {
		prefixes = DefaultUnitSpacePrefixes
	}

	latest := make(map[string]int64)
	for _, s := range suggestions {
		if !IsUnitSpace(s.Code, prefixes) {
			continue
		}
		ts := DeriveTimestamp(s)
		if cur, ok := latest[s.Code]; !ok || ts > cur {
			latest[s.Code] = ts
		}
	}

	kept := make(map[string]bool, len(latest))
	result := make([]types.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if !IsUnitSpace(s.Code, prefixes) {
			result = append(result, s)
			continue
		}
		if kept[s.Code] || DeriveTimestamp(s) != latest[s.Code] {
			continue
		}
		kept[s.Code] = true
		result = append(result, s)
	}
	return result
}
