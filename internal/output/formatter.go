// Package output formats review reports for the terminal (ANSI), JSON,
// Markdown and HTML.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/types"
)

// ToolVersion is stamped into report footers.
var ToolVersion = "dev"

// Formatter is the interface for outputting review reports.
type Formatter interface {
	Format(w io.Writer, report *review.Report) error
}

// New returns the formatter for a format name; unknown names fall back to terminal.
func New(format string, noColor bool) Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return &JSONFormatter{}
	case "markdown", "md":
		return &MarkdownFormatter{}
	case "html":
		return &HTMLFormatter{}
	default:
		return &TerminalFormatter{NoColor: noColor}
	}
}

// statusOrder lists statuses most actionable first.
var statusOrder = []types.Status{
	types.StatusPending,
	types.StatusRejected,
	types.StatusApproved,
	types.StatusSource,
}

func rowsWithStatus(rows []review.Row, s types.Status) []review.Row {
	var out []review.Row
	for _, r := range rows {
		if r.Status == s {
			out = append(out, r)
		}
	}
	return out
}

func formatArea(a float64) string {
	if a == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f m²", a)
}

func joinStatuses(ss []types.Status) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func joinSeverities(ss []types.Severity) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	if len([]rune(s)) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
