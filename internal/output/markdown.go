package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/types"
)

// MarkdownFormatter outputs the report as GitHub-flavored markdown,
// suitable for job summaries and review comments.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, report *review.Report) error {
	if len(report.Rows) == 0 {
		f.printEmpty(w, report)
		f.printFooter(w, report)
		return nil
	}

	f.printSummary(w, report)
	f.printRows(w, report.Rows)
	f.printFooter(w, report)
	return nil
}

func (f *MarkdownFormatter) title(report *review.Report) string {
	if report.Project == "" {
		return "Overlay Review"
	}
	return fmt.Sprintf("Overlay Review: %s", escapeMarkdown(report.Project))
}

func (f *MarkdownFormatter) printEmpty(w io.Writer, report *review.Report) {
	fmt.Fprintf(w, "### :white_check_mark: %s: nothing to review\n\n", f.title(report))
	fmt.Fprintf(w, "> %d suggestions · %d groups · status `%s` · severity `%s`\n\n",
		report.Totals.Suggestions, report.Totals.Groups,
		joinStatuses(report.Statuses), joinSeverities(report.Severities))
}

func (f *MarkdownFormatter) printSummary(w io.Writer, report *review.Report) {
	icon := ":white_check_mark:"
	if report.PendingVisible > 0 {
		icon = ":hourglass:"
	}
	fmt.Fprintf(w, "### %s %s: %d items\n\n", icon, f.title(report), len(report.Rows))
	fmt.Fprintf(w, "> %d suggestions · %d deduplicated · %d groups · status `%s` · severity `%s`\n\n",
		report.Totals.Suggestions, report.Totals.Deduplicated, report.Totals.Groups,
		joinStatuses(report.Statuses), joinSeverities(report.Severities))

	var badges []string
	for _, sev := range types.Severities {
		c := report.Counts.Get(sev)
		if c == 0 {
			continue
		}
		badges = append(badges, fmt.Sprintf("%s **%d %s** (%.1f%%)",
			severityEmoji(sev), c, sev.String(), report.Percentages.Get(sev)))
	}
	if len(badges) > 0 {
		fmt.Fprintf(w, "%s\n\n", strings.Join(badges, " · "))
	}
	if report.PendingHidden > 0 {
		fmt.Fprintf(w, "> :warning: %d pending items hidden by severity filter\n\n", report.PendingHidden)
	}
}

func (f *MarkdownFormatter) printRows(w io.Writer, rows []review.Row) {
	for _, st := range statusOrder {
		filtered := rowsWithStatus(rows, st)
		if len(filtered) == 0 {
			continue
		}

		fmt.Fprintf(w, "<details%s>\n", openByDefault(st))
		fmt.Fprintf(w, "<summary><strong>%s (%d)</strong></summary>\n\n", st.String(), len(filtered))

		fmt.Fprintf(w, "| Severity | Key | Item | Count | Area |\n")
		fmt.Fprintf(w, "|----------|-----|------|-------|------|\n")
		for _, r := range filtered {
			fmt.Fprintf(w, "| %s %s | %s | %s | %d | %s |\n",
				severityEmoji(r.Severity), r.Severity.String(),
				codeSpan(r.Key), escapeMarkdown(truncate(r.Label, 80)),
				r.Count, formatArea(r.TotalArea))
		}

		fmt.Fprintf(w, "\n</details>\n\n")
	}
}

func (f *MarkdownFormatter) printFooter(w io.Writer, report *review.Report) {
	if report.Export.Allowed {
		fmt.Fprintf(w, "**Export:** ready (%s)\n\n", report.Export.Mode)
	} else {
		fmt.Fprintf(w, "**Export:** blocked by %d pending items (%s)\n\n", report.Export.Pending, report.Export.Mode)
	}
	fmt.Fprintf(w, "---\n")
	fmt.Fprintf(w, "*Generated by overlayreview %s*\n", ToolVersion)
}

func severityEmoji(sev types.Severity) string {
	switch sev {
	case types.SeverityHigh:
		return ":red_circle:"
	case types.SeverityMedium:
		return ":yellow_circle:"
	case types.SeverityLow:
		return ":blue_circle:"
	default:
		return ":white_circle:"
	}
}

func openByDefault(st types.Status) string {
	if st == types.StatusPending {
		return " open"
	}
	return ""
}

// codeSpan wraps s in a code span for a table cell. Content inside a code span
// is literal, so only pipes need escaping; the fence is one backtick longer
// than the longest backtick run in s.
func codeSpan(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if longest > 0 || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
