package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/types"
)

// ANSI color codes
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

const (
	barWidth   = 40
	lineWidth  = 72
	keyWidth   = 28
	labelWidth = 36
)

// TerminalFormatter prints a review dashboard followed by rows grouped by status.
type TerminalFormatter struct {
	NoColor bool
}

func (f *TerminalFormatter) color(code, text string) string {
	if f.NoColor {
		return text
	}
	return code + text + reset
}

func (f *TerminalFormatter) Format(w io.Writer, report *review.Report) error {
	f.printHeader(w, report)

	if len(report.Rows) == 0 {
		fmt.Fprintf(w, "\n  %s No review items match the current filters.\n", f.color(cyan, "✔"))
	} else {
		f.printDashboard(w, report)
		for _, st := range statusOrder {
			rows := rowsWithStatus(report.Rows, st)
			if len(rows) > 0 {
				f.printStatusSection(w, st, rows)
			}
		}
	}

	if report.PendingHidden > 0 {
		fmt.Fprintf(w, "\n  %s\n", f.color(yellow, fmt.Sprintf("%d pending items hidden by severity filter", report.PendingHidden)))
	}

	f.printFooter(w, report)
	return nil
}

func (f *TerminalFormatter) separator() string {
	return strings.Repeat("─", lineWidth)
}

func (f *TerminalFormatter) sectionHeader(title string) string {
	prefix := "── " + title + " "
	remaining := max(lineWidth-utf8.RuneCountInString(prefix), 0)
	return prefix + strings.Repeat("─", remaining)
}

func (f *TerminalFormatter) printHeader(w io.Writer, report *review.Report) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.color(dim, sep))
	fmt.Fprintf(w, "  %s\n", f.color(bold, "OVERLAY REVIEW"))

	parts := []string{}
	if report.Project != "" {
		parts = append(parts, fmt.Sprintf("Project: %s", report.Project))
	}
	parts = append(parts, fmt.Sprintf("%d suggestions", report.Totals.Suggestions))
	parts = append(parts, fmt.Sprintf("%d groups", report.Totals.Groups))
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  ·  "))
	fmt.Fprintf(w, "  %s\n", f.color(dim, fmt.Sprintf("status=%s  severity=%s",
		joinStatuses(report.Statuses), joinSeverities(report.Severities))))
	fmt.Fprintf(w, "%s\n", f.color(dim, sep))
}

func (f *TerminalFormatter) printDashboard(w io.Writer, report *review.Report) {
	peak := 0
	for _, sev := range types.Severities {
		peak = max(peak, report.Counts.Get(sev))
	}
	if peak == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, sev := range types.Severities {
		c := report.Counts.Get(sev)
		label := fmt.Sprintf("  %-8s", strings.ToUpper(sev.String()))
		bar := f.renderBar(c, peak, barWidth, sev)
		fmt.Fprintf(w, "%s %s %4d  %5.1f%%\n", f.color(bold, label), bar, c, report.Percentages.Get(sev))
	}
	fmt.Fprintf(w, "\n  %s\n", f.color(bold, fmt.Sprintf("%d items", report.Counts.Total())))
}

func (f *TerminalFormatter) printStatusSection(w io.Writer, st types.Status, rows []review.Row) {
	title := fmt.Sprintf("%s (%d)", strings.ToUpper(st.String()), len(rows))
	fmt.Fprintf(w, "\n%s\n\n", f.color(bold, f.sectionHeader(title)))
	for _, r := range rows {
		key := fmt.Sprintf("%-*s", keyWidth, truncate(r.Key, keyWidth))
		label := fmt.Sprintf("%-*s", labelWidth, truncate(r.Label, labelWidth))
		fmt.Fprintf(w, "    %s %s %s %s\n",
			f.severityIcon(r.Severity),
			f.color(bold, key),
			label,
			f.color(cyan, formatArea(r.TotalArea)),
		)
	}
}

func (f *TerminalFormatter) printFooter(w io.Writer, report *review.Report) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.color(dim, sep))

	parts := []string{
		fmt.Sprintf("%d visible", report.Totals.Visible),
		fmt.Sprintf("%d pending", report.PendingVisible),
	}
	if report.Export.Allowed {
		parts = append(parts, f.color(green, "export ready"))
	} else {
		parts = append(parts, f.color(red, fmt.Sprintf("export blocked (%d pending, %s)", report.Export.Pending, report.Export.Mode)))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, " · "))
	fmt.Fprintf(w, "%s\n", f.color(dim, sep))
}

func (f *TerminalFormatter) severityIcon(sev types.Severity) string {
	switch sev {
	case types.SeverityHigh:
		return f.color(red, "▲")
	case types.SeverityMedium:
		return f.color(yellow, "■")
	case types.SeverityLow:
		return f.color(blue, "●")
	default:
		return f.color(cyan, "○")
	}
}

func (f *TerminalFormatter) severityColor(sev types.Severity) string {
	switch sev {
	case types.SeverityHigh:
		return red
	case types.SeverityMedium:
		return yellow
	case types.SeverityLow:
		return blue
	default:
		return cyan
	}
}

func (f *TerminalFormatter) renderBar(count, peak, width int, sev types.Severity) string {
	filled := count * width / peak
	if filled == 0 && count > 0 {
		filled = 1
	}
	// keep one empty block so the bar boundary stays visible
	if filled >= width {
		filled = width - 1
	}
	empty := width - filled
	return f.color(f.severityColor(sev), strings.Repeat("█", filled)) + f.color(dim, strings.Repeat("░", empty))
}
