package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WSG23/overlayreview/internal/output"
	"github.com/WSG23/overlayreview/internal/review"
)

// ErrExportBlocked is returned by review --fail-on-pending while pending items
// still block export.
var ErrExportBlocked = errors.New("export blocked by pending suggestions")

var (
	flagPreset        string
	flagFailOnPending bool
)

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Summarise a project's overlay suggestions",
	Long: `Deduplicates unit/space suggestions, groups them into review items and prints
them under the active status and severity filters. Suggestions come from a JSON
export file or, without a file, from --project on the backend at --api-url.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringSliceVar(&flagStatus, "status", nil, "Statuses to show (source, pending, approved, rejected, all)")
	reviewCmd.Flags().StringSliceVar(&flagSeverity, "severity", nil, "Severities to show (high, medium, low, none, all)")
	reviewCmd.Flags().StringVar(&flagPreset, "preset", "", "Apply a saved severity preset")
	reviewCmd.Flags().BoolVar(&flagFailOnPending, "fail-on-pending", false, "Exit with code 1 if pending items block export")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd, configDir(args))
	log := newLogger(cmd)
	defer log.Sync()

	opts, err := buildOptions(cfg, flagPreset)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithInterrupt()
	defer cancel()

	suggestions, err := loadSuggestions(ctx, cmd, args)
	if err != nil {
		return err
	}
	report := review.Build(suggestions, opts)
	log.Debug("review built",
		"suggestions", report.Totals.Suggestions,
		"groups", report.Totals.Groups,
		"visible", report.Totals.Visible,
	)

	if err := writeReport(cmd, report); err != nil {
		return err
	}

	if flagFailOnPending && !report.Export.Allowed {
		return fmt.Errorf("%w: %d pending", ErrExportBlocked, report.Export.Pending)
	}
	return nil
}

func writeReport(cmd *cobra.Command, report *review.Report) error {
	output.ToolVersion = Version
	w, closeFn, err := openOutput(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()
	return output.New(flagFormat, flagNoColor).Format(w, report)
}
