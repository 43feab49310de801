package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/WSG23/overlayreview/internal/decision"
	"github.com/WSG23/overlayreview/internal/output"
	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/types"
)

var (
	flagDecision string
	flagDryRun   bool
)

var decideCmd = &cobra.Command{
	Use:   "decide [file]",
	Short: "Approve or reject every visible pending suggestion",
	Long: `Runs the review pipeline under the active filters and sends one decision per
pending suggestion in a visible group. Decisions address individual suggestions;
a group is never decided as a unit. With --dry-run the targets are printed and
nothing is sent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecide,
}

func init() {
	decideCmd.Flags().StringVar(&flagDecision, "decision", "", "Decision to send (approve, reject)")
	decideCmd.Flags().StringSliceVar(&flagStatus, "status", nil, "Statuses in scope (source, pending, approved, rejected, all)")
	decideCmd.Flags().StringSliceVar(&flagSeverity, "severity", nil, "Severities in scope (high, medium, low, none, all)")
	decideCmd.Flags().StringVar(&flagPreset, "preset", "", "Apply a saved severity preset")
	decideCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the targets without sending decisions")
	rootCmd.AddCommand(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	d, err := types.ParseDecision(flagDecision)
	if err != nil {
		return fmt.Errorf("invalid --decision: %w", err)
	}

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
	out := cmd.OutOrStdout()

	if flagDryRun {
		return printTargets(out, d, report.DecisionTargets)
	}
	if flagProject == "" {
		return errors.New("--project is required to send decisions")
	}
	if len(report.DecisionTargets) == 0 {
		fmt.Fprintln(out, "No pending suggestions match the current filters.")
		return nil
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	sp := output.NewSpinner(cmd.ErrOrStderr())
	sp.Start(fmt.Sprintf("Sending %d %s decisions", len(report.DecisionTargets), d))
	sum, err := decision.NewRunner(c, flagConcurrency, log).Run(ctx, flagProject, d, report.DecisionTargets)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("decisions interrupted after %d sent: %w", len(sum.Succeeded), err)
	}

	if err := printSummary(out, sum); err != nil {
		return err
	}
	if len(sum.Failed) > 0 {
		return fmt.Errorf("%d of %d decisions failed", len(sum.Failed), len(sum.Failed)+len(sum.Succeeded))
	}
	return nil
}

func printTargets(w io.Writer, d types.Decision, ids []int64) error {
	if flagFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Decision types.Decision `json:"decision"`
			Targets  []int64        `json:"targets"`
		}{d, ids})
	}
	fmt.Fprintf(w, "Would %s %d suggestions:\n", d, len(ids))
	for _, id := range ids {
		fmt.Fprintf(w, "  %d\n", id)
	}
	return nil
}

func printSummary(w io.Writer, sum *decision.Summary) error {
	if flagFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	fmt.Fprintf(w, "%s: %d succeeded, %d failed (run %s)\n", sum.Decision, len(sum.Succeeded), len(sum.Failed), sum.RunID)
	for _, f := range sum.Failed {
		fmt.Fprintf(w, "  %d: %s\n", f.SuggestionID, f.Error)
	}
	return nil
}
