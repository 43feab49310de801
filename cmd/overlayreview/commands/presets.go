package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/WSG23/overlayreview/internal/filter"
	"github.com/WSG23/overlayreview/internal/types"
)

var flagPresetSeverity []string

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage saved severity filter presets",
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save a severity selection under NAME",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsSave,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetsList,
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsDelete,
}

func init() {
	presetsSaveCmd.Flags().StringSliceVar(&flagPresetSeverity, "severity", nil, "Severities to save (high, medium, low, none, all)")
	_ = presetsSaveCmd.MarkFlagRequired("severity")
	presetsCmd.AddCommand(presetsSaveCmd, presetsListCmd, presetsDeleteCmd)
	rootCmd.AddCommand(presetsCmd)
}

func runPresetsSave(cmd *cobra.Command, args []string) error {
	loadConfig(cmd, ".")
	sevs, err := filter.ParseSeverities(flagPresetSeverity)
	if err != nil {
		return fmt.Errorf("invalid --severity: %w", err)
	}
	store, err := openPresets()
	if err != nil {
		return err
	}
	p, err := store.Put(args[0], sevs)
	if err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("saving presets: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  saved %s (%s)\n", p.Name, joinSeverities(p.Severities))
	return nil
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	loadConfig(cmd, ".")
	store, err := openPresets()
	if err != nil {
		return err
	}
	presets := store.List()
	out := cmd.OutOrStdout()

	if flagFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(presets)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tSEVERITIES\tSAVED\n")
	for _, p := range presets {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, joinSeverities(p.Severities), p.SavedAt)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d presets in %s\n", len(presets), store.Path())
	return nil
}

func runPresetsDelete(cmd *cobra.Command, args []string) error {
	loadConfig(cmd, ".")
	store, err := openPresets()
	if err != nil {
		return err
	}
	if !store.Delete(args[0]) {
		return fmt.Errorf("%w: %s", filter.ErrPresetNotFound, args[0])
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("saving presets: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  deleted %s\n", args[0])
	return nil
}

func joinSeverities(sevs []types.Severity) string {
	parts := make([]string, len(sevs))
	for i, s := range sevs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}
