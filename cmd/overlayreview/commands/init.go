package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create an .overlayreview.yml configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	out := os.Stdout
	path := filepath.Join(dir, ".overlayreview.yml")
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  skip %s (already exists)\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(out, "  create %s\n", path)
	return nil
}

const configTemplate = `# overlayreview configuration

# Suggestion backend and default project
# api_url: https://cad.example.com
# project: "42"

# Statuses shown by default: triage (source, pending) or all
status_defaults: triage

# Severities shown by default (high, medium, low, none)
# severities: [high, medium]

# Codes treated as unit/space suggestions; only the latest one is kept
unit_space_prefixes:
  - unit_space
  - unit-space
  - unitspace

# Export gate counts pending items under the active filters (filtered) or all of them (all)
export_gate: filtered

# Output format: terminal, json, markdown, html
format: terminal

# Named severity presets
# presets:
#   urgent: [high]

# log_mode: dev
# addr: ":8080"
# concurrency: 4
# timeout: 15s
`
