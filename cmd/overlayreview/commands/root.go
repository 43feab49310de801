package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/WSG23/overlayreview/internal/config"
	"github.com/WSG23/overlayreview/internal/logger"
)

var (
	flagFormat      string
	flagOutput      string
	flagNoColor     bool
	flagProject     string
	flagAPIURL      string
	flagLogMode     string
	flagConcurrency int
	flagTimeout     time.Duration
	flagPresetsPath string
	flagStatus      []string
	flagSeverity    []string
)

var rootCmd = &cobra.Command{
	Use:   "overlayreview",
	Short: "Review CAD overlay suggestions",
	Long: `overlayreview deduplicates, groups and filters the overlay suggestions a CAD
engine produced for a project, and records approve/reject decisions for them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "terminal", "Output format (terminal, json, markdown, html)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "Project ID on the suggestion backend")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Base URL of the suggestion backend")
	rootCmd.PersistentFlags().StringVar(&flagLogMode, "log-mode", "", "Log mode (dev, prod)")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "Parallel decision requests (default: NumCPU)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Backend request timeout (default: 15s)")
	rootCmd.PersistentFlags().StringVar(&flagPresetsPath, "presets-path", "", "Severity presets file (default: ~/.overlayreview/presets.json)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config next to dir and fills every flag the user did
// not set explicitly.
func loadConfig(cmd *cobra.Command, dir string) config.Config {
	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if !flags.Changed("format") && cfg.Format != "" {
		flagFormat = cfg.Format
	}
	if !flags.Changed("project") && cfg.Project != "" {
		flagProject = cfg.Project
	}
	if !flags.Changed("api-url") && cfg.APIURL != "" {
		flagAPIURL = cfg.APIURL
	}
	if !flags.Changed("log-mode") && cfg.LogMode != "" {
		flagLogMode = cfg.LogMode
	}
	if !flags.Changed("concurrency") && cfg.Concurrency > 0 {
		flagConcurrency = cfg.Concurrency
	}
	if !flags.Changed("timeout") && cfg.Timeout > 0 {
		flagTimeout = cfg.Timeout
	}
	if !flags.Changed("presets-path") && cfg.PresetsPath != "" {
		flagPresetsPath = cfg.PresetsPath
	}
	if os.Getenv("NO_COLOR") != "" {
		flagNoColor = true
	}
	return cfg
}

func newLogger(cmd *cobra.Command) *logger.Logger {
	log, err := logger.New(flagLogMode)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return logger.Nop()
	}
	return log
}
