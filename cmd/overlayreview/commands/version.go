package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WSG23/overlayreview/internal/update"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var flagCheckUpdate bool

// newUpdateChecker is swapped in tests.
var newUpdateChecker = update.NewChecker

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "overlayreview %s (commit: %s)\n", Version, Commit)
		if !flagCheckUpdate {
			return nil
		}
		r, err := newUpdateChecker().Latest(context.Background(), Version, update.Repo)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			return nil
		}
		if r != nil && r.NeedsUpdate() {
			fmt.Fprintf(out, "update available: %s\n  %s\n", r.Latest, r.Install)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
