package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/WSG23/overlayreview/internal/client"
	"github.com/WSG23/overlayreview/internal/config"
	"github.com/WSG23/overlayreview/internal/filter"
	"github.com/WSG23/overlayreview/internal/output"
	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/state"
	"github.com/WSG23/overlayreview/internal/types"
)

const maxSuggestionFile = 64 << 20

// fileSource serves suggestions from a JSON export on disk, re-read on
// every call so edits show up without a restart.
type fileSource struct {
	path string
}

func (s fileSource) ListSuggestions(_ context.Context, _ string) ([]types.Suggestion, error) {
	return readSuggestionFile(s.path)
}

func readSuggestionFile(path string) ([]types.Suggestion, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxSuggestionFile {
		return nil, fmt.Errorf("suggestion file too large: %s (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	suggestions, err := client.DecodeSuggestions(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return suggestions, nil
}

func newClient() (*client.Client, error) {
	if flagAPIURL == "" {
		return nil, errors.New("no suggestion source: pass a file or set --api-url")
	}
	var opts []client.Option
	if flagTimeout > 0 {
		opts = append(opts, client.WithTimeout(flagTimeout))
	}
	return client.New(flagAPIURL, opts...)
}

// loadSuggestions reads the file argument when present, otherwise fetches the
// project from the backend.
func loadSuggestions(ctx context.Context, cmd *cobra.Command, args []string) ([]types.Suggestion, error) {
	if len(args) > 0 {
		return readSuggestionFile(args[0])
	}
	if flagProject == "" {
		return nil, errors.New("--project is required when no file is given")
	}
	c, err := newClient()
	if err != nil {
		return nil, err
	}

	sp := output.NewSpinner(cmd.ErrOrStderr())
	sp.Start(fmt.Sprintf("Fetching suggestions for project %s", flagProject))
	suggestions, err := c.ListSuggestions(ctx, flagProject)
	if err != nil {
		sp.Stop()
		return nil, err
	}
	sp.Done(fmt.Sprintf("%d suggestions fetched", len(suggestions)))
	return suggestions, nil
}

// configDir is the directory searched for .overlayreview.yml.
func configDir(args []string) string {
	if len(args) > 0 {
		return filepath.Dir(args[0])
	}
	return "."
}

// buildFilters resolves the status and severity filters from config defaults,
// an optional saved preset and explicit flags, in that order.
func buildFilters(cfg config.Config, preset string) (*filter.StatusFilter, *filter.SeverityFilter, error) {
	statusDefaults, err := cfg.DefaultStatuses()
	if err != nil {
		return nil, nil, err
	}
	severityDefaults, err := cfg.DefaultSeverities()
	if err != nil {
		return nil, nil, fmt.Errorf("config severities: %w", err)
	}

	sf := filter.NewStatusFilter(statusDefaults...)
	if len(flagStatus) > 0 {
		values, err := filter.ParseStatuses(flagStatus)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --status: %w", err)
		}
		if err := sf.Set(values...); err != nil {
			return nil, nil, fmt.Errorf("invalid --status: %w", err)
		}
	}

	vf := filter.NewSeverityFilter(severityDefaults...)
	for name, values := range cfg.Presets {
		sevs, err := filter.ParseSeverities(values)
		if err != nil {
			return nil, nil, fmt.Errorf("config preset %q: %w", name, err)
		}
		vf.LoadPreset(name, sevs)
	}
	if preset != "" {
		store, err := openPresets()
		if err != nil {
			return nil, nil, err
		}
		store.Register(vf)
		if err := vf.ApplyPreset(preset); err != nil {
			return nil, nil, fmt.Errorf("--preset %s: %w", preset, err)
		}
	}
	if len(flagSeverity) > 0 {
		values, err := filter.ParseSeverities(flagSeverity)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --severity: %w", err)
		}
		if err := vf.Set(values...); err != nil {
			return nil, nil, fmt.Errorf("invalid --severity: %w", err)
		}
	}
	return sf, vf, nil
}

func openPresets() (*state.Store, error) {
	path := flagPresetsPath
	if path == "" {
		path = state.DefaultPath()
	}
	store := state.New(path)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}
	return store, nil
}

func buildOptions(cfg config.Config, preset string) (review.Options, error) {
	sf, vf, err := buildFilters(cfg, preset)
	if err != nil {
		return review.Options{}, err
	}
	gate, err := cfg.Gate()
	if err != nil {
		return review.Options{}, err
	}
	return review.Options{
		Project:           flagProject,
		UnitSpacePrefixes: cfg.UnitSpacePrefixes,
		Status:            sf,
		Severity:          vf,
		Gate:              gate,
	}, nil
}

// openOutput returns the -o file or w when unset.
func openOutput(w io.Writer) (io.Writer, func(), error) {
	if flagOutput == "" {
		return w, func() {}, nil
	}
	f, err := os.Create(flagOutput)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func contextWithInterrupt() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
