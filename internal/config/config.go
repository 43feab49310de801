// Package config loads .overlayreview.yml configuration files holding the
// backend location, default filters and export gating for a review workspace.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/WSG23/overlayreview/internal/filter"
	"github.com/WSG23/overlayreview/internal/types"
)

// Config represents the .overlayreview.yml configuration file.
type Config struct {
	APIURL            string              `yaml:"api_url,omitempty"`
	Project           string              `yaml:"project,omitempty"`
	StatusDefaults    string              `yaml:"status_defaults,omitempty"`
	Severities        []string            `yaml:"severities,omitempty"`
	UnitSpacePrefixes []string            `yaml:"unit_space_prefixes,omitempty"`
	ExportGate        string              `yaml:"export_gate,omitempty"`
	Format            string              `yaml:"format,omitempty"`
	LogMode           string              `yaml:"log_mode,omitempty"`
	Addr              string              `yaml:"addr,omitempty"`
	PresetsPath       string              `yaml:"presets_path,omitempty"`
	Concurrency       int                 `yaml:"concurrency,omitempty"`
	Timeout           time.Duration       `yaml:"timeout,omitempty"`
	Presets           map[string][]string `yaml:"presets,omitempty"`
}

// Load reads .overlayreview.yml or .overlayreview.yaml from dir. If dir is a
// file, its parent directory is used. A missing file yields a zero Config.
func Load(dir string) (Config, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for _, name := range []string{".overlayreview.yml", ".overlayreview.yaml"} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.Size() > 1<<20 {
			return Config{}, fmt.Errorf("config file too large: %s (%d bytes, max 1 MB)", path, info.Size())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		return cfg, nil
	}
	return Config{}, nil
}

// ApplyEnv overlays environment overrides onto cfg.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("OVERLAYREVIEW_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		c.LogMode = v
	}
}

// DefaultStatuses resolves status_defaults: "triage" (source and pending) or
// "all". Empty means triage.
func (c Config) DefaultStatuses() ([]types.Status, error) {
	switch strings.ToLower(strings.TrimSpace(c.StatusDefaults)) {
	case "", "triage":
		return filter.TriageStatuses, nil
	case "all":
		return filter.AllStatuses, nil
	default:
		return nil, fmt.Errorf("unknown status_defaults %q (want triage or all)", c.StatusDefaults)
	}
}

// DefaultSeverities parses the configured severity defaults; empty means all.
func (c Config) DefaultSeverities() ([]types.Severity, error) {
	if len(c.Severities) == 0 {
		return filter.AllSeverities, nil
	}
	return filter.ParseSeverities(c.Severities)
}

// Gate resolves the export gate mode.
func (c Config) Gate() (filter.ExportGate, error) {
	mode, err := filter.ParseGateMode(c.ExportGate)
	if err != nil {
		return filter.ExportGate{}, err
	}
	return filter.ExportGate{Mode: mode}, nil
}
