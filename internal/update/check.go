// Package update looks up the latest published overlayreview release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Repo is the GitHub repository releases are published under.
const Repo = "WSG23/overlayreview"

// Result holds the outcome of a version check.
type Result struct {
	Latest  string
	Current string
	Install string
}

// NeedsUpdate reports whether a different release than the running one is
// published. Development builds never need an update.
func (r *Result) NeedsUpdate() bool {
	return normalize(r.Latest) != normalize(r.Current) && r.Current != "dev"
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

type release struct {
	TagName string `json:"tag_name"`
}

// Checker queries the GitHub releases API.
type Checker struct {
	BaseURL string
	Client  *http.Client
}

// NewChecker returns a Checker against api.github.com with a short timeout so
// a slow network never holds up the CLI.
func NewChecker() *Checker {
	return &Checker{
		BaseURL: "https://api.github.com",
		Client:  &http.Client{Timeout: 2 * time.Second},
	}
}

// Latest returns the newest release of repo. Development builds skip the lookup.
func (c *Checker) Latest(ctx context.Context, current, repo string) (*Result, error) {
	if current == "dev" {
		return nil, nil
	}
	u := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimRight(c.BaseURL, "/"), repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checking latest release: unexpected status %d", resp.StatusCode)
	}
	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	if rel.TagName == "" {
		return nil, fmt.Errorf("release has no tag")
	}

	return &Result{
		Latest:  rel.TagName,
		Current: current,
		Install: fmt.Sprintf("go install github.com/%s/cmd/overlayreview@latest", repo),
	}, nil
}
