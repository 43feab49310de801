package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/WSG23/overlayreview/internal/decision"
	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/state"
	"github.com/WSG23/overlayreview/internal/types"
	"github.com/WSG23/overlayreview/internal/update"
)

const fixtureJSON = `{"items": [
  {"id": 1, "code": "unit_space_area", "status": "pending", "severity": "low", "updated_at": "2024-05-01T08:00:00Z"},
  {"id": 2, "code": "unit_space_area", "status": "pending", "severity": "high", "updated_at": "2024-05-02T08:00:00Z"},
  {"id": 3, "code": "door_clearance", "status": "pending", "severity": "medium", "title": "Widen door",
   "engine_payload": {"area_sqm": 1.5}},
  {"id": "4", "code": "door_clearance", "status": "approved", "severity": "medium", "title": "Widen door",
   "engine_payload": "{\"area_sqm\": 2}"},
  {"id": 5, "code": "ramp", "status": "APPROVED", "severity": "low"},
  {"id": 6, "code": "fire", "status": "weird", "severity": "critical",
   "engine_payload": {"missing_metric": "fire_rating"}}
]}`

func resetFlags(t *testing.T) {
	t.Helper()
	flagFormat = "terminal"
	flagOutput = ""
	flagNoColor = true
	flagProject = ""
	flagAPIURL = ""
	flagLogMode = "prod"
	flagConcurrency = 0
	flagTimeout = 0
	flagPresetsPath = filepath.Join(t.TempDir(), "presets.json")
	flagStatus = nil
	flagSeverity = nil
	flagPreset = ""
	flagFailOnPending = false
	flagDecision = ""
	flagDryRun = false
	flagPresetSeverity = nil
	flagAddr = ":8080"
	flagServeFile = ""
	flagAllowOrigin = nil
	flagCheckUpdate = false

	// pflag keeps Changed across Execute calls on the same command tree
	var resetChanged func(c *cobra.Command)
	resetChanged = func(c *cobra.Command) {
		unset := func(f *pflag.Flag) { f.Changed = false }
		c.Flags().VisitAll(unset)
		c.PersistentFlags().VisitAll(unset)
		for _, sub := range c.Commands() {
			resetChanged(sub)
		}
	}
	resetChanged(rootCmd)
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suggestions.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestReviewTerminal(t *testing.T) {
	resetFlags(t)
	out, err := execute(t, "review", writeFixture(t))
	require.NoError(t, err)

	require.Contains(t, out, "OVERLAY REVIEW")
	require.Contains(t, out, "6 suggestions")
	require.Contains(t, out, "PENDING (2)")
	require.Contains(t, out, "Widen door (x2)")
	require.Contains(t, out, "export blocked (2 pending, filtered)")
}

func TestReviewJSON(t *testing.T) {
	resetFlags(t)
	out, err := execute(t, "review", writeFixture(t), "--format", "json", "--status", "all")
	require.NoError(t, err)

	var report review.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 6, report.Totals.Suggestions)
	require.Equal(t, 5, report.Totals.Deduplicated)
	require.Len(t, report.Rows, 4)

	keys := []string{}
	for _, r := range report.Rows {
		keys = append(keys, r.Key)
	}
	require.Equal(t, []string{"unit_space_area", "door_clearance", "ramp", "fire_rating"}, keys)
	require.Equal(t, types.SeverityHigh, report.Rows[0].Severity)
	require.Equal(t, types.StatusPending, report.Rows[1].Status)
	require.Equal(t, 3.5, report.Rows[1].TotalArea)
	require.Equal(t, types.StatusSource, report.Rows[3].Status)
	require.Equal(t, types.SeverityNone, report.Rows[3].Severity)
	require.Equal(t, []int64{2, 3}, report.DecisionTargets)
}

func TestReviewSeverityFilter(t *testing.T) {
	resetFlags(t)
	out, err := execute(t, "review", writeFixture(t), "--format", "json", "--severity", "high")
	require.NoError(t, err)

	var report review.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Rows, 1)
	require.Equal(t, 1, report.PendingHidden)
	require.Equal(t, 1, report.Counts.Medium)
}

func TestReviewInvalidFlags(t *testing.T) {
	resetFlags(t)
	_, err := execute(t, "review", writeFixture(t), "--status", "archived")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid --status")

	resetFlags(t)
	_, err = execute(t, "review")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--project is required")
}

func TestReviewFailOnPending(t *testing.T) {
	resetFlags(t)
	_, err := execute(t, "review", writeFixture(t), "--fail-on-pending")
	require.ErrorIs(t, err, ErrExportBlocked)

	resetFlags(t)
	_, err = execute(t, "review", writeFixture(t), "--fail-on-pending", "--status", "approved")
	require.NoError(t, err)
}

func TestReviewOutputFile(t *testing.T) {
	resetFlags(t)
	target := filepath.Join(t.TempDir(), "report.md")
	out, err := execute(t, "review", writeFixture(t), "--format", "markdown", "-o", target)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(data), "Overlay Review")
}

func TestReviewConfigDefaults(t *testing.T) {
	resetFlags(t)
	path := writeFixture(t)
	cfg := "status_defaults: all\nseverities: [low]\n"
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".overlayreview.yml"), []byte(cfg), 0o600))

	out, err := execute(t, "review", path, "--format", "json")
	require.NoError(t, err)

	var report review.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, []types.Severity{types.SeverityLow}, report.Severities)
	require.Len(t, report.Rows, 1)
	require.Equal(t, "ramp", report.Rows[0].Key)
	require.Equal(t, types.StatusApproved, report.Rows[0].Status)
}

func TestConfigFormatAfterExplicitFlag(t *testing.T) {
	resetFlags(t)
	path := writeFixture(t)
	out, err := execute(t, "review", path, "--format", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "Overlay Review")

	resetFlags(t)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".overlayreview.yml"), []byte("format: json\n"), 0o600))
	out, err = execute(t, "review", path)
	require.NoError(t, err)

	var report review.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 6, report.Totals.Suggestions)
}

func TestPresets(t *testing.T) {
	resetFlags(t)
	out, err := execute(t, "presets", "save", "urgent", "--severity", "high,medium")
	require.NoError(t, err)
	require.Contains(t, out, "saved urgent (high,medium)")

	out, err = execute(t, "presets", "list")
	require.NoError(t, err)
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "urgent")
	require.Contains(t, out, "1 presets in")

	store := state.New(flagPresetsPath)
	require.NoError(t, store.Load())
	p, ok := store.Get("urgent")
	require.True(t, ok)
	require.Equal(t, []types.Severity{types.SeverityHigh, types.SeverityMedium}, p.Severities)

	out, err = execute(t, "review", writeFixture(t), "--format", "json", "--preset", "urgent")
	require.NoError(t, err)
	var report review.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, []types.Severity{types.SeverityHigh, types.SeverityMedium}, report.Severities)
	require.Len(t, report.Rows, 2)

	out, err = execute(t, "presets", "delete", "urgent")
	require.NoError(t, err)
	require.Contains(t, out, "deleted urgent")

	_, err = execute(t, "presets", "delete", "urgent")
	require.Error(t, err)

	_, err = execute(t, "review", writeFixture(t), "--preset", "urgent")
	require.Error(t, err)
	require.Contains(t, err.Error(), "preset not found")
}

func TestDecideDryRun(t *testing.T) {
	resetFlags(t)
	out, err := execute(t, "decide", writeFixture(t), "--decision", "approve", "--dry-run", "--severity", "high,medium")
	require.NoError(t, err)
	require.Contains(t, out, "Would approve 2 suggestions:")
	require.Contains(t, out, "  2\n")
	require.Contains(t, out, "  3\n")
	require.NotContains(t, out, "  6\n")
}

func TestDecideInvalidDecision(t *testing.T) {
	resetFlags(t)
	_, err := execute(t, "decide", writeFixture(t), "--decision", "maybe")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid --decision")
}

func TestDecideAgainstBackend(t *testing.T) {
	var (
		mu      sync.Mutex
		decided = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/projects/7/overlay-suggestions":
			_, _ = w.Write([]byte(fixtureJSON))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/decision"):
			var body struct {
				Decision string `json:"decision"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			parts := strings.Split(r.URL.Path, "/")
			mu.Lock()
			decided[parts[len(parts)-2]] = body.Decision
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	resetFlags(t)
	out, err := execute(t, "decide", "--project", "7", "--api-url", srv.URL,
		"--decision", "reject", "--format", "json", "--timeout", (5 * time.Second).String())
	require.NoError(t, err)

	var sum decision.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Equal(t, types.DecisionReject, sum.Decision)
	require.Equal(t, []int64{2, 3}, sum.Succeeded)
	require.Empty(t, sum.Failed)
	require.Equal(t, map[string]string{"2": "reject", "3": "reject"}, decided)
}

func TestInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(nil, []string{dir}))

	data, err := os.ReadFile(filepath.Join(dir, ".overlayreview.yml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "status_defaults: triage")
}

func TestInitSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, ".overlayreview.yml")
	require.NoError(t, os.WriteFile(existing, []byte("format: json\n"), 0o644))

	require.NoError(t, runInit(nil, []string{dir}))
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "format: json\n", string(data))
}

func TestVersion(t *testing.T) {
	flagCheckUpdate = false
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "overlayreview dev")
}

func TestVersionCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "v1.2.0"}`))
	}))
	defer srv.Close()

	prevVersion, prevChecker := Version, newUpdateChecker
	Version = "v1.0.0"
	newUpdateChecker = func() *update.Checker {
		return &update.Checker{BaseURL: srv.URL, Client: srv.Client()}
	}
	defer func() { Version, newUpdateChecker = prevVersion, prevChecker }()

	out, err := execute(t, "version", "--check")
	require.NoError(t, err)
	require.Contains(t, out, "overlayreview v1.0.0")
	require.Contains(t, out, "update available: v1.2.0")
}
