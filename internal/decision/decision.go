// Package decision sends bulk approve/reject verdicts for individual overlay
// suggestions.
package decision

import (
	"context"
	"runtime"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/WSG23/overlayreview/internal/logger"
	"github.com/WSG23/overlayreview/internal/types"
)

// Decider records a verdict for one suggestion.
type Decider interface {
	Decide(ctx context.Context, projectID string, suggestionID int64, d types.Decision) error
}

// Failure is a suggestion whose decision call failed.
type Failure struct {
	SuggestionID int64  `json:"suggestion_id"`
	Error        string `json:"error"`
}

// Summary is the outcome of one bulk run, sorted by suggestion ID.
type Summary struct {
	RunID     string         `json:"run_id"`
	Project   string         `json:"project"`
	Decision  types.Decision `json:"decision"`
	Succeeded []int64        `json:"succeeded"`
	Failed    []Failure      `json:"failed"`
}

// Runner fans decision calls out with bounded concurrency.
type Runner struct {
	decider     Decider
	concurrency int
	log         *logger.Logger
}

// NewRunner creates a Runner. If concurrency <= 0 it defaults to runtime.NumCPU().
func NewRunner(d Decider, concurrency int, log *logger.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{decider: d, concurrency: concurrency, log: log}
}

// Run issues one call per distinct suggestion ID. A failed call is recorded
// and does not stop the others. The returned error is non-nil only when ctx
// ends before every call was attempted; the partial summary is still returned.
func (r *Runner) Run(ctx context.Context, projectID string, d types.Decision, ids []int64) (*Summary, error) {
	sum := &Summary{
		RunID:     uuid.NewString(),
		Project:   projectID,
		Decision:  d,
		Succeeded: []int64{},
		Failed:    []Failure{},
	}
	log := r.log.With("run_id", sum.RunID, "project", projectID, "decision", string(d))

	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.concurrency)

	for _, id := range unique {
		if ctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			err := r.decider.Decide(ctx, projectID, id, d)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("decision failed", "suggestion_id", id, "error", err)
				sum.Failed = append(sum.Failed, Failure{SuggestionID: id, Error: err.Error()})
				return nil
			}
			sum.Succeeded = append(sum.Succeeded, id)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(sum.Succeeded)
	sort.Slice(sum.Failed, func(i, j int) bool {
		return sum.Failed[i].SuggestionID < sum.Failed[j].SuggestionID
	})
	log.Info("decisions sent", "succeeded", len(sum.Succeeded), "failed", len(sum.Failed))

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}
