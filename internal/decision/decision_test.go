package decision_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/WSG23/overlayreview/internal/decision"
	"github.com/WSG23/overlayreview/internal/types"
	"github.com/stretchr/testify/require"
)

type fakeDecider struct {
	mu       sync.Mutex
	calls    []int64
	fail     map[int64]bool
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeDecider) Decide(_ context.Context, _ string, id int64, _ types.Decision) error {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	if f.fail[id] {
		return errors.New("backend said no")
	}
	return nil
}

func TestRunCollectsFailures(t *testing.T) {
	d := &fakeDecider{fail: map[int64]bool{3: true}}
	r := decision.NewRunner(d, 2, nil)

	sum, err := r.Run(context.Background(), "p1", types.DecisionApprove, []int64{5, 3, 1, 5})
	require.NoError(t, err)
	require.NotEmpty(t, sum.RunID)
	require.Equal(t, types.DecisionApprove, sum.Decision)
	require.Equal(t, []int64{1, 5}, sum.Succeeded)
	require.Len(t, sum.Failed, 1)
	require.Equal(t, int64(3), sum.Failed[0].SuggestionID)
	require.Contains(t, sum.Failed[0].Error, "backend said no")
	require.Len(t, d.calls, 3)
	require.LessOrEqual(t, d.peak.Load(), int32(2))
}

func TestRunEmpty(t *testing.T) {
	r := decision.NewRunner(&fakeDecider{}, 0, nil)
	sum, err := r.Run(context.Background(), "p1", types.DecisionReject, nil)
	require.NoError(t, err)
	require.Empty(t, sum.Succeeded)
	require.Empty(t, sum.Failed)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &fakeDecider{}
	sum, err := decision.NewRunner(d, 1, nil).Run(ctx, "p1", types.DecisionApprove, []int64{1, 2, 3})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, sum)
	require.Empty(t, d.calls)
}
