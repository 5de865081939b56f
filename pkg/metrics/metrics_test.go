package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odos-swap/pkg/swap"
	"odos-swap/pkg/types"
)

func replay(r *Recorder, states ...swap.State) {
	for i := 1; i < len(states); i++ {
		r.OnTransition(swap.Transition{From: states[i-1], To: states[i], Elapsed: 200 * time.Millisecond})
	}
}

func TestRecorderSuccess(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	replay(r, swap.Init, swap.ChainBound, swap.Quoted, swap.Assembled, swap.Approved, swap.Submitted, swap.Done)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.approvalsTotal))
	assert.Greater(t, testutil.ToFloat64(r.lastSuccess), 0.0)
	assert.Equal(t, 6, testutil.CollectAndCount(r.stageDuration))
}

func TestRecorderFailureKind(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.OnTransition(swap.Transition{From: swap.Init, To: swap.ChainBound})
	r.OnTransition(swap.Transition{
		From: swap.ChainBound,
		To:   swap.Failed,
		Err:  types.NewError(types.RoutingServiceError, "quote", "status 503", nil),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("failure", "RoutingServiceError")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.approvalsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastSuccess))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	replay(r, swap.Init, swap.ChainBound, swap.Quoted, swap.Assembled, swap.Submitted, swap.Done)

	path := filepath.Join(t.TempDir(), "odos_swap.prom")
	require.NoError(t, r.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "odos_swap_runs_total")
	assert.Contains(t, string(content), `result="success"`)
	assert.Contains(t, string(content), "odos_swap_stage_duration_seconds_bucket")
}
