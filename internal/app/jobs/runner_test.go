package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
)

func waitFor(t *testing.T, r *Runner, id string) Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := r.Wait(ctx, id)
	require.NoError(t, err)
	return st
}

func TestRunner_Succeeds(t *testing.T) {
	m := metrics.NewIsolated()
	r := NewRunner(m, zerolog.Nop())

	id := r.Start("noop", func(ctx context.Context) (any, error) {
		return 42, nil
	})

	st := waitFor(t, r, id)
	assert.Equal(t, StateSucceeded, st.State)
	assert.Equal(t, 42, st.Result)
	assert.NotNil(t, st.FinishedAt)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.JobsRunning))
}

func TestRunner_FailureAndPanic(t *testing.T) {
	r := NewRunner(nil, zerolog.Nop())

	failed := r.Start("fails", func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	panicked := r.Start("panics", func(ctx context.Context) (any, error) {
		panic("bad row")
	})

	st := waitFor(t, r, failed)
	assert.Equal(t, StateFailed, st.State)
	assert.Equal(t, "boom", st.Error)

	st = waitFor(t, r, panicked)
	assert.Equal(t, StateFailed, st.State)
	assert.Contains(t, st.Error, "bad row")
}

func TestRunner_Cancel(t *testing.T) {
	r := NewRunner(nil, zerolog.Nop())
	started := make(chan struct{})

	id := r.Start("blocks", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started

	_, err := r.Cancel(id)
	require.NoError(t, err)

	st := waitFor(t, r, id)
	assert.Equal(t, StateCancelled, st.State)
}

func TestRunner_UnknownJob(t *testing.T) {
	r := NewRunner(nil, zerolog.Nop())

	_, err := r.Status("missing")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)

	_, err = r.Cancel("missing")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestRunner_ShutdownCancelsRunningJobs(t *testing.T) {
	r := NewRunner(nil, zerolog.Nop())
	started := make(chan struct{})

	id := r.Start("long", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))

	st, err := r.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, st.State)
}
