package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(16, 3, time.Second, zaptest.NewLogger(t))
	defer d.Close(context.Background())

	var n atomic.Int32
	for i := 0; i < 10; i++ {
		require.True(t, d.Dispatch(Job{Name: "count", Run: func(context.Context) error {
			n.Add(1)
			return nil
		}}))
	}
	d.Flush()
	assert.EqualValues(t, 10, n.Load())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, 1, time.Second, zaptest.NewLogger(t))
	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, d.Dispatch(Job{Name: "block", Run: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started

	require.True(t, d.Dispatch(Job{Name: "queued", Run: func(context.Context) error { return nil }}))
	assert.False(t, d.Dispatch(Job{Name: "dropped", Run: func(context.Context) error { return nil }}))

	close(release)
	d.Flush()
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherSurvivesPanicsAndErrors(t *testing.T) {
	d := NewDispatcher(4, 1, time.Second, zaptest.NewLogger(t))
	defer d.Close(context.Background())

	var ran atomic.Bool
	d.Dispatch(Job{Name: "panic", Run: func(context.Context) error { panic("boom") }})
	d.Dispatch(Job{Name: "error", Run: func(context.Context) error { return errors.New("nope") }})
	d.Dispatch(Job{Name: "ok", Run: func(context.Context) error {
		ran.Store(true)
		return nil
	}})
	d.Flush()

	assert.True(t, ran.Load())
}

func TestDispatcherJobsHaveDeadline(t *testing.T) {
	d := NewDispatcher(1, 1, 50*time.Millisecond, zaptest.NewLogger(t))
	defer d.Close(context.Background())

	var hadDeadline atomic.Bool
	d.Dispatch(Job{Name: "deadline", Run: func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	}})
	d.Flush()
	assert.True(t, hadDeadline.Load())
}

func TestCloseDrainsAndRejects(t *testing.T) {
	d := NewDispatcher(8, 1, time.Second, zaptest.NewLogger(t))

	var n atomic.Int32
	for i := 0; i < 5; i++ {
		d.Dispatch(Job{Name: "slow", Run: func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			n.Add(1)
			return nil
		}})
	}
	require.NoError(t, d.Close(context.Background()))
	assert.EqualValues(t, 5, n.Load())

	assert.False(t, d.Dispatch(Job{Name: "late", Run: func(context.Context) error { return nil }}))
	assert.NoError(t, d.Close(context.Background()))
}
