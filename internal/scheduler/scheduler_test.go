package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, settings Settings) *Scheduler {
	t.Helper()
	s, err := NewWithSettings(settings, logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestEveryRunsRepeatedly(t *testing.T) {
	s := newTestScheduler(t, Settings{Workers: 2, StopTimeout: time.Second})

	var runs atomic.Int32
	require.NoError(t, s.Every("tick", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestEveryRejectsNonPositiveInterval(t *testing.T) {
	s := newTestScheduler(t, Settings{Workers: 1})
	assert.Error(t, s.Every("bad", 0, func(context.Context) error { return nil }))
}

func TestStartupDelay(t *testing.T) {
	s := newTestScheduler(t, Settings{Workers: 1, StartDelay: 300 * time.Millisecond, StopTimeout: time.Second})

	var runs atomic.Int32
	require.NoError(t, s.Every("delayed", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	s.Start()
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunsOfOneJobNeverOverlap(t *testing.T) {
	s := newTestScheduler(t, Settings{Workers: 4, StopTimeout: time.Second})

	var active, maxActive, runs atomic.Int32
	require.NoError(t, s.Every("slow", 10*time.Millisecond, func(context.Context) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		runs.Add(1)
		return nil
	}))
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestDelayRunsOnce(t *testing.T) {
	s := newTestScheduler(t, Settings{Workers: 1, StopTimeout: time.Second})

	var runs atomic.Int32
	require.NoError(t, s.Delay("summary", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("logged, not fatal")
	}))
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestStopDrainsRunningJob(t *testing.T) {
	s := newTestScheduler(t, Settings{Workers: 1, StopTimeout: 2 * time.Second})

	started := make(chan struct{})
	var finished, cancelledEarly atomic.Bool
	require.NoError(t, s.Every("drain", time.Hour, func(ctx context.Context) error {
		close(started)
		time.Sleep(100 * time.Millisecond)
		cancelledEarly.Store(ctx.Err() != nil)
		finished.Store(true)
		return nil
	}))
	s.Start()

	<-started
	require.NoError(t, s.Stop())
	assert.True(t, finished.Load())
	assert.False(t, cancelledEarly.Load())
}

func TestStopCancelsJobsPastTimeout(t *testing.T) {
	s := newTestScheduler(t, Settings{Workers: 1, StopTimeout: 50 * time.Millisecond})

	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, s.Every("stuck", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))
	s.Start()

	<-started
	require.NoError(t, s.Stop())

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("stuck job was not cancelled")
	}
}
