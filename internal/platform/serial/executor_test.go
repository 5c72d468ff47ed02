package serial

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_JobsNeverOverlap(t *testing.T) {
	e := NewExecutor()
	defer e.Close()

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					m := atomic.LoadInt32(&maxRunning)
					if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
						break
					}
				}
				atomic.AddInt32(&running, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestExecutor_ReturnsJobError(t *testing.T) {
	e := NewExecutor()
	defer e.Close()

	err := e.Do(context.Background(), func(ctx context.Context) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestExecutor_CancelledContextSkipsJob(t *testing.T) {
	e := NewExecutor()
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := e.Do(ctx, func(ctx context.Context) error { ran = true; return nil })
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestExecutor_DoAfterClose(t *testing.T) {
	e := NewExecutor()
	e.Close()

	err := e.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestExecutor_NestedDoRunsInline(t *testing.T) {
	e := NewExecutor()
	defer e.Close()
	other := NewExecutor()
	defer other.Close()

	var steps []string
	err := e.Do(context.Background(), func(ctx context.Context) error {
		steps = append(steps, "outer")
		if err := e.Do(ctx, func(ctx context.Context) error {
			steps = append(steps, "inner")
			return nil
		}); err != nil {
			return err
		}
		return other.Do(ctx, func(ctx context.Context) error {
			steps = append(steps, "other")
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "other"}, steps)
}

func TestExecutor_NestedDoRunsBeforeQueuedJobs(t *testing.T) {
	e := NewExecutor()
	defer e.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	outerDone := make(chan error, 1)
	go func() {
		outerDone <- e.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return e.Do(ctx, func(ctx context.Context) error {
				record("nested")
				return nil
			})
		})
	}()
	<-started

	queuedDone := make(chan error, 1)
	go func() {
		queuedDone <- e.Do(context.Background(), func(ctx context.Context) error {
			record("queued")
			return nil
		})
	}()
	close(release)

	require.NoError(t, <-outerDone)
	require.NoError(t, <-queuedDone)
	assert.Equal(t, []string{"nested", "queued"}, order)
}
