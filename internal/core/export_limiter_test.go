package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLimiter_AcquireRelease(t *testing.T) {
	l := NewExportLimiter(2, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, 2, l.ActiveCount())
	assert.Equal(t, 0, l.Available())
	assert.False(t, l.TryAcquire())

	l.Release()
	l.Release()
	assert.Equal(t, ExportLimiterStatus{Active: 0, Available: 2, MaxConcurrent: 2}, l.Status())
}

func TestExportLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewExportLimiter(1, 30*time.Millisecond)
	require.True(t, l.TryAcquire())
	defer l.Release()

	start := time.Now()
	err := l.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrTooManyExports)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 1, l.ActiveCount())
}

func TestExportLimiter_CallerCancel(t *testing.T) {
	l := NewExportLimiter(1, 5*time.Second)
	require.True(t, l.TryAcquire())
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTooManyExports)
}

func TestExportLimiter_NeverExceedsCap(t *testing.T) {
	const limit = 3
	l := NewExportLimiter(limit, time.Second)

	var peak, running atomic.Int64
	var wg sync.WaitGroup
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				return
			}
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			l.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(limit))
	assert.Zero(t, l.ActiveCount())
}

func TestExportLimiter_WaitForDrain(t *testing.T) {
	l := NewExportLimiter(2, time.Second)
	require.True(t, l.TryAcquire())

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned with an export running")
	case <-time.After(30 * time.Millisecond):
	}

	l.Release()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}
	assert.Equal(t, 2, l.Available())
}

func TestExportLimiter_WaitForDrainHonoursContext(t *testing.T) {
	l := NewExportLimiter(1, time.Second)
	require.True(t, l.TryAcquire())
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.WaitForDrain(ctx), context.DeadlineExceeded)
}

func TestExportLimiter_Defaults(t *testing.T) {
	l := NewExportLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentExports, l.MaxConcurrent())
	assert.Equal(t, DefaultMaxWaitTime, l.maxWait)
}
