package future

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedFuture(t *testing.T) {
	f := NewCompleted(42)
	assert.True(t, f.IsResultReady())
	v, err := f.WaitForResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPollingFutureResolvesOnceReady(t *testing.T) {
	ready := false
	go func() {
		time.Sleep(20 * time.Millisecond)
		ready = true
	}()
	f := NewPolling(func() bool { return ready }, func() any { return "done" }, 5*time.Millisecond)
	assert.False(t, f.IsResultReady())
	v, err := f.WaitForResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestPollingFutureRespectsContextCancellation(t *testing.T) {
	f := NewPolling(func() bool { return false }, func() any { return nil }, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	_, err := f.WaitForResult(ctx)
	require.Error(t, err)
}
