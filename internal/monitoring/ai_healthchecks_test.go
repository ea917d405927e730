package monitoring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorTracksProbe(t *testing.T) {
	var up atomic.Bool
	up.Store(false)

	healthy := &atomic.Bool{}
	healthy.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor(ctx, "test", healthy, func(context.Context) bool { return up.Load() }, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return !healthy.Load() }, time.Second, time.Millisecond)
	up.Store(true)
	require.Eventually(t, healthy.Load, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	assert.True(t, healthy.Load())
}
