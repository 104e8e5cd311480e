package motion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQueuePushRequiresRunning(t *testing.T) {
	q := NewQueue(zap.NewNop())

	_, err := q.Push("rapid", 10*time.Millisecond)
	assert.Error(t, err)

	q.Start()
	defer q.Stop()

	seg, err := q.Push("rapid", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "rapid", seg.Name)
	assert.NotEqual(t, uuid.Nil, seg.ID)
}

func TestQueueWaitIdleBlocksUntilConsumed(t *testing.T) {
	q := NewQueue(zap.NewNop())
	q.Start()
	defer q.Stop()

	_, err := q.Push("feed", 30*time.Millisecond)
	require.NoError(t, err)
	_, err = q.Push("feed", 30*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	q.WaitIdle()
	elapsed := time.Since(start)

	// both segments must have run to completion first
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.True(t, q.Idle())
	assert.Equal(t, 0, q.Depth())
}

func TestQueueWaitIdleImmediateWhenEmpty(t *testing.T) {
	q := NewQueue(zap.NewNop())
	q.Start()
	defer q.Stop()

	done := make(chan struct{})
	go func() {
		q.WaitIdle()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitIdle did not return on an empty queue")
	}
}

func TestQueueDepth(t *testing.T) {
	q := NewQueue(zap.NewNop())
	q.Start()
	defer q.Stop()

	_, err := q.Push("a", 50*time.Millisecond)
	require.NoError(t, err)
	_, err = q.Push("b", 50*time.Millisecond)
	require.NoError(t, err)

	// the first segment may already be in flight
	assert.LessOrEqual(t, q.Depth(), 2)
	assert.False(t, q.Idle())

	q.WaitIdle()
	assert.Equal(t, 0, q.Depth())
}

func TestQueueStopIdempotent(t *testing.T) {
	q := NewQueue(zap.NewNop())
	q.Start()
	q.Stop()
	q.Stop()

	_, err := q.Push("late", time.Millisecond)
	assert.Error(t, err)
}
