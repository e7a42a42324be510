package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	err := c.AcquireMemory(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	err = c.AcquireMemory(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// TryAcquire 20 (should fail)
	ok := c.TryAcquireMemory(20)
	assert.False(t, ok)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should block/timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = c.AcquireMemory(ctx, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	err = c.AcquireMemory(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(90), c.PeakMemoryUsage())
}

func TestController_OverBudget(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	err := c.AcquireMemory(context.Background(), 101)
	assert.ErrorIs(t, err, ErrOverBudget)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, 2, c.Workers())

	// Acquire 2
	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireWorker(context.Background()))

	// Try 3rd
	assert.False(t, c.TryAcquireWorker())

	// Release 1
	c.ReleaseWorker()

	// Try 3rd again
	assert.True(t, c.TryAcquireWorker())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.Equal(t, 1, c.Workers())
	assert.NoError(t, c.AcquireMemory(context.Background(), 1<<40))
	c.ReleaseMemory(1 << 40)
	assert.NoError(t, c.AcquireWorker(context.Background()))
	c.ReleaseWorker()
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<20))
	assert.Equal(t, 0, c.IOBurst())
}

func TestRateLimitedIO(t *testing.T) {
	ctx := context.Background()

	// Unlimited controllers return the stream unchanged.
	var sink bytes.Buffer
	assert.Same(t, &sink, NewRateLimitedWriter(ctx, &sink, NewController(Config{})))

	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	w := NewRateLimitedWriter(ctx, &sink, c)
	payload := []byte(strings.Repeat("x", 3<<20/2))
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	r := NewRateLimitedReader(ctx, bytes.NewReader(sink.Bytes()), c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, len(payload), len(got))
}

func TestRateLimitedIO_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewController(Config{IOLimitBytesPerSec: 16})
	w := NewRateLimitedWriter(ctx, io.Discard, c)
	_, err := w.Write(make([]byte, 64))
	assert.ErrorIs(t, err, context.Canceled)
}
