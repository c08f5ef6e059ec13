package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	calls atomic.Int32
	err   error
}

func (c *countingCache) CleanExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestIdempotencySweeper_RunsUntilCancelled(t *testing.T) {
	cache := &countingCache{}
	sweeper := NewIdempotencySweeper(cache, slog.Default(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return cache.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestIdempotencySweeper_KeepsGoingOnError(t *testing.T) {
	cache := &countingCache{err: errors.New("db down")}
	sweeper := NewIdempotencySweeper(cache, slog.Default(), time.Hour)

	sweeper.sweep(context.Background())
	sweeper.sweep(context.Background())

	assert.Equal(t, int32(2), cache.calls.Load())
}
