package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babble/internal/markov"
)

func countingBuild(calls *atomic.Int32) BuildFunc {
	return func(ctx context.Context, key string) (*markov.Chain, error) {
		calls.Add(1)
		return markov.BuildChain([]string{"hello big world " + key}, 3), nil
	}
}

func TestGetCachesUntilTTL(t *testing.T) {
	var calls atomic.Int32
	c := New(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	first, hit, err := c.Get(context.Background(), "g", countingBuild(&calls))
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.Get(context.Background(), "g", countingBuild(&calls))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second)

	now = now.Add(2 * time.Minute)
	_, hit, err = c.Get(context.Background(), "g", countingBuild(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int32(2), calls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(2), stats.Builds)
	assert.Equal(t, 1, stats.Entries)
}

func TestInvalidateDropsScopeAndGlobal(t *testing.T) {
	var calls atomic.Int32
	c := New(time.Minute)
	ctx := context.Background()

	for _, k := range []string{"a", "b", GlobalKey} {
		_, _, err := c.Get(ctx, k, countingBuild(&calls))
		require.NoError(t, err)
	}
	c.Invalidate("a")

	_, hit, _ := c.Get(ctx, "a", countingBuild(&calls))
	assert.False(t, hit)
	_, hit, _ = c.Get(ctx, GlobalKey, countingBuild(&calls))
	assert.False(t, hit)
	_, hit, _ = c.Get(ctx, "b", countingBuild(&calls))
	assert.True(t, hit)
}

func TestGetSharesConcurrentBuilds(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	build := func(ctx context.Context, key string) (*markov.Chain, error) {
		calls.Add(1)
		<-release
		return markov.BuildChain([]string{"a b c"}, 3), nil
	}
	c := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Get(context.Background(), GlobalKey, build)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute)
	boom := errors.New("db down")
	_, _, err := c.Get(context.Background(), "g", func(context.Context, string) (*markov.Chain, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Stats().Entries)
}

func TestBuildRacingInvalidateIsNotStored(t *testing.T) {
	c := New(time.Minute)
	build := func(ctx context.Context, key string) (*markov.Chain, error) {
		c.Invalidate(key)
		return markov.BuildChain([]string{"a b c"}, 3), nil
	}

	chain, _, err := c.Get(context.Background(), "g", build)
	require.NoError(t, err)
	assert.NotNil(t, chain)
	assert.Zero(t, c.Stats().Entries)
}

func blockingBuild(calls *atomic.Int32, started, release chan struct{}) BuildFunc {
	return func(ctx context.Context, key string) (*markov.Chain, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return markov.BuildChain([]string{fmt.Sprintf("build %d for %s", n, key)}, 3), nil
	}
}

func TestCancelledCallerDoesNotFailSharedBuild(t *testing.T) {
	var calls atomic.Int32
	started, release := make(chan struct{}), make(chan struct{})
	build := blockingBuild(&calls, started, release)
	c := New(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := c.Get(ctx, "g", build)
		first <- err
	}()
	<-started

	type result struct {
		chain *markov.Chain
		err   error
	}
	second := make(chan result, 1)
	go func() {
		chain, _, err := c.Get(context.Background(), "g", build)
		second <- result{chain, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)
	close(release)

	got := <-second
	require.NoError(t, got.err)
	require.NotNil(t, got.chain)

	_, hit, err := c.Get(context.Background(), "g", build)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestGetAfterInvalidateDoesNotJoinStaleBuild(t *testing.T) {
	var calls atomic.Int32
	started, release := make(chan struct{}), make(chan struct{})
	build := blockingBuild(&calls, started, release)
	c := New(time.Minute)

	stale := make(chan *markov.Chain, 1)
	go func() {
		chain, _, _ := c.Get(context.Background(), "g", build)
		stale <- chain
	}()
	<-started

	c.Invalidate("g")
	fresh, hit, err := c.Get(context.Background(), "g", build)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"build 2 for g"}, fresh.Entries)

	close(release)
	assert.Equal(t, []string{"build 1 for g"}, (<-stale).Entries)

	cached, hit, err := c.Get(context.Background(), "g", build)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, fresh, cached)
}
