// Package cache keeps recently built chains so a burst of requests does not
// rebuild the same table over and over.
package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"babble/internal/markov"
)

// GlobalKey names the chain built over every scope.
const GlobalKey = "*"

const DefaultTTL = 30 * time.Second

// BuildFunc loads the corpus for key and builds its chain.
type BuildFunc func(ctx context.Context, key string) (*markov.Chain, error)

type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Builds  int64 `json:"builds"`
}

type entry struct {
	chain   *markov.Chain
	builtAt time.Time
	// gen is the invalidation generation the build started under.
	gen uint64
}

// ChainCache is a TTL cache of chains keyed by scope. Entries are dropped on
// Invalidate and after the TTL. A build that raced an Invalidate is returned
// to its callers but not stored.
type ChainCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
	gens    map[string]uint64
	flight  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	builds atomic.Int64
}

func New(ttl time.Duration) *ChainCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ChainCache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]entry{},
		gens:    map[string]uint64{},
	}
}

// Get returns the cached chain for key, building it with build on a miss.
// Concurrent misses on the same key and invalidation generation share one
// build. The build runs detached from ctx, so a cancelled caller only stops
// its own wait.
func (c *ChainCache) Get(ctx context.Context, key string, build BuildFunc) (*markov.Chain, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	gen := c.gens[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.builtAt) < c.ttl {
		c.hits.Add(1)
		return e.chain, true, nil
	}
	c.misses.Add(1)

	buildCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		chain, err := build(buildCtx, key)
		if err != nil {
			return nil, err
		}
		c.builds.Add(1)
		c.mu.Lock()
		if c.gens[key] == gen {
			c.entries[key] = entry{chain: chain, builtAt: c.now(), gen: gen}
		}
		c.mu.Unlock()
		return chain, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*markov.Chain), false, nil
	}
}

// Invalidate drops key and the global chain, which contains every scope.
func (c *ChainCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range []string{key, GlobalKey} {
		delete(c.entries, k)
		c.gens[k]++
	}
}

func (c *ChainCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		delete(c.entries, k)
		c.gens[k]++
	}
}

func (c *ChainCache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Entries: n,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Builds:  c.builds.Load(),
	}
}
