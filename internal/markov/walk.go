package markov

import "strings"

// Walk extends a start key token by token until wordLimit tokens, a dead end
// with no hops left, or a tail loop. It returns "" when no start key exists.
func (g *Generator) Walk(c *Chain, wordLimit int, hints []string) string {
	return strings.Join(g.walk(c, wordLimit, hints), " ")
}

func (g *Generator) walk(c *Chain, limit int, hints []string) []string {
	if c.Empty() || limit <= 0 {
		return nil
	}
	start := g.SelectStart(c, hints)
	if start == "" {
		return nil
	}

	result := strings.Fields(start)
	prefixLen := c.PrefixLen()
	recent := newPairWindow(g.cfg.PairWindow)
	hops := 0

	for len(result) < limit {
		key := strings.Join(result[len(result)-prefixLen:], " ")
		next := c.Next[key]

		if len(next) == 0 {
			if hops >= g.cfg.MaxHops {
				break
			}
			jump := g.SelectStart(c, hints)
			if jump == "" {
				break
			}
			result = appendJump(result, strings.Fields(jump), limit)
			hops++
			if g.tailLoops(result) {
				break
			}
			continue
		}

		prev := result[len(result)-1]
		token := g.pickNext(next, prev, recent)
		result = append(result, token)
		recent.add(prev, token)
		if g.tailLoops(result) {
			break
		}
	}

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (g *Generator) tailLoops(tokens []string) bool {
	return HasTailLoop(tokens, g.cfg.MinLoopBlock, g.cfg.LoopWindow)
}

// pickNext samples from the multiset and resamples a bounded number of times
// while the sample repeats the previous token or a recent transition and a
// different token is available.
func (g *Generator) pickNext(next []string, prev string, recent *pairWindow) string {
	token := g.pick(next)
	for attempt := 0; attempt < g.cfg.MaxRepeatAttempts; attempt++ {
		if token != prev && !recent.contains(prev, token) {
			break
		}
		if !hasAlternative(next, token) {
			break
		}
		token = g.pick(next)
	}
	return token
}

func hasAlternative(list []string, token string) bool {
	for _, t := range list {
		if t != token {
			return true
		}
	}
	return false
}

// appendJump appends a new start segment, dropping its first token when it
// would double the current last token at the seam.
func appendJump(result, jump []string, limit int) []string {
	remaining := limit - len(result)
	if remaining <= 0 || len(jump) == 0 {
		return result
	}
	if len(result) > 0 && jump[0] == result[len(result)-1] {
		jump = jump[1:]
	}
	if len(jump) > remaining {
		jump = jump[:remaining]
	}
	return append(result, jump...)
}

type transition struct {
	prev, next string
}

// pairWindow remembers the last size transitions of a walk.
type pairWindow struct {
	size  int
	items []transition
}

func newPairWindow(size int) *pairWindow {
	return &pairWindow{size: size}
}

func (w *pairWindow) add(prev, next string) {
	if w.size <= 0 {
		return
	}
	w.items = append(w.items, transition{prev: prev, next: next})
	if len(w.items) > w.size {
		w.items = w.items[1:]
	}
}

func (w *pairWindow) contains(prev, next string) bool {
	for _, t := range w.items {
		if t.prev == prev && t.next == next {
			return true
		}
	}
	return false
}
