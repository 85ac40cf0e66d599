package markov

import "strings"

// KeyMatchesAnyHint reports whether key contains any of hints as a
// case-insensitive substring. Empty hints never match.
func KeyMatchesAnyHint(key string, hints []string) bool {
	if len(hints) == 0 {
		return false
	}
	lower := strings.ToLower(key)
	for _, h := range hints {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// SelectStart returns a stitched start when one exists, else a plain start.
func (g *Generator) SelectStart(c *Chain, hints []string) string {
	if key := g.StitchedStart(c, hints); key != "" {
		return key
	}
	return g.PlainStart(c, hints)
}

type prefixGroup struct {
	prefix   string
	variants []string
	seen     map[string]struct{}
	hasHint  bool
}

// StitchedStart groups start keys by their leading Order-2 tokens and, for a
// prefix observed with at least two distinct continuations, joins the prefix
// with an alternate continuation. It returns "" when no prefix qualifies.
func (g *Generator) StitchedStart(c *Chain, hints []string) string {
	if c.Empty() {
		return ""
	}
	keys := c.StartKeys
	if len(keys) == 0 {
		keys = c.keys
	}
	prefixLen := c.PrefixLen()
	groupLen := max(1, prefixLen-1)

	groups := map[string]*prefixGroup{}
	var order []*prefixGroup
	for _, key := range keys {
		parts := strings.Fields(key)
		if len(parts) < prefixLen || groupLen >= len(parts) {
			continue
		}
		prefix := strings.Join(parts[:groupLen], " ")
		variant := parts[groupLen]

		grp, ok := groups[prefix]
		if !ok {
			grp = &prefixGroup{prefix: prefix, seen: map[string]struct{}{}}
			groups[prefix] = grp
			order = append(order, grp)
		}
		if _, dup := grp.seen[variant]; !dup {
			grp.seen[variant] = struct{}{}
			grp.variants = append(grp.variants, variant)
		}
		if KeyMatchesAnyHint(key, hints) {
			grp.hasHint = true
		}
	}

	var candidates, hinted []*prefixGroup
	for _, grp := range order {
		if len(grp.variants) < 2 {
			continue
		}
		candidates = append(candidates, grp)
		if grp.hasHint {
			hinted = append(hinted, grp)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	pool := candidates
	if len(hinted) > 0 {
		pool = hinted
	}
	grp := pool[g.rng.IntN(len(pool))]

	preferred := grp.variants
	if matching := variantsMatching(grp, hints); len(matching) > 0 {
		preferred = matching
	}
	second := g.pick(preferred)
	others := make([]string, 0, len(grp.variants)-1)
	for _, v := range grp.variants {
		if v != second {
			others = append(others, v)
		}
	}
	first := g.pick(others)

	key := strings.TrimSpace(grp.prefix + " " + second)
	if _, ok := c.Next[key]; !ok {
		return ""
	}
	g.logger.Debug("stitched start", "prefix", grp.prefix, "replaced", first, "variant", second)
	return key
}

func variantsMatching(grp *prefixGroup, hints []string) []string {
	if len(hints) == 0 || !grp.hasHint {
		return nil
	}
	var out []string
	for _, v := range grp.variants {
		if KeyMatchesAnyHint(grp.prefix+" "+v, hints) {
			out = append(out, v)
		}
	}
	return out
}

// PlainStart picks uniformly from the observed start keys, preferring keys
// that match a hint, and falls back to any key of the chain.
func (g *Generator) PlainStart(c *Chain, hints []string) string {
	if c.Empty() {
		return ""
	}
	if len(c.StartKeys) > 0 {
		key := g.pickPreferring(c.StartKeys, hints)
		if _, ok := c.Next[key]; ok {
			return key
		}
	}
	if len(c.keys) > 0 {
		key := g.pickPreferring(c.keys, hints)
		if _, ok := c.Next[key]; ok {
			return key
		}
	}
	return ""
}

func (g *Generator) pickPreferring(keys []string, hints []string) string {
	if len(hints) > 0 {
		var matching []string
		for _, k := range keys {
			if KeyMatchesAnyHint(k, hints) {
				matching = append(matching, k)
			}
		}
		if len(matching) > 0 {
			return g.pick(matching)
		}
	}
	return g.pick(keys)
}
