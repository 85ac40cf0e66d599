// Package markov generates short sentences from word-level n-gram statistics
// learned over a corpus of chat-sized text entries.
package markov

import "strings"

// Chain is an n-gram transition table.
//
// Next maps a key of Order-1 space-joined tokens to every token observed
// after it. The list is a multiset: a token seen k times appears k times, and
// sampling uniformly from the list is sampling weighted by observed frequency.
// Do not collapse it into distinct tokens.
type Chain struct {
	Order     int
	Next      map[string][]string
	StartKeys []string
	// Entries are the trimmed, non-empty source entries in corpus order.
	Entries []string

	keys    []string
	entries map[string]struct{}
}

// BuildChain converts corpus into a transition table for the given order.
// Entries with fewer than order tokens contribute to Entries but not to the
// table. An order below 2 is treated as 2.
func BuildChain(corpus []string, order int) *Chain {
	if order < 2 {
		order = 2
	}
	prefixLen := order - 1
	c := &Chain{
		Order:   order,
		Next:    map[string][]string{},
		entries: map[string]struct{}{},
	}

	for _, text := range corpus {
		normalized := strings.TrimSpace(text)
		if normalized == "" {
			continue
		}
		c.Entries = append(c.Entries, normalized)
		c.entries[normalized] = struct{}{}

		words := strings.Fields(normalized)
		if len(words) < order {
			continue
		}
		c.StartKeys = append(c.StartKeys, strings.Join(words[:prefixLen], " "))

		for i := 0; i+order <= len(words); i++ {
			key := strings.Join(words[i:i+prefixLen], " ")
			if _, ok := c.Next[key]; !ok {
				c.keys = append(c.keys, key)
			}
			c.Next[key] = append(c.Next[key], words[i+prefixLen])
		}
	}

	return c
}

// Empty reports whether the chain has no transitions.
func (c *Chain) Empty() bool {
	return c == nil || len(c.Next) == 0
}

// PrefixLen is the number of tokens in a key.
func (c *Chain) PrefixLen() int {
	return c.Order - 1
}

// Keys returns every key in first-seen order.
func (c *Chain) Keys() []string {
	return c.keys
}

// Contains reports whether text is verbatim one of the source entries.
func (c *Chain) Contains(text string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[strings.TrimSpace(text)]
	return ok
}
