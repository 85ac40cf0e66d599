// Package hints derives topic words from recent chat texts.
package hints

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

const DefaultMax = 5

// FromTexts returns up to max of the most frequent words across texts. Ties
// keep first appearance order.
func FromTexts(texts []string, max int) []string {
	if len(texts) == 0 || max <= 0 {
		return nil
	}
	counts := map[string]int{}
	var order []string
	for _, raw := range strings.Fields(strings.ToLower(strings.Join(texts, " "))) {
		if strings.HasPrefix(raw, "@") || strings.HasPrefix(raw, "http") || strings.HasPrefix(raw, "www") {
			continue
		}
		w := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				return r
			}
			return -1
		}, raw)
		if utf8.RuneCountInString(w) < 3 {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > max {
		order = order[:max]
	}
	return order
}

// Merge unions a and b, keeping order and dropping duplicates, capped at max.
func Merge(a, b []string, max int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, h := range list {
			h = strings.ToLower(strings.TrimSpace(h))
			if h == "" {
				continue
			}
			if _, ok := seen[h]; ok {
				continue
			}
			if max > 0 && len(out) >= max {
				return out
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}

// Tracker keeps the last few texts seen in each scope.
type Tracker struct {
	mu       sync.Mutex
	size     int
	maxHints int
	texts    map[string][]string
}

func NewTracker(size, maxHints int) *Tracker {
	if size <= 0 {
		size = 20
	}
	if maxHints <= 0 {
		maxHints = DefaultMax
	}
	return &Tracker{size: size, maxHints: maxHints, texts: map[string][]string{}}
}

func (t *Tracker) Add(scope, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := append(t.texts[scope], text)
	if len(buf) > t.size {
		buf = buf[len(buf)-t.size:]
	}
	t.texts[scope] = buf
}

// Hints derives topic words from the buffered texts of scope.
func (t *Tracker) Hints(scope string) []string {
	t.mu.Lock()
	buf := append([]string(nil), t.texts[scope]...)
	t.mu.Unlock()
	return FromTexts(buf, t.maxHints)
}

func (t *Tracker) MaxHints() int {
	return t.maxHints
}
