package markov

import (
	"strings"
	"unicode/utf8"
)

// Strategy tags how a Result was produced so callers can adapt delivery.
type Strategy string

const (
	StrategyChain Strategy = "chain"
	// StrategyFallbackCandidate is the last walk output after every attempt
	// was rejected by a filter.
	StrategyFallbackCandidate Strategy = "fallback-candidate"
	StrategyFallbackEntry     Strategy = "fallback-entry"
	StrategyFallbackWord      Strategy = "fallback-word"
	StrategyNone              Strategy = "none"
)

type Result struct {
	Text     string   `json:"text"`
	Strategy Strategy `json:"strategy"`
	Attempts int      `json:"attempts"`
	// Related is set when the text came from a seed-related sub-corpus.
	Related   bool `json:"related"`
	SubCorpus int  `json:"sub_corpus,omitempty"`
}

func (r Result) OK() bool {
	return r.Text != ""
}

// Memory is the scoped recent-output store consulted and updated by the
// controller. Implementations must be safe for concurrent use.
type Memory interface {
	Seen(scope, text string) bool
	Remember(scope, text string)
}

type Request struct {
	Scope     string
	WordLimit int
	Hints     []string
	// RequireLooksGood demands a minimum word count and terminal punctuation,
	// and enables the corpus entry and corpus word fallback tiers.
	RequireLooksGood bool
}

// GenerateSentence runs up to Config.Attempts walks over c and returns the
// first candidate that passes every filter. See Strategy for the fallback
// tiers used when none does.
func (g *Generator) GenerateSentence(c *Chain, req Request, mem Memory) Result {
	return g.generate(c, req, mem, nil)
}

// generate is GenerateSentence with an extra exclusion: no text for which
// exclude reports true is returned, fallback tiers included.
func (g *Generator) generate(c *Chain, req Request, mem Memory, exclude func(string) bool) Result {
	if !g.usable(c) {
		return Result{Strategy: StrategyNone}
	}
	limit := g.wordLimit(req.WordLimit)
	hints := normalizeHints(req.Hints)

	text, last, attempts := g.tryChain(c, req, mem, limit, hints, exclude)
	if text != "" {
		remember(mem, req.Scope, text)
		g.logger.Debug("markov generated", "scope", req.Scope, "entries", len(c.Entries), "order", c.Order, "attempts", attempts)
		return Result{Text: text, Strategy: StrategyChain, Attempts: attempts}
	}
	res := g.fallback(c, req, mem, last, exclude)
	res.Attempts = attempts
	g.logger.Debug("markov fallback", "scope", req.Scope, "strategy", string(res.Strategy), "attempts", attempts)
	return res
}

func (g *Generator) usable(c *Chain) bool {
	return c != nil && len(c.Entries) >= g.cfg.MinCorpus && !c.Empty()
}

// tryChain returns the accepted text, or "" plus the last non-empty candidate
// that reject did not refuse.
func (g *Generator) tryChain(c *Chain, req Request, mem Memory, limit int, hints []string, reject func(string) bool) (accepted, last string, attempts int) {
	for attempts < g.cfg.Attempts {
		attempts++
		tokens := g.walk(c, limit, hints)
		if len(tokens) == 0 {
			continue
		}
		text := strings.Join(tokens, " ")
		if reject == nil || !reject(text) {
			last = text
		}
		if reason := g.rejectReason(c, req, mem, tokens, text, reject); reason != "" {
			g.logger.Debug("markov candidate rejected", "scope", req.Scope, "attempt", attempts, "reason", reason)
			continue
		}
		return text, last, attempts
	}
	return "", last, attempts
}

func (g *Generator) rejectReason(c *Chain, req Request, mem Memory, tokens []string, text string, reject func(string) bool) string {
	switch {
	case mem != nil && mem.Seen(req.Scope, text):
		return "recent"
	case IsDegenerate(tokens, g.cfg.MinLoopBlock, g.cfg.LoopWindow):
		return "loop"
	case g.cfg.AvoidCopies && c.Contains(text):
		return "copy"
	case reject != nil && reject(text):
		return "source"
	case req.RequireLooksGood && !g.looksGood(tokens):
		return "looks-bad"
	}
	return ""
}

func (g *Generator) fallback(c *Chain, req Request, mem Memory, last string, exclude func(string) bool) Result {
	if !req.RequireLooksGood {
		if last != "" {
			remember(mem, req.Scope, last)
			return Result{Text: last, Strategy: StrategyFallbackCandidate}
		}
		if exclude == nil {
			return Result{Strategy: StrategyNone}
		}
	} else if entry := g.randomEntry(c, req.Scope, mem, exclude); entry != "" {
		remember(mem, req.Scope, entry)
		return Result{Text: entry, Strategy: StrategyFallbackEntry}
	}
	if word := g.randomWord(c, exclude); word != "" {
		remember(mem, req.Scope, word)
		return Result{Text: word, Strategy: StrategyFallbackWord}
	}
	return Result{Strategy: StrategyNone}
}

// randomEntry picks an unseen source entry, preferring ones that look good.
func (g *Generator) randomEntry(c *Chain, scope string, mem Memory, exclude func(string) bool) string {
	var good, rest []string
	for _, e := range c.Entries {
		if mem != nil && mem.Seen(scope, e) || exclude != nil && exclude(e) {
			continue
		}
		if g.looksGood(strings.Fields(e)) {
			good = append(good, e)
		} else {
			rest = append(rest, e)
		}
	}
	if len(good) > 0 {
		return g.pick(good)
	}
	return g.pick(rest)
}

func (g *Generator) randomWord(c *Chain, exclude func(string) bool) string {
	var words []string
	for _, e := range c.Entries {
		for _, w := range strings.Fields(e) {
			if exclude == nil || !exclude(w) {
				words = append(words, w)
			}
		}
	}
	return g.pick(words)
}

const terminalPunctuation = ".!?؟…"

func (g *Generator) looksGood(tokens []string) bool {
	if len(tokens) < g.cfg.LooksGoodMinWords || len(tokens) == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(tokens[len(tokens)-1])
	return strings.ContainsRune(terminalPunctuation, r)
}

func (g *Generator) wordLimit(requested int) int {
	if requested <= 0 {
		requested = g.cfg.DefaultWords
	}
	return min(requested, g.cfg.MaxWords)
}

func remember(mem Memory, scope, text string) {
	if mem != nil && text != "" {
		mem.Remember(scope, text)
	}
}

func normalizeHints(hints []string) []string {
	if len(hints) == 0 {
		return nil
	}
	out := make([]string, 0, len(hints))
	seen := map[string]struct{}{}
	for _, h := range hints {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
