package markov

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

type RelatedRequest struct {
	Scope     string
	Seed      string
	WordLimit int
	Hints     []string
}

type keyword struct {
	term   string
	weight float64
}

type scoredEntry struct {
	index int
	score float64
}

// GenerateRelated builds a chain over corpus and delegates to
// GenerateRelatedFrom.
func (g *Generator) GenerateRelated(corpus []string, req RelatedRequest, mem Memory) Result {
	return g.GenerateRelatedFrom(BuildChain(corpus, g.cfg.Order), req, mem)
}

// GenerateRelatedFrom generates from the entries of global most related to
// req.Seed. No returned text equals one of those entries, whichever strategy
// produced it. When the related subset is too small or yields nothing
// acceptable, it falls back to generating over global.
func (g *Generator) GenerateRelatedFrom(global *Chain, req RelatedRequest, mem Memory) Result {
	if global == nil || len(global.Entries) < g.cfg.MinCorpus {
		return Result{Strategy: StrategyNone}
	}
	base := Request{Scope: req.Scope, WordLimit: req.WordLimit, Hints: req.Hints}

	sub := g.SelectRelated(global.Entries, req.Seed)
	var inSub func(string) bool
	if len(sub) > 0 {
		set := toSet(sub)
		inSub = func(text string) bool {
			_, ok := set[text]
			return ok
		}
	}
	if len(sub) >= g.cfg.MinSubCorpus {
		subChain := BuildChain(sub, g.cfg.Order)
		if !subChain.Empty() {
			limit := g.wordLimit(req.WordLimit)
			hints := normalizeHints(req.Hints)
			total := 0
			for run := 0; run < g.cfg.RelatedAttempts; run++ {
				text, _, attempts := g.tryChain(subChain, base, mem, limit, hints, inSub)
				total += attempts
				if text == "" {
					continue
				}
				remember(mem, req.Scope, text)
				g.logger.Debug("markov related", "scope", req.Scope, "sub_corpus", len(sub), "attempts", total)
				return Result{Text: text, Strategy: StrategyChain, Attempts: total, Related: true, SubCorpus: len(sub)}
			}
		}
	}

	g.logger.Debug("markov related fallback", "scope", req.Scope, "sub_corpus", len(sub))
	res := g.generate(global, base, mem, inSub)
	res.SubCorpus = len(sub)
	return res
}

// SelectRelated ranks corpus entries against seed and returns up to
// Config.RelatedTopK of them, best first. Ties keep corpus order.
func (g *Generator) SelectRelated(corpus []string, seed string) []string {
	seedTokens := g.keywordTokens(seed)
	if len(seedTokens) == 0 {
		return nil
	}
	order, seedShingles := backoffShingles(seedTokens)

	docs := make([]map[string]struct{}, len(corpus))
	tokens := make([][]string, len(corpus))
	df := map[string]int{}
	for i, entry := range corpus {
		tokens[i] = g.keywordTokens(entry)
		docs[i] = toSet(tokens[i])
		for w := range docs[i] {
			df[w]++
		}
	}

	keywords := g.selectKeywords(seedTokens, df, len(corpus))
	kwScores := make([]float64, len(corpus))
	hits := 0
	for i, doc := range docs {
		for _, kw := range keywords {
			if _, ok := doc[kw.term]; ok {
				kwScores[i] += kw.weight
			}
		}
		if kwScores[i] > 0 {
			hits++
		}
	}
	widen := hits < g.cfg.WidenBelow

	var ranked []scoredEntry
	for i := range corpus {
		if kwScores[i] == 0 && !widen {
			continue
		}
		sim := jaccard(shingleSet(tokens[i], order), seedShingles)
		score := kwScores[i] + g.cfg.SimilarityWeight*sim
		if score <= 0 {
			continue
		}
		ranked = append(ranked, scoredEntry{index: i, score: score})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	limit := min(g.cfg.RelatedTopK, len(ranked))
	out := make([]string, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, strings.TrimSpace(corpus[r.index]))
	}
	return out
}

// selectKeywords weights each distinct seed token by inverse document
// frequency with a mild bonus for longer tokens and keeps the best ones that
// occur in the corpus at all.
func (g *Generator) selectKeywords(seedTokens []string, df map[string]int, total int) []keyword {
	seen := map[string]struct{}{}
	var out []keyword
	for _, t := range seedTokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		freq := df[t]
		if freq == 0 {
			continue
		}
		idf := math.Log(float64(1+total)/float64(1+freq)) + 1
		extra := max(0, min(utf8.RuneCountInString(t)-3, 6))
		out = append(out, keyword{term: t, weight: idf * (1 + 0.05*float64(extra))})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].weight > out[b].weight })
	if len(out) > g.cfg.RelatedKeywords {
		out = out[:g.cfg.RelatedKeywords]
	}
	return out
}
