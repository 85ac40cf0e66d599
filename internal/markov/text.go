package markov

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var stopwords = toSet([]string{
	// English
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was", "one", "our",
	"out", "has", "him", "his", "how", "its", "may", "who", "did", "get", "got", "let", "she", "too", "use",
	"that", "this", "with", "from", "have", "they", "will", "your", "what", "when", "were", "there", "their",
	"been", "into", "just", "than", "then", "them", "some", "would", "could", "about", "which", "also",
	// Persian
	"از", "به", "با", "در", "که", "این", "آن", "را", "هم", "تا", "یه", "یک", "برای", "اما", "ولی", "چون",
	"من", "تو", "او", "ما", "شما", "اونا", "آنها", "است", "هست", "بود", "شد", "میشه", "نه", "آره", "چی",
	"همه", "خیلی", "دیگه", "کن", "کنم", "کرد", "باید", "اگه", "اگر", "روی", "رو", "هر", "چه",
})

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// keywordTokens lowercases text, replaces anything that is not a letter,
// digit or underscore with a space and drops stopwords and short tokens.
func (g *Generator) keywordTokens(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	var out []string
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) < g.cfg.MinKeywordRunes {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func shingleSet(words []string, n int) map[string]struct{} {
	out := map[string]struct{}{}
	if n <= 0 || len(words) < n {
		return out
	}
	for i := 0; i+n <= len(words); i++ {
		out[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return out
}

// backoffShingles returns the highest shingle order in 3, 2, 1 that yields
// any shingles for words, along with the set.
func backoffShingles(words []string) (int, map[string]struct{}) {
	for n := 3; n >= 1; n-- {
		if set := shingleSet(words, n); len(set) > 0 {
			return n, set
		}
	}
	return 0, map[string]struct{}{}
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
