package sanitize

import (
	"strings"
	"unicode/utf8"
)

// Rules is the corpus admission policy used by imports and the clean pass.
type Rules struct {
	DropLatin bool `yaml:"drop_latin"`
	MinRunes  int  `yaml:"min_runes"`
	MaxRunes  int  `yaml:"max_runes"`
	// MaxEmojiRatio drops texts that are mostly emoji.
	MaxEmojiRatio float64 `yaml:"max_emoji_ratio"`
	// StretchRunes drops texts with a rune repeated this many times in a row.
	StretchRunes    int      `yaml:"stretch_runes"`
	FormalMarkers   []string `yaml:"formal_markers"`
	MaxWordRunes    int      `yaml:"max_word_runes"`
	MaxAvgWordRunes float64  `yaml:"max_avg_word_runes"`
}

func DefaultRules() Rules {
	return Rules{
		MinRunes:      6,
		MaxRunes:      350,
		MaxEmojiRatio: 0.5,
		StretchRunes:  4,
		MaxWordRunes:  20,
	}
}

// Drop returns a short reason when text must not enter the corpus, or "".
// text is expected to be normalized already.
func (r Rules) Drop(text string) string {
	n := utf8.RuneCountInString(text)
	switch {
	case text == "":
		return "empty"
	case r.DropLatin && latinPattern.MatchString(text):
		return "latin"
	case HasLinkOrMention(text):
		return "link"
	case r.MinRunes > 0 && n < r.MinRunes:
		return "short"
	case r.MaxRunes > 0 && n > r.MaxRunes:
		return "long"
	case r.MaxEmojiRatio > 0 && emojiRatio(text) > r.MaxEmojiRatio:
		return "emoji"
	case r.StretchRunes > 1 && hasStretchedRune(text, r.StretchRunes):
		return "stretched"
	case r.hasFormalMarker(text):
		return "formal"
	}

	words := strings.Fields(text)
	total := 0
	for _, w := range words {
		runes := utf8.RuneCountInString(w)
		if r.MaxWordRunes > 0 && runes > r.MaxWordRunes {
			return "long-word"
		}
		total += runes
	}
	if r.MaxAvgWordRunes > 0 && float64(total)/float64(len(words)) > r.MaxAvgWordRunes {
		return "avg-word"
	}
	return ""
}

func (r Rules) hasFormalMarker(text string) bool {
	for _, m := range r.FormalMarkers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Clean normalizes raw, applies Drop and collapses repeated halves. It
// reports false when the text is rejected.
func (r Rules) Clean(raw string) (string, bool) {
	text := Normalize(raw)
	if r.Drop(text) != "" {
		return "", false
	}
	text = CollapseRepeatedHalves(text)
	if r.MinRunes > 0 && utf8.RuneCountInString(text) < r.MinRunes {
		return "", false
	}
	return text, true
}
