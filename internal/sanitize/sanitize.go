// Package sanitize decides which chat texts are fit to learn from and
// normalizes the ones that are.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)https?://\S+`)
	wwwPattern     = regexp.MustCompile(`(?i)www\.\S+`)
	domainPattern  = regexp.MustCompile(`(?i)\b\S+\.(com|net|org|ir|io|me|app|xyz|info|site|online|shop|top)\b`)
	telegramLink   = regexp.MustCompile(`(?i)(t|telegram)\.me/\S+`)
	mentionPattern = regexp.MustCompile(`@[a-zA-Z0-9_]{3,32}`)
	latinPattern   = regexp.MustCompile(`[A-Za-z]`)
)

var linkPatterns = []*regexp.Regexp{urlPattern, wwwPattern, telegramLink, domainPattern, mentionPattern}

var normalizer = strings.NewReplacer(
	"ي", "ی",
	"ك", "ک",
	"‌", " ",
	"ـ", "",
)

// Normalize maps Arabic yeh and kaf to their Persian forms, turns ZWNJ into a
// space, removes kashida and collapses whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(normalizer.Replace(text)), " ")
}

// StripLinks removes URLs, bare domains and @mentions.
func StripLinks(text string) string {
	for _, p := range linkPatterns {
		text = p.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

func HasLinkOrMention(text string) bool {
	for _, p := range linkPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// CollapseRepeatedHalves turns "a b c a b c" into "a b c". Texts under six
// words are left alone and at most two halvings happen.
func CollapseRepeatedHalves(text string) string {
	words := strings.Fields(text)
	if len(words) < 6 {
		return text
	}
	current := words
	for iter := 0; iter < 2; iter++ {
		if len(current)%2 != 0 {
			break
		}
		half := len(current) / 2
		if strings.Join(current[:half], " ") != strings.Join(current[half:], " ") {
			break
		}
		current = current[:half]
	}
	return strings.Join(current, " ")
}

// Message is the light cleaner applied to live chat input. It reports false
// when fewer than two runes survive.
func Message(raw string) (string, bool) {
	text := StripLinks(Normalize(raw))
	if utf8.RuneCountInString(text) < 2 {
		return "", false
	}
	return text, true
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0xFE0F || r == 0x200D:
		return true
	}
	return unicode.Is(unicode.So, r)
}

func emojiRatio(text string) float64 {
	total, emoji := 0, 0
	for _, r := range text {
		total++
		if isEmoji(r) {
			emoji++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(emoji) / float64(total)
}

// hasStretchedRune reports a rune repeated at least n times in a row.
func hasStretchedRune(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
