package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "علی کتاب می خواند", Normalize("  علي  كتاب مي‌خوانـــد "))
}

func TestStripLinks(t *testing.T) {
	got := StripLinks("see https://example.com/x and www.foo.org or t.me/chan @someone ok")
	assert.Equal(t, "see and or ok", got)
}

func TestCollapseRepeatedHalves(t *testing.T) {
	assert.Equal(t, "a b c", CollapseRepeatedHalves("a b c a b c"))
	assert.Equal(t, "a b c", CollapseRepeatedHalves("a b c a b c a b c a b c"))
	assert.Equal(t, "a b a b", CollapseRepeatedHalves("a b a b"))
	assert.Equal(t, "a b c d e f", CollapseRepeatedHalves("a b c d e f"))
}

func TestMessage(t *testing.T) {
	got, ok := Message("  hello   https://x.io world ")
	assert.True(t, ok)
	assert.Equal(t, "hello world", got)

	_, ok = Message("@someone")
	assert.False(t, ok)
}

func TestRulesDrop(t *testing.T) {
	r := DefaultRules()
	r.FormalMarkers = []string{"لذا"}

	cases := map[string]string{
		"این یک پیام معمولی است":       "",
		"سلام":                         "short",
		strings.Repeat("خیلی ", 80):    "long",
		"ببین اینو example.com":         "link",
		"عالیییییی بود واقعا":          "stretched",
		"😀😀😀😀😀😀 ها":                   "emoji",
		"لذا باید رفت خونه":            "formal",
		"یک " + strings.Repeat("بپ", 13): "long-word",
	}
	for in, want := range cases {
		assert.Equal(t, want, r.Drop(in), in)
	}

	assert.Equal(t, "", r.Drop("hello there friend"))
	r.DropLatin = true
	assert.Equal(t, "latin", r.Drop("hello there friend"))
}

func TestRulesDropAverageWordLength(t *testing.T) {
	r := DefaultRules()
	r.MaxAvgWordRunes = 6.5

	assert.Equal(t, "avg-word", r.Drop("abcdefgh ijklmnop"))
	assert.Equal(t, "", r.Drop("short words here"))
}

func TestRulesClean(t *testing.T) {
	r := DefaultRules()

	got, ok := r.Clean("خوبی؟ چه خبر خوبی؟ چه خبر")
	assert.True(t, ok)
	assert.Equal(t, "خوبی؟ چه خبر", got)

	_, ok = r.Clean("   ")
	assert.False(t, ok)
}
