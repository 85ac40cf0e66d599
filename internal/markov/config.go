package markov

import (
	"os"
	"strconv"
	"strings"
)

// Config carries every tunable of the generator. The zero value is not
// useful; start from DefaultConfig.
type Config struct {
	// Order is the n-gram size. Keys hold Order-1 tokens.
	Order int `yaml:"order"`
	// MaxHops bounds mid-sentence restarts after a dead end.
	MaxHops int `yaml:"max_hops"`
	// MaxRepeatAttempts bounds resampling when the sampled token would repeat.
	MaxRepeatAttempts int `yaml:"max_repeat_attempts"`
	// PairWindow is how many recent (prev, next) transitions are remembered
	// while walking.
	PairWindow int `yaml:"pair_window"`

	MinLoopBlock int `yaml:"min_loop_block"`
	LoopWindow   int `yaml:"loop_window"`

	Attempts          int  `yaml:"attempts"`
	MinCorpus         int  `yaml:"min_corpus"`
	DefaultWords      int  `yaml:"default_words"`
	MaxWords          int  `yaml:"max_words"`
	AvoidCopies       bool `yaml:"avoid_copies"`
	LooksGoodMinWords int  `yaml:"looks_good_min_words"`

	RelatedKeywords  int     `yaml:"related_keywords"`
	RelatedTopK      int     `yaml:"related_top_k"`
	MinSubCorpus     int     `yaml:"min_sub_corpus"`
	WidenBelow       int     `yaml:"widen_below"`
	SimilarityWeight float64 `yaml:"similarity_weight"`
	MinKeywordRunes  int     `yaml:"min_keyword_runes"`
	RelatedAttempts  int     `yaml:"related_attempts"`
}

func DefaultConfig() Config {
	return Config{
		Order:             getenvInt("BABBLE_ORDER", 4),
		MaxHops:           getenvInt("BABBLE_MAX_HOPS", 2),
		MaxRepeatAttempts: getenvInt("BABBLE_MAX_REPEAT_ATTEMPTS", 3),
		PairWindow:        getenvInt("BABBLE_PAIR_WINDOW", 6),
		MinLoopBlock:      getenvInt("BABBLE_MIN_LOOP_BLOCK", 5),
		LoopWindow:        getenvInt("BABBLE_LOOP_WINDOW", 200),
		Attempts:          getenvInt("BABBLE_ATTEMPTS", 3),
		MinCorpus:         getenvInt("BABBLE_MIN_CORPUS", 5),
		DefaultWords:      getenvInt("BABBLE_DEFAULT_WORDS", 25),
		MaxWords:          getenvInt("BABBLE_MAX_WORDS", 200),
		AvoidCopies:       getenvBool("BABBLE_AVOID_COPIES", true),
		LooksGoodMinWords: getenvInt("BABBLE_LOOKS_GOOD_MIN_WORDS", 4),
		RelatedKeywords:   getenvInt("BABBLE_RELATED_KEYWORDS", 4),
		RelatedTopK:       getenvInt("BABBLE_RELATED_TOP_K", 140),
		MinSubCorpus:      getenvInt("BABBLE_MIN_SUB_CORPUS", 12),
		WidenBelow:        getenvInt("BABBLE_WIDEN_BELOW", 40),
		SimilarityWeight:  getenvFloat("BABBLE_SIMILARITY_WEIGHT", 0.5),
		MinKeywordRunes:   getenvInt("BABBLE_MIN_KEYWORD_RUNES", 3),
		RelatedAttempts:   getenvInt("BABBLE_RELATED_ATTEMPTS", 3),
	}
}

// normalized clamps values that would otherwise break the walk.
func (c Config) normalized() Config {
	if c.Order < 2 {
		c.Order = 2
	}
	c.MaxHops = max(0, c.MaxHops)
	c.MaxRepeatAttempts = max(0, c.MaxRepeatAttempts)
	c.PairWindow = max(0, c.PairWindow)
	if c.MinLoopBlock < 1 {
		c.MinLoopBlock = 1
	}
	if c.LoopWindow <= 0 {
		c.LoopWindow = 200
	}
	if c.Attempts < 1 {
		c.Attempts = 1
	}
	if c.DefaultWords <= 0 {
		c.DefaultWords = 25
	}
	if c.MaxWords <= 0 {
		c.MaxWords = 200
	}
	if c.RelatedKeywords < 1 {
		c.RelatedKeywords = 1
	}
	if c.RelatedTopK < 1 {
		c.RelatedTopK = 1
	}
	if c.RelatedAttempts < 1 {
		c.RelatedAttempts = 1
	}
	return c
}

func getenvInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	return raw == "1" || raw == "true" || raw == "yes" || raw == "on"
}
