package markov

import "slices"

// HasTailLoop reports whether the last window tokens end in two identical
// adjacent blocks of at least minBlock tokens. Every block length up to half
// the window is checked before it reports false.
func HasTailLoop(tokens []string, minBlock, window int) bool {
	if minBlock < 1 {
		minBlock = 1
	}
	t := tokens
	if window > 0 && len(t) > window {
		t = t[len(t)-window:]
	}
	n := len(t)
	for block := minBlock; block*2 <= n; block++ {
		if slices.Equal(t[n-2*block:n-block], t[n-block:]) {
			return true
		}
	}
	return false
}

// HasAdjacentRepeat flags a token immediately repeated ("a a") or a pair
// immediately repeated ("a b a b") anywhere in tokens.
func HasAdjacentRepeat(tokens []string) bool {
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] == tokens[i+1] {
			return true
		}
		if i+3 < len(tokens) && tokens[i] == tokens[i+2] && tokens[i+1] == tokens[i+3] {
			return true
		}
	}
	return false
}

// IsDegenerate runs the cheap adjacent check first and the block scan second.
func IsDegenerate(tokens []string, minBlock, window int) bool {
	return HasAdjacentRepeat(tokens) || HasTailLoop(tokens, minBlock, window)
}
