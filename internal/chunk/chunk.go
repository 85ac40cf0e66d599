// Package chunk splits imported documents into message-sized entries.
package chunk

import (
	"strings"
	"unicode/utf8"
)

type Segment struct {
	Index      int
	StartToken int
	EndToken   int
	Text       string
}

// SlidingWindow cuts text into windows of segmentTokens tokens that overlap
// by overlapTokens.
func SlidingWindow(text string, segmentTokens, overlapTokens int) []Segment {
	if segmentTokens <= 0 {
		return nil
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= segmentTokens {
		overlapTokens = segmentTokens - 1
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := segmentTokens - overlapTokens
	segments := make([]Segment, 0, (len(tokens)/step)+1)
	for start := 0; start < len(tokens); start += step {
		end := min(start+segmentTokens, len(tokens))
		segments = append(segments, Segment{
			Index:      len(segments),
			StartToken: start,
			EndToken:   end,
			Text:       strings.Join(tokens[start:end], " "),
		})
		if end == len(tokens) {
			break
		}
	}
	return segments
}

const terminators = ".!?؟…"

// Sentences splits text into sentences at terminal punctuation, keeping the
// terminator on its sentence. Each line break also ends a sentence. A
// sentence longer than maxTokens is cut into consecutive pieces.
func Sentences(text string, maxTokens int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, sentence := range splitLine(line) {
			if maxTokens <= 0 {
				out = append(out, sentence)
				continue
			}
			for _, seg := range SlidingWindow(sentence, maxTokens, 0) {
				out = append(out, seg.Text)
			}
		}
	}
	return out
}

func splitLine(line string) []string {
	var (
		out   []string
		start int
	)
	for i, r := range line {
		if !strings.ContainsRune(terminators, r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		// keep runs like "?!" or "..." together
		if end < len(line) {
			next, _ := utf8.DecodeRuneInString(line[end:])
			if strings.ContainsRune(terminators, next) {
				continue
			}
		}
		if s := strings.Join(strings.Fields(line[start:end]), " "); s != "" {
			out = append(out, s)
		}
		start = end
	}
	if s := strings.Join(strings.Fields(line[start:]), " "); s != "" {
		out = append(out, s)
	}
	return out
}
