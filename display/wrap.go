package display

import "strings"

// wrapWords splits text into lines that render inside maxWidth pixels,
// as reported by measure. Accumulation is greedy: a word moves to a new
// line as soon as "line word" would reach or exceed maxWidth. Words are
// never split, so a single word wider than the panel gets a line to
// itself and overflows it.
func wrapWords(text string, measure func(string) int, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := make([]string, 0, 4)
	line := words[0]
	for _, word := range words[1:] {
		joined := line + " " + word
		if measure(joined) >= maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = joined
	}
	return append(lines, line)
}
