package report

import "strings"

// Line is one output line of a wrapped text block.
type Line struct {
	Text string
	// Last marks the final line of a paragraph. Last lines are never justified.
	Last bool
}

// Wrap breaks text into lines that fit a block of the given width.
//
// Paragraphs are split on newlines and words on single spaces. A word joins
// the current line while measure(line + " " + word) stays strictly below
// width; otherwise the line is emitted and the word opens the next one. A
// word wider than the block is emitted on its own line, unbroken.
func Wrap(text string, width float64, measure func(string) float64) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []Line
	for _, para := range strings.Split(text, "\n") {
		words := strings.Split(para, " ")
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if measure(candidate) < width {
				current = candidate
				continue
			}
			lines = append(lines, Line{Text: current})
			current = word
		}
		lines = append(lines, Line{Text: current, Last: true})
	}
	return lines
}

// wordSpacing returns the extra space per gap that stretches line to width.
func wordSpacing(line Line, width float64, measure func(string) float64) float64 {
	if line.Last {
		return 0
	}
	gaps := strings.Count(line.Text, " ")
	if gaps == 0 {
		return 0
	}
	extra := width - measure(line.Text)
	if extra <= 0 {
		return 0
	}
	return extra / float64(gaps)
}
