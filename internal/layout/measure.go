package layout

import (
	"strings"
)

// TextBlockPadding is the fixed vertical padding added to every measured block
const TextBlockPadding = 6.0

// Measure is the result of laying out a block of free text
type Measure struct {
	Lines      []string
	LineCount  int
	LineHeight float64
	Height     float64
}

// MeasureTextBlock greedily word-wraps text into lines no wider than
// maxWidth at the given size and returns the block height. It is the only
// way variable-length content may be sized.
func MeasureTextBlock(text string, size, maxWidth float64) Measure {
	lines := WrapText(text, Regular, size, maxWidth)
	lh := LineHeight(size)
	return Measure{
		Lines:      lines,
		LineCount:  len(lines),
		LineHeight: lh,
		Height:     float64(len(lines))*lh + TextBlockPadding,
	}
}

// WrapText breaks text into lines that fit maxWidth. Explicit newlines
// start a new line; words wider than maxWidth are split by rune.
func WrapText(text string, style FontStyle, size, maxWidth float64) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	spaceW := StringWidth(" ", style, size)
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		lineW := 0.0
		flush := func() {
			lines = append(lines, line.String())
			line.Reset()
			lineW = 0
		}

		for _, word := range words {
			for _, piece := range splitWord(word, style, size, maxWidth) {
				w := StringWidth(piece, style, size)
				if line.Len() > 0 && lineW+spaceW+w > maxWidth {
					flush()
				}
				if line.Len() > 0 {
					line.WriteByte(' ')
					lineW += spaceW
				}
				line.WriteString(piece)
				lineW += w
			}
		}
		if line.Len() > 0 {
			flush()
		}
	}
	return lines
}

// splitWord hard-splits a word that cannot fit on a line by itself
func splitWord(word string, style FontStyle, size, maxWidth float64) []string {
	if StringWidth(word, style, size) <= maxWidth {
		return []string{word}
	}

	var pieces []string
	var cur []rune
	curW := 0.0
	for _, r := range word {
		w := StringWidth(string(r), style, size)
		if len(cur) > 0 && curW+w > maxWidth {
			pieces = append(pieces, string(cur))
			cur = cur[:0]
			curW = 0
		}
		cur = append(cur, r)
		curW += w
	}
	if len(cur) > 0 {
		pieces = append(pieces, string(cur))
	}
	return pieces
}
