package layout

// Glyph advance widths for the standard Helvetica faces in 1/1000 em,
// indexed from the space character (0x20) through tilde (0x7E).
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space to /
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // 0-9
	278, 278, 584, 584, 584, 556, 1015, // : to @
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // A-M
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // N-Z
	278, 278, 278, 469, 556, 333, // [ to `
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // a-m
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // n-z
	334, 260, 334, 584, // { to ~
}

var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556,
	333, 333, 584, 584, 584, 611, 975,
	722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833,
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611,
	333, 278, 333, 584, 556, 333,
	556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889,
	611, 611, 611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500,
	389, 280, 389, 584,
}

const fallbackWidth = 556

// PointToMM converts typographic points to millimetres
const PointToMM = 25.4 / 72

// FontStyle is the face of the single supported family
type FontStyle string

const (
	Regular FontStyle = ""
	Bold    FontStyle = "B"
	Italic  FontStyle = "I"
)

// FontFamily is the only type family used in documents
const FontFamily = "Helvetica"

// StringWidth returns the rendered width of s in millimetres.
// Italic shares the regular advance widths.
func StringWidth(s string, style FontStyle, size float64) float64 {
	table := &helveticaWidths
	if style == Bold {
		table = &helveticaBoldWidths
	}

	units := 0
	for _, r := range s {
		if r >= 0x20 && r <= 0x7E {
			units += table[r-0x20]
		} else {
			units += fallbackWidth
		}
	}
	return float64(units) / 1000 * size * PointToMM
}

// LineHeight returns the baseline-to-baseline distance for a font size
func LineHeight(size float64) float64 {
	return size * PointToMM * 1.5
}
