package skeleton

import "golang.org/x/text/width"

// charWidth is the average glyph advance as a fraction of the text size.
const charWidth = 0.6

// Cells returns the number of character cells s occupies. East Asian wide
// and fullwidth runes take two cells.
func Cells(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
