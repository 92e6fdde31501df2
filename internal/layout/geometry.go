// Package layout owns the page geometry, text measurement and the vertical
// write cursor used to place report content. Positions are in millimetres
// from the top-left corner of the page.
package layout

import "errors"

// ErrLayoutOverflow reports an atomic block taller than a whole page
var ErrLayoutOverflow = errors.New("block exceeds usable page height")

// Geometry is the fixed page geometry of a report
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	FrameMargin  float64 // outer decorative border, from the page edge
	InnerInset   float64 // inner border, from the outer border
	Padding      float64 // content padding inside the inner border
	FooterHeight float64 // space reserved above the inner border for the footer
}

// A4 is the portrait A4 geometry every report uses
var A4 = Geometry{
	PageWidth:    210,
	PageHeight:   297,
	FrameMargin:  15,
	InnerInset:   5,
	Padding:      5,
	FooterHeight: 12,
}

// Margin is the distance from the page edge to the content area
func (g Geometry) Margin() float64 {
	return g.FrameMargin + g.InnerInset + g.Padding
}

// Left is the x of the content area's left edge
func (g Geometry) Left() float64 { return g.Margin() }

// Right is the x of the content area's right edge
func (g Geometry) Right() float64 { return g.PageWidth - g.Margin() }

// Top is where the cursor starts on every page
func (g Geometry) Top() float64 { return g.Margin() }

// ContentWidth is the usable width between the side margins
func (g Geometry) ContentWidth() float64 { return g.PageWidth - 2*g.Margin() }

// Bottom is the lowest y content may reach before a page break
func (g Geometry) Bottom() float64 {
	return g.PageHeight - g.Margin() - g.FooterHeight
}

// UsableHeight is the most a single block can occupy on one page
func (g Geometry) UsableHeight() float64 { return g.Bottom() - g.Top() }

// FooterY is the baseline of the footer text, independent of the cursor
func (g Geometry) FooterY() float64 {
	return g.PageHeight - g.FrameMargin - g.InnerInset - 4
}

// Cursor is a vertical write position on a page (pages count from 1)
type Cursor struct {
	Page int
	Y    float64
}

// Placement is the result of advancing the cursor past one block
type Placement struct {
	Top   Cursor // where the block is drawn
	Next  Cursor // cursor after the block
	Break bool   // a page break preceded the block
}

// Advance places a block of height h at cur. When the block would cross
// the bottom threshold it is moved whole to the top of the next page. A
// block that starts at the top of a page is never moved again.
func (g Geometry) Advance(cur Cursor, h float64) Placement {
	top := cur
	broke := false
	if cur.Y+h > g.Bottom() && cur.Y > g.Top() {
		top = Cursor{Page: cur.Page + 1, Y: g.Top()}
		broke = true
	}
	return Placement{
		Top:   top,
		Next:  Cursor{Page: top.Page, Y: top.Y + h},
		Break: broke,
	}
}
