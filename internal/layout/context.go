package layout

import "fmt"

// RGB is an 8-bit colour
type RGB struct {
	R, G, B uint8
}

// Palette used across the report
var (
	Navy      = RGB{31, 56, 100}
	Gold      = RGB{191, 144, 0}
	Ink       = RGB{33, 33, 33}
	Muted     = RGB{110, 110, 110}
	RowShade  = RGB{242, 245, 250}
	HeaderRow = RGB{68, 114, 196}
	White     = RGB{255, 255, 255}
)

// OpKind identifies a drawing primitive
type OpKind int

const (
	OpFont OpKind = iota
	OpTextColor
	OpDrawColor
	OpFillColor
	OpLineWidth
	OpText
	OpLine
	OpRect
)

// Op is one drawing primitive in a page's display list
type Op struct {
	Kind  OpKind
	X, Y  float64
	X2    float64 // line end x, or rect width
	Y2    float64 // line end y, or rect height
	Text  string
	Style string // font style, or rect style ("D", "F", "FD")
	Size  float64
	Color RGB
}

// Block is an atomic region placed on a page
type Block struct {
	Name   string
	Top    float64
	Bottom float64
}

// Page is the accumulated content of one page
type Page struct {
	Number int
	Ops    []Op
	Blocks []Block
}

// Context is the state of a single render: pages, cursor and geometry.
// It is not safe for concurrent use and is never shared between renders.
type Context struct {
	geo   Geometry
	pages []*Page
	cur   Cursor
}

// NewContext starts a document with its first framed page
func NewContext(g Geometry) *Context {
	c := &Context{geo: g}
	c.startPage()
	return c
}

// Geometry returns the page geometry
func (c *Context) Geometry() Geometry { return c.geo }

// Cursor returns the current write position
func (c *Context) Cursor() Cursor { return c.cur }

// Y returns the current vertical position on the current page
func (c *Context) Y() float64 { return c.cur.Y }

// Pages returns every page produced so far
func (c *Context) Pages() []*Page { return c.pages }

// PageCount returns the number of pages
func (c *Context) PageCount() int { return len(c.pages) }

// Remaining is the space left above the bottom threshold
func (c *Context) Remaining() float64 { return c.geo.Bottom() - c.cur.Y }

// Fits reports whether a block of height h fits on the current page
func (c *Context) Fits(h float64) bool { return c.cur.Y+h <= c.geo.Bottom() }

// AtTop reports whether nothing has been placed on the current page yet
func (c *Context) AtTop() bool { return c.cur.Y <= c.geo.Top() }

// Place reserves h for the named atomic block and returns the y at which
// it starts. The block moves whole to a new page if it would not fit.
func (c *Context) Place(name string, h float64) (float64, error) {
	if h > c.geo.UsableHeight() {
		return 0, fmt.Errorf("%w: %s needs %.1fmm, page has %.1fmm",
			ErrLayoutOverflow, name, h, c.geo.UsableHeight())
	}

	p := c.geo.Advance(c.cur, h)
	if p.Break {
		c.startPage()
	}
	c.cur = p.Next
	page := c.current()
	page.Blocks = append(page.Blocks, Block{Name: name, Top: p.Top.Y, Bottom: p.Next.Y})
	return p.Top.Y, nil
}

// Skip moves the cursor down by h without placing a block. It never
// crosses the bottom threshold; a gap at the bottom of a page is dropped.
func (c *Context) Skip(h float64) {
	c.cur.Y = min(c.cur.Y+h, c.geo.Bottom())
}

// BreakPage starts a new page unless the current one is still empty
func (c *Context) BreakPage() {
	if c.AtTop() {
		return
	}
	c.startPage()
}

func (c *Context) startPage() {
	c.pages = append(c.pages, &Page{Number: len(c.pages) + 1})
	c.cur = Cursor{Page: len(c.pages), Y: c.geo.Top()}
	c.DrawPageFrame()
}

func (c *Context) current() *Page { return c.pages[len(c.pages)-1] }

func (c *Context) emit(op Op) {
	page := c.current()
	page.Ops = append(page.Ops, op)
}

// OnPage runs fn with drawing directed at page n (1-based). It is used for
// content that does not follow the cursor, such as footers.
func (c *Context) OnPage(n int, fn func()) {
	saved := c.pages
	c.pages = saved[:n]
	defer func() { c.pages = saved }()
	fn()
}

// DrawPageFrame draws the outer and inner borders and the corner accents
// of the current page
func (c *Context) DrawPageFrame() {
	g := c.geo
	outer := g.FrameMargin
	inner := g.FrameMargin + g.InnerInset

	c.SetDrawColor(Navy)
	c.SetLineWidth(0.8)
	c.Rect(outer, outer, g.PageWidth-2*outer, g.PageHeight-2*outer, "D")

	c.SetLineWidth(0.3)
	c.Rect(inner, inner, g.PageWidth-2*inner, g.PageHeight-2*inner, "D")

	const accent = 8.0
	c.SetDrawColor(Gold)
	c.SetLineWidth(1.2)
	left, right := outer, g.PageWidth-outer
	top, bottom := outer, g.PageHeight-outer
	c.Line(left, top, left+accent, top)
	c.Line(left, top, left, top+accent)
	c.Line(right, top, right-accent, top)
	c.Line(right, top, right, top+accent)
	c.Line(left, bottom, left+accent, bottom)
	c.Line(left, bottom, left, bottom-accent)
	c.Line(right, bottom, right-accent, bottom)
	c.Line(right, bottom, right, bottom-accent)
}

// SetFont selects the face and size for following text
func (c *Context) SetFont(style FontStyle, size float64) {
	c.emit(Op{Kind: OpFont, Style: string(style), Size: size})
}

// SetTextColor sets the text colour
func (c *Context) SetTextColor(col RGB) { c.emit(Op{Kind: OpTextColor, Color: col}) }

// SetDrawColor sets the stroke colour
func (c *Context) SetDrawColor(col RGB) { c.emit(Op{Kind: OpDrawColor, Color: col}) }

// SetFillColor sets the fill colour
func (c *Context) SetFillColor(col RGB) { c.emit(Op{Kind: OpFillColor, Color: col}) }

// SetLineWidth sets the stroke width
func (c *Context) SetLineWidth(w float64) { c.emit(Op{Kind: OpLineWidth, Size: w}) }

// Text places s with its baseline at (x, y)
func (c *Context) Text(x, y float64, s string) {
	c.emit(Op{Kind: OpText, X: x, Y: y, Text: s})
}

// TextCentered centres s horizontally around x
func (c *Context) TextCentered(x, y float64, s string, style FontStyle, size float64) {
	c.Text(x-StringWidth(s, style, size)/2, y, s)
}

// TextRight right-aligns s so it ends at x
func (c *Context) TextRight(x, y float64, s string, style FontStyle, size float64) {
	c.Text(x-StringWidth(s, style, size), y, s)
}

// Line strokes a straight line
func (c *Context) Line(x1, y1, x2, y2 float64) {
	c.emit(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2})
}

// Rect draws a rectangle; style is "D" (stroke), "F" (fill) or "FD"
func (c *Context) Rect(x, y, w, h float64, style string) {
	c.emit(Op{Kind: OpRect, X: x, Y: y, X2: w, Y2: h, Style: style})
}
