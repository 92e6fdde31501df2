// Package render connects laid out pages to a drawing backend and
// serialises them into a document.
package render

import (
	"io"
	"time"

	"github.com/fmuoria/intern-evaluation/internal/layout"
)

// Engine is the set of drawing primitives a backend must provide.
// An Engine holds one document and must not be shared between renders.
type Engine interface {
	AddPage()
	SetFont(family, style string, size float64)
	SetTextColor(r, g, b int)
	SetDrawColor(r, g, b int)
	SetFillColor(r, g, b int)
	SetLineWidth(width float64)
	Text(x, y float64, s string)
	Line(x1, y1, x2, y2 float64)
	Rect(x, y, w, h float64, style string)
	Output(w io.Writer) error
}

// DocumentInfo is the metadata embedded in a document
type DocumentInfo struct {
	Title     string
	Subject   string
	Author    string
	Creator   string
	CreatedAt time.Time
}

// Draw replays laid out pages onto an engine, one AddPage per page
func Draw(e Engine, pages []*layout.Page) {
	for _, page := range pages {
		e.AddPage()
		for _, op := range page.Ops {
			drawOp(e, op)
		}
	}
}

func drawOp(e Engine, op layout.Op) {
	switch op.Kind {
	case layout.OpFont:
		e.SetFont(layout.FontFamily, op.Style, op.Size)
	case layout.OpTextColor:
		e.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
	case layout.OpDrawColor:
		e.SetDrawColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
	case layout.OpFillColor:
		e.SetFillColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
	case layout.OpLineWidth:
		e.SetLineWidth(op.Size)
	case layout.OpText:
		e.Text(op.X, op.Y, op.Text)
	case layout.OpLine:
		e.Line(op.X, op.Y, op.X2, op.Y2)
	case layout.OpRect:
		e.Rect(op.X, op.Y, op.X2, op.Y2, op.Style)
	}
}
