package render

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Recorder is an Engine that records every call as a line of text.
// Output writes the trace; it is used for layout debugging.
type Recorder struct {
	Calls []string
	Pages int
}

// RecorderLoader returns a Loader whose engines are Recorders
func RecorderLoader() Loader {
	return func(ctx context.Context) (Factory, error) {
		return func(DocumentInfo) Engine { return &Recorder{} }, nil
	}
}

func (r *Recorder) record(format string, args ...interface{}) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) AddPage() {
	r.Pages++
	r.record("page %d", r.Pages)
}

func (r *Recorder) SetFont(family, style string, size float64) {
	r.record("font %s %q %.1f", family, style, size)
}

func (r *Recorder) SetTextColor(red, g, b int) { r.record("text-color %d %d %d", red, g, b) }

func (r *Recorder) SetDrawColor(red, g, b int) { r.record("draw-color %d %d %d", red, g, b) }

func (r *Recorder) SetFillColor(red, g, b int) { r.record("fill-color %d %d %d", red, g, b) }

func (r *Recorder) SetLineWidth(width float64) { r.record("line-width %.2f", width) }

func (r *Recorder) Text(x, y float64, s string) { r.record("text %.2f %.2f %q", x, y, s) }

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.record("line %.2f %.2f %.2f %.2f", x1, y1, x2, y2)
}

func (r *Recorder) Rect(x, y, w, h float64, style string) {
	r.record("rect %.2f %.2f %.2f %.2f %s", x, y, w, h, style)
}

func (r *Recorder) Output(w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(r.Calls, "\n")+"\n")
	return err
}
