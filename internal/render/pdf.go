package render

import (
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/fmuoria/intern-evaluation/internal/layout"
)

// pdfEngine adapts fpdf to Engine, translating UTF-8 text to the
// cp1252 encoding of the core Helvetica font
type pdfEngine struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (p *pdfEngine) Text(x, y float64, s string) {
	p.Fpdf.Text(x, y, p.tr(s))
}

func (p *pdfEngine) Output(w io.Writer) error {
	if p.Fpdf.Err() {
		return fmt.Errorf("pdf: %w", p.Fpdf.Error())
	}
	return p.Fpdf.Output(w)
}

func newPDF(g layout.Geometry) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// PDFLoader returns a Loader for the fpdf backend. Loading verifies that
// the core font can be set up on the page geometry.
func PDFLoader(g layout.Geometry) Loader {
	return func(ctx context.Context) (Factory, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		probe := newPDF(g)
		probe.AddPage()
		probe.SetFont(layout.FontFamily, "", 10)
		if probe.Err() {
			return nil, fmt.Errorf("pdf probe: %w", probe.Error())
		}

		return func(info DocumentInfo) Engine {
			pdf := newPDF(g)
			pdf.SetCompression(true)
			pdf.SetCatalogSort(true)
			pdf.SetTitle(info.Title, true)
			pdf.SetSubject(info.Subject, true)
			pdf.SetAuthor(info.Author, true)
			pdf.SetCreator(info.Creator, true)
			pdf.SetCreationDate(info.CreatedAt)
			pdf.SetModificationDate(info.CreatedAt)
			return &pdfEngine{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
		}, nil
	}
}
