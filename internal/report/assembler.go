// Package report lays out a scored evaluation record as a multi-page
// document and serialises it through the rendering backend.
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fmuoria/intern-evaluation/internal/layout"
	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/render"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
)

// DefaultReportKind prefixes generated filenames
const DefaultReportKind = "Internship_Evaluation"

// documentNamespace seeds the name-based document ids
var documentNamespace = uuid.MustParse("6f1c1c3e-5b7a-4f0e-9d8a-2f4b8e0c7a11")

// Document is a rendered report
type Document struct {
	Filename string
	Bytes    []byte
	Pages    int
	Record   models.ScoredRecord
	// Continued is set when the comments were too long for one page and
	// had to be split with continuation markers
	Continued bool
}

// Options configures a Renderer
type Options struct {
	ReportKind  string
	Attribution string
	Creator     string
	// Clock stamps the generation date. When nil the submission time is
	// used, so the same record always yields the same bytes.
	Clock func() time.Time
}

// Renderer assembles documents against an injected backend
type Renderer struct {
	backend *render.Backend
	geo     layout.Geometry
	opts    Options
	logger  *zap.Logger
}

// NewRenderer creates a renderer using backend for serialisation
func NewRenderer(backend *render.Backend, opts Options, logger *zap.Logger) *Renderer {
	if opts.ReportKind == "" {
		opts.ReportKind = DefaultReportKind
	}
	if opts.Creator == "" {
		opts.Creator = "Internship Evaluation System"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{backend: backend, geo: layout.A4, opts: opts, logger: logger}
}

// Render scores the record, lays it out and serialises it. Data errors are
// returned before the backend is touched.
func (r *Renderer) Render(ctx context.Context, record models.EvaluationRecord) (*Document, error) {
	scored, err := scoring.Score(record)
	if err != nil {
		return nil, err
	}

	lc, continued, err := r.Layout(scored)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out report for %s: %w", record.ID, err)
	}

	engine, err := r.backend.NewEngine(ctx, render.DocumentInfo{
		Title:     "Internship Evaluation - " + scored.SubjectName,
		Subject:   "Evaluation " + scored.ID,
		Author:    scored.EvaluatorOrganization,
		Creator:   r.opts.Creator,
		CreatedAt: r.generatedAt(scored),
	})
	if err != nil {
		return nil, err
	}

	render.Draw(engine, lc.Pages())

	var buf bytes.Buffer
	if err := engine.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialise report for %s: %w", record.ID, err)
	}

	return &Document{
		Filename:  Filename(r.opts.ReportKind, scored.SubjectName, scored.SubmittedAt, "pdf"),
		Bytes:     buf.Bytes(),
		Pages:     lc.PageCount(),
		Record:    scored,
		Continued: continued,
	}, nil
}

// Layout runs the six section renderers in order against a fresh
// rendering context. It does not touch the backend.
func (r *Renderer) Layout(rec models.ScoredRecord) (*layout.Context, bool, error) {
	c := layout.NewContext(r.geo)

	if _, err := renderHeader(c, headerData(DocumentID(rec.ID), r.generatedAt(rec))); err != nil {
		return nil, false, err
	}
	if _, err := renderInfoTable(c, infoRows(rec)); err != nil {
		return nil, false, err
	}
	_, continued, err := renderCriteria(c, criteriaData(rec))
	if err != nil {
		return nil, false, err
	}
	if continued {
		r.logger.Warn("Comments split across pages",
			zap.String("record_id", rec.ID),
			zap.Error(layout.ErrLayoutOverflow))
	}
	if _, err := renderSummary(c, summaryData(rec)); err != nil {
		return nil, false, err
	}
	if _, err := renderSignatures(c, signatureData(rec)); err != nil {
		return nil, false, err
	}
	renderFooters(c, footerData(r.opts.Attribution))

	return c, continued, nil
}

func (r *Renderer) generatedAt(rec models.ScoredRecord) time.Time {
	if r.opts.Clock != nil {
		return r.opts.Clock().UTC()
	}
	if rec.SubmittedAt.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return rec.SubmittedAt.UTC()
}

// DocumentID derives a stable, printable document id from a record id
func DocumentID(recordID string) string {
	id := uuid.NewSHA1(documentNamespace, []byte(recordID))
	return "EVAL-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:12])
}

// Filename builds <kind>_<Subject_Name>_<YYYY-MM-DD>.<ext>
func Filename(kind, subject string, submitted time.Time, ext string) string {
	name := strings.Join(strings.Fields(subject), "_")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%s_%s_%s.%s", kind, name, submitted.UTC().Format("2006-01-02"), ext)
}

// Ready reports whether the rendering backend has been loaded
func (r *Renderer) Ready() bool { return r.backend.Ready() }
