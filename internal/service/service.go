// Package service orchestrates scoring, storage, querying, report
// rendering, export, mail import and comment drafting.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fmuoria/intern-evaluation/internal/export"
	"github.com/fmuoria/intern-evaluation/internal/ingestion"
	"github.com/fmuoria/intern-evaluation/internal/llm"
	"github.com/fmuoria/intern-evaluation/internal/metrics"
	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/query"
	"github.com/fmuoria/intern-evaluation/internal/report"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
	"github.com/fmuoria/intern-evaluation/internal/store"
)

// ErrFeatureDisabled is returned by optional features that were not
// configured, such as Gmail import or comment drafting
var ErrFeatureDisabled = errors.New("feature not configured")

// ProgressCallback is called to report progress during batch operations
type ProgressCallback func(current, total int, message string)

// Options holds the optional collaborators of a Service
type Options struct {
	Importer      *ingestion.Importer
	Drafter       *llm.CommentDrafter
	ImportSubject string
	Clock         func() time.Time
}

// Service is the single entry point used by the HTTP API and the CLI
type Service struct {
	store    store.RecordSource
	renderer *report.Renderer
	importer *ingestion.Importer
	drafter  *llm.CommentDrafter
	subject  string
	clock    func() time.Time
	logger   *zap.Logger

	mu         sync.RWMutex
	progressCb ProgressCallback
}

// New creates a service
func New(st store.RecordSource, renderer *report.Renderer, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		store:    st,
		renderer: renderer,
		importer: opts.Importer,
		drafter:  opts.Drafter,
		subject:  opts.ImportSubject,
		clock:    opts.Clock,
		logger:   logger,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Service) SetProgressCallback(cb ProgressCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressCb = cb
}

func (s *Service) reportProgress(current, total int, message string) {
	s.mu.RLock()
	cb := s.progressCb
	s.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

// Ready reports whether reports can be rendered without loading the
// rendering backend first
func (s *Service) Ready() bool { return s.renderer.Ready() }

// Submit scores and stores a new record. A missing id is generated and a
// missing submission time is set to now.
func (s *Service) Submit(ctx context.Context, rec models.EvaluationRecord) (models.ScoredRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = s.clock().UTC()
	}

	scored, err := scoring.Score(rec)
	if err != nil {
		metrics.EvaluationsRejected.WithLabelValues(rejectReason(err)).Inc()
		return models.ScoredRecord{}, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			metrics.EvaluationsRejected.WithLabelValues("duplicate").Inc()
		}
		return models.ScoredRecord{}, err
	}

	metrics.EvaluationsSubmitted.Inc()
	metrics.EvaluationsByGrade.WithLabelValues(string(scored.Grade)).Inc()
	s.logger.Info("Evaluation submitted",
		zap.String("record_id", scored.ID),
		zap.Int("total", scored.Total),
		zap.String("grade", string(scored.Grade)))
	return scored, nil
}

// Get returns one scored record
func (s *Service) Get(ctx context.Context, id string) (models.ScoredRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return models.ScoredRecord{}, err
	}
	return scoring.Score(rec)
}

// List scores every stored record and applies the query. Stored records
// that no longer score are logged and left out.
func (s *Service) List(ctx context.Context, opts query.Options) ([]models.ScoredRecord, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())
	}()

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	scored := make([]models.ScoredRecord, 0, len(records))
	for _, rec := range records {
		sr, err := scoring.Score(rec)
		if err != nil {
			s.logger.Warn("Skipping stored record that does not score",
				zap.String("record_id", rec.ID), zap.Error(err))
			continue
		}
		scored = append(scored, sr)
	}

	return query.Apply(scored, opts)
}

// RenderReport renders the stored record with the given id
func (s *Service) RenderReport(ctx context.Context, id string) (*report.Document, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.RenderRecord(ctx, rec)
}

// RenderRecord renders a record that need not be stored
func (s *Service) RenderRecord(ctx context.Context, rec models.EvaluationRecord) (*report.Document, error) {
	start := time.Now()
	doc, err := s.renderer.Render(ctx, rec)
	metrics.ReportRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReportsRendered.WithLabelValues("error").Inc()
		s.logger.Error("Report rendering failed", zap.String("record_id", rec.ID), zap.Error(err))
		return nil, err
	}

	metrics.ReportsRendered.WithLabelValues("ok").Inc()
	metrics.ReportPages.Observe(float64(doc.Pages))
	s.logger.Info("Report rendered",
		zap.String("record_id", rec.ID),
		zap.String("filename", doc.Filename),
		zap.Int("pages", doc.Pages),
		zap.Bool("continued", doc.Continued))
	return doc, nil
}

// RenderToDir renders each record into outDir and returns the written
// paths. It stops at the first failure.
func (s *Service) RenderToDir(ctx context.Context, records []models.EvaluationRecord, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	paths := make([]string, 0, len(records))
	for i, rec := range records {
		s.reportProgress(i, len(records), fmt.Sprintf("Rendering %s...", rec.SubjectName))

		doc, err := s.RenderRecord(ctx, rec)
		if err != nil {
			return paths, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		path := filepath.Join(outDir, doc.Filename)
		if err := os.WriteFile(path, doc.Bytes, 0644); err != nil {
			return paths, fmt.Errorf("failed to write report: %w", err)
		}
		paths = append(paths, path)
	}

	s.reportProgress(len(records), len(records), fmt.Sprintf("Rendered %d reports", len(paths)))
	return paths, nil
}

// Export writes the queried records as an Excel workbook to w
func (s *Service) Export(ctx context.Context, opts query.Options, w io.Writer) error {
	records, err := s.List(ctx, opts)
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("export").Observe(time.Since(start).Seconds())
	}()
	return export.WriteExcel(records, export.Options{Filter: Describe(opts), GeneratedAt: s.clock()}, w)
}

// ExportToFile writes the queried records to an Excel file and returns
// the path written
func (s *Service) ExportToFile(ctx context.Context, opts query.Options, path string) (string, error) {
	records, err := s.List(ctx, opts)
	if err != nil {
		return "", err
	}
	return export.ExportToExcel(records, export.Options{Filter: Describe(opts), GeneratedAt: s.clock()}, path)
}

// Import pulls evaluation records from mail. An empty subject uses the
// configured one.
func (s *Service) Import(ctx context.Context, subject string) (*ingestion.ImportResult, error) {
	if s.importer == nil {
		return nil, fmt.Errorf("%w: gmail import", ErrFeatureDisabled)
	}
	if subject == "" {
		subject = s.subject
	}

	s.reportProgress(0, 1, fmt.Sprintf("Fetching messages with subject %q...", subject))
	result, err := s.importer.Import(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to import from Gmail: %w", err)
	}
	s.reportProgress(1, 1, fmt.Sprintf("Imported %d records", len(result.Imported)))

	metrics.RecordsImported.WithLabelValues("imported").Add(float64(len(result.Imported)))
	metrics.RecordsImported.WithLabelValues("duplicate").Add(float64(len(result.Duplicates)))
	metrics.RecordsImported.WithLabelValues("failed").Add(float64(len(result.Failed)))
	metrics.RecordsImported.WithLabelValues("ignored").Add(float64(result.Ignored))
	return result, nil
}

// DraftComment suggests an evaluator comment for the given marks
func (s *Service) DraftComment(ctx context.Context, req llm.DraftRequest) (*llm.Draft, error) {
	if s.drafter == nil {
		return nil, fmt.Errorf("%w: comment drafting", ErrFeatureDisabled)
	}
	return s.drafter.DraftComment(ctx, req)
}

// Describe renders query options as a short human-readable filter
func Describe(opts query.Options) string {
	var parts []string
	if opts.Text != "" {
		parts = append(parts, fmt.Sprintf("search %q", opts.Text))
	}
	if opts.Grade != "" && opts.Grade != query.AllGrades {
		parts = append(parts, "grade "+opts.Grade)
	}
	if opts.Key != "" {
		dir := opts.Direction
		if dir == "" {
			dir = query.Descending
		}
		parts = append(parts, fmt.Sprintf("sorted by %s %s", opts.Key, dir))
	}
	if len(parts) == 0 {
		return "All evaluations"
	}
	return strings.Join(parts, ", ")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, scoring.ErrIncompleteScore):
		return "incomplete"
	case errors.Is(err, scoring.ErrInvalidMark):
		return "invalid_mark"
	case errors.Is(err, scoring.ErrScoreMismatch):
		return "mismatch"
	case errors.Is(err, scoring.ErrInvalidRecord):
		return "invalid_record"
	default:
		return "other"
	}
}
