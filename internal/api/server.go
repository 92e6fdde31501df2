package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fmuoria/intern-evaluation/internal/llm"
	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/query"
	"github.com/fmuoria/intern-evaluation/internal/render"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
	"github.com/fmuoria/intern-evaluation/internal/service"
	"github.com/fmuoria/intern-evaluation/internal/store"
)

const (
	maxBodyBytes = 1 << 20
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var errBadRequest = errors.New("bad request")

// Server handles HTTP requests
type Server struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewServer creates a new API server
func NewServer(svc *service.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:    svc,
		logger: logger,
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /evaluations", s.handleSubmit)
	mux.HandleFunc("GET /evaluations", s.handleList)
	mux.HandleFunc("GET /evaluations/export", s.handleExport)
	mux.HandleFunc("POST /evaluations/import", s.handleImport)
	mux.HandleFunc("POST /evaluations/draft-comment", s.handleDraftComment)
	mux.HandleFunc("GET /evaluations/{id}", s.handleGet)
	mux.HandleFunc("GET /evaluations/{id}/report", s.handleReport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Internship Evaluation",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /evaluations":               "Submit an evaluation record",
			"GET /evaluations":                "List evaluations (q, grade, sort, dir)",
			"GET /evaluations/{id}":           "Get one scored evaluation",
			"GET /evaluations/{id}/report":    "Download the PDF report",
			"GET /evaluations/export":         "Download the listing as Excel",
			"POST /evaluations/import":        "Import records from Gmail",
			"POST /evaluations/draft-comment": "Draft an evaluator comment",
			"GET /health":                     "Health check",
			"GET /metrics":                    "Prometheus metrics",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"backend_ready": s.svc.Ready(),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var rec models.EvaluationRecord
	if err := decodeBody(w, r, &rec); err != nil {
		s.respondErr(w, err)
		return
	}

	scored, err := s.svc.Submit(r.Context(), rec)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	w.Header().Set("Location", "/evaluations/"+scored.ID)
	s.respondJSON(w, http.StatusCreated, scored)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	opts, err := query.ParseOptions(r.URL.Query())
	if err != nil {
		s.respondErr(w, err)
		return
	}

	records, err := s.svc.List(r.Context(), opts)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.ListResponse{
		Records:   records,
		Count:     len(records),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	scored, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, scored)
}

// handleReport returns the rendered PDF report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.RenderReport(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondFile(w, "application/pdf", doc.Filename, doc.Bytes)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts, err := query.ParseOptions(r.URL.Query())
	if err != nil {
		s.respondErr(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.svc.Export(r.Context(), opts, &buf); err != nil {
		s.respondErr(w, err)
		return
	}
	filename := fmt.Sprintf("evaluations_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	s.respondFile(w, xlsxMIME, filename, buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			s.respondErr(w, err)
			return
		}
	}

	result, err := s.svc.Import(r.Context(), req.Subject)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDraftComment(w http.ResponseWriter, r *http.Request) {
	var req llm.DraftRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondErr(w, err)
		return
	}

	draft, err := s.svc.DraftComment(r.Context(), req)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, draft)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, scoring.ErrIncompleteScore),
		errors.Is(err, scoring.ErrInvalidMark),
		errors.Is(err, scoring.ErrScoreMismatch),
		errors.Is(err, scoring.ErrInvalidRecord),
		errors.Is(err, query.ErrInvalidQuery),
		errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, render.ErrBackendUnavailable),
		errors.Is(err, service.ErrFeatureDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondErr sends the error with the status its kind maps to. Internal
// errors are logged and not echoed.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		s.logger.Error("Request failed", zap.Error(err))
		message = "internal server error"
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "5")
	}
	s.respondError(w, status, message)
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func (s *Server) respondFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("Failed to write response body", zap.Error(err))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
