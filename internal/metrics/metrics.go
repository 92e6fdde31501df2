// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluations_submitted_total",
			Help: "Total number of evaluation records accepted",
		},
	)

	EvaluationsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_rejected_total",
			Help: "Total number of evaluation records rejected, by reason",
		},
		[]string{"reason"},
	)

	EvaluationsByGrade = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_graded_total",
			Help: "Total number of accepted evaluations per grade",
		},
		[]string{"grade"},
	)

	ReportsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_rendered_total",
			Help: "Total number of report renders, by outcome",
		},
		[]string{"outcome"},
	)

	ReportRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_render_duration_seconds",
			Help:    "Duration of report rendering in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	ReportPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_pages",
			Help:    "Number of pages per rendered report",
			Buckets: []float64{1, 2, 3, 4, 6, 10},
		},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "evaluation_query_duration_seconds",
			Help: "Duration of record listing and export queries in seconds",
		},
		[]string{"operation"},
	)

	RecordsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_imported_total",
			Help: "Total number of mail attachments processed by import, by result",
		},
		[]string{"result"},
	)
)
