package report

import (
	"fmt"
	"time"

	"github.com/fmuoria/intern-evaluation/internal/layout"
	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
)

// HeaderData is the content of the document header
type HeaderData struct {
	Title       string
	Subtitle    string
	DocumentID  string
	GeneratedAt time.Time
}

// InfoRow is one key/value row of the information table
type InfoRow struct {
	Key   string
	Value string
}

// CriterionRow is one row of the criteria table
type CriterionRow struct {
	Label  string
	Mark   int
	Rating string
}

// CriteriaData is the criteria table plus the optional comments
type CriteriaData struct {
	Rows     []CriterionRow
	Comments string
}

// SummaryData is the content of the overall assessment box
type SummaryData struct {
	Total          int
	Max            int
	Percentage     float64
	Grade          models.Grade
	Label          string
	Recommendation string
}

// SignatureData names the two signing parties
type SignatureData struct {
	LeftLabel  string
	LeftName   string
	RightLabel string
	RightName  string
}

// FooterData is the attribution printed on every page
type FooterData struct {
	Attribution string
}

const dateLayout = "02 January 2006"

func headerData(docID string, generated time.Time) HeaderData {
	return HeaderData{
		Title:       "INTERNSHIP EVALUATION REPORT",
		Subtitle:    "Intern Performance Assessment",
		DocumentID:  docID,
		GeneratedAt: generated,
	}
}

func infoRows(rec models.ScoredRecord) []InfoRow {
	evaluator := rec.EvaluatorName
	if evaluator == "" {
		evaluator = "-"
	}
	submitted := "-"
	if !rec.SubmittedAt.IsZero() {
		submitted = rec.SubmittedAt.UTC().Format(dateLayout)
	}
	return []InfoRow{
		{Key: "Intern Name", Value: rec.SubjectName},
		{Key: "Intern Email", Value: orDash(rec.SubjectEmail)},
		{Key: "Evaluator", Value: evaluator},
		{Key: "Organization", Value: orDash(rec.EvaluatorOrganization)},
		{Key: "Submission Date", Value: submitted},
	}
}

func criteriaData(rec models.ScoredRecord) CriteriaData {
	rows := make([]CriterionRow, 0, len(models.Criteria))
	for _, c := range models.Criteria {
		mark := rec.Mark(c)
		rows = append(rows, CriterionRow{
			Label:  c.Label(),
			Mark:   mark,
			Rating: scoring.RatingWord(mark),
		})
	}
	return CriteriaData{Rows: rows, Comments: rec.Comments}
}

func summaryData(rec models.ScoredRecord) SummaryData {
	return SummaryData{
		Total:          rec.Total,
		Max:            scoring.MaxTotal,
		Percentage:     rec.Percentage,
		Grade:          rec.Grade,
		Label:          rec.PerformanceLabel,
		Recommendation: scoring.Recommendation(rec.Percentage),
	}
}

func signatureData(rec models.ScoredRecord) SignatureData {
	return SignatureData{
		LeftLabel:  "Evaluator Signature",
		LeftName:   rec.EvaluatorName,
		RightLabel: "Internship Coordinator",
		RightName:  rec.EvaluatorOrganization,
	}
}

func footerData(attribution string) FooterData {
	if attribution == "" {
		attribution = "Generated by the Internship Evaluation System. Confidential."
	}
	return FooterData{Attribution: attribution}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// fitText truncates s with an ellipsis so it fits width
func fitText(s string, style layout.FontStyle, size, width float64) string {
	if layout.StringWidth(s, style, size) <= width {
		return s
	}
	const ellipsis = "..."
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if layout.StringWidth(string(runes)+ellipsis, style, size) <= width {
			return string(runes) + ellipsis
		}
	}
	return ellipsis
}

func scoreText(mark int) string {
	return fmt.Sprintf("%d / %d", mark, models.MaxMark)
}
