package models

import "time"

// Criterion is the stable key of one assessment dimension
type Criterion string

// The ten assessment criteria, in document order
const (
	Punctuality        Criterion = "punctuality"
	Attendance         Criterion = "attendance"
	TechnicalKnowledge Criterion = "technical_knowledge"
	QualityOfWork      Criterion = "quality_of_work"
	Productivity       Criterion = "productivity"
	Initiative         Criterion = "initiative"
	Teamwork           Criterion = "teamwork"
	Communication      Criterion = "communication"
	Adaptability       Criterion = "adaptability"
	Professionalism    Criterion = "professionalism"
)

// Criteria lists every criterion in the order it is printed
var Criteria = []Criterion{
	Punctuality,
	Attendance,
	TechnicalKnowledge,
	QualityOfWork,
	Productivity,
	Initiative,
	Teamwork,
	Communication,
	Adaptability,
	Professionalism,
}

var criterionLabels = map[Criterion]string{
	Punctuality:        "Punctuality",
	Attendance:         "Attendance & Reliability",
	TechnicalKnowledge: "Technical Knowledge",
	QualityOfWork:      "Quality of Work",
	Productivity:       "Productivity",
	Initiative:         "Initiative",
	Teamwork:           "Teamwork",
	Communication:      "Communication Skills",
	Adaptability:       "Adaptability",
	Professionalism:    "Professionalism",
}

// Label returns the human readable name of the criterion
func (c Criterion) Label() string {
	if l, ok := criterionLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the ten defined criteria
func (c Criterion) Valid() bool {
	_, ok := criterionLabels[c]
	return ok
}

// Mark scale bounds
const (
	MinMark = 1
	MaxMark = 4
)

// MarkNames maps each mark to its scale name
var MarkNames = map[int]string{
	1: "Unsatisfactory",
	2: "Needs Improvement",
	3: "Good",
	4: "Excellent",
}

// Grade is a letter band derived from the total score percentage
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Grades lists every grade from best to worst
var Grades = []Grade{GradeAPlus, GradeA, GradeB, GradeC, GradeD, GradeF}

// EvaluationRecord is the record shape consumed from storage or the API.
// Total and Grade are optional claims; they are always recomputed.
type EvaluationRecord struct {
	ID                    string            `json:"id"`
	SubjectName           string            `json:"subject_name"`
	SubjectEmail          string            `json:"subject_email"`
	EvaluatorName         string            `json:"evaluator_name,omitempty"`
	EvaluatorOrganization string            `json:"evaluator_organization"`
	SubmittedAt           time.Time         `json:"submitted_at"`
	Marks                 map[Criterion]int `json:"marks"`
	Comments              string            `json:"comments,omitempty"`
	Total                 *int              `json:"total,omitempty"`
	Grade                 *Grade            `json:"grade,omitempty"`
}

// ScoredRecord is a validated record with its derived score
type ScoredRecord struct {
	EvaluationRecord
	Total            int     `json:"total"`
	Percentage       float64 `json:"percentage"`
	Grade            Grade   `json:"grade"`
	PerformanceLabel string  `json:"performance_label"`
}

// Mark returns the mark for a criterion
func (r ScoredRecord) Mark(c Criterion) int {
	return r.Marks[c]
}

// ListResponse is the payload returned when browsing records
type ListResponse struct {
	Records   []ScoredRecord `json:"records"`
	Count     int            `json:"count"`
	Timestamp string         `json:"timestamp"`
}
