package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fmuoria/intern-evaluation/internal/models"
)

// MaxTotal is the highest possible total: ten criteria at mark 4
const MaxTotal = 40

var (
	// ErrIncompleteScore is returned when one of the ten criteria has no mark
	ErrIncompleteScore = errors.New("incomplete score")
	// ErrInvalidMark is returned for a mark outside 1-4 or an unknown criterion
	ErrInvalidMark = errors.New("invalid mark")
	// ErrScoreMismatch is returned when a supplied total or grade disagrees with the marks
	ErrScoreMismatch = errors.New("supplied score does not match marks")
	// ErrInvalidRecord is returned when identity fields are missing
	ErrInvalidRecord = errors.New("invalid evaluation record")
)

// ComputeTotal sums the ten criterion marks. A missing criterion is an
// error; it is never treated as zero.
func ComputeTotal(marks map[models.Criterion]int) (int, error) {
	for c := range marks {
		if !c.Valid() {
			return 0, fmt.Errorf("%w: unknown criterion %q", ErrInvalidMark, c)
		}
	}

	total := 0
	for _, c := range models.Criteria {
		mark, ok := marks[c]
		if !ok {
			return 0, fmt.Errorf("%w: missing %s", ErrIncompleteScore, c)
		}
		if mark < models.MinMark || mark > models.MaxMark {
			return 0, fmt.Errorf("%w: %s=%d", ErrInvalidMark, c, mark)
		}
		total += mark
	}

	return total, nil
}

// Percentage returns total/max*100 without rounding
func Percentage(total, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(total) / float64(max) * 100
}

// ComputeGrade bands the raw percentage total/max*100 into a letter grade
func ComputeGrade(total, max int) models.Grade {
	return lookup(GradeBands, Percentage(total, max), models.GradeF)
}

// PerformanceLabel returns the qualitative label for a percentage
func PerformanceLabel(percentage float64) string {
	return lookup(PerformanceBands, percentage, lowestPerformanceLabel)
}

// RatingWord returns the rating printed next to a single criterion mark
func RatingWord(mark int) string {
	return lookup(RatingBands, float64(mark), lowestRating)
}

// Recommendation returns the short recommendation for a percentage
func Recommendation(percentage float64) string {
	return lookup(RecommendationBands, percentage, lowestRecommendation)
}

// ParseGrade converts a string to a known grade
func ParseGrade(s string) (models.Grade, bool) {
	for _, g := range models.Grades {
		if strings.EqualFold(string(g), strings.TrimSpace(s)) {
			return g, true
		}
	}
	return "", false
}

// Score validates a record and derives its total, grade and label.
// Caller supplied totals and grades are checked, never trusted.
func Score(record models.EvaluationRecord) (models.ScoredRecord, error) {
	if strings.TrimSpace(record.ID) == "" {
		return models.ScoredRecord{}, fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(record.SubjectName) == "" {
		return models.ScoredRecord{}, fmt.Errorf("%w: subject_name is required", ErrInvalidRecord)
	}

	total, err := ComputeTotal(record.Marks)
	if err != nil {
		return models.ScoredRecord{}, fmt.Errorf("record %s: %w", record.ID, err)
	}
	grade := ComputeGrade(total, MaxTotal)

	if record.Total != nil && *record.Total != total {
		return models.ScoredRecord{}, fmt.Errorf("%w: record %s claims total %d, marks sum to %d",
			ErrScoreMismatch, record.ID, *record.Total, total)
	}
	if record.Grade != nil && *record.Grade != grade {
		return models.ScoredRecord{}, fmt.Errorf("%w: record %s claims grade %s, marks give %s",
			ErrScoreMismatch, record.ID, *record.Grade, grade)
	}

	// Copy the marks so the scored record never aliases caller state
	marks := make(map[models.Criterion]int, len(record.Marks))
	for c, m := range record.Marks {
		marks[c] = m
	}
	record.Marks = marks
	record.Total = nil
	record.Grade = nil

	pct := Percentage(total, MaxTotal)
	return models.ScoredRecord{
		EvaluationRecord: record,
		Total:            total,
		Percentage:       pct,
		Grade:            grade,
		PerformanceLabel: PerformanceLabel(pct),
	}, nil
}

