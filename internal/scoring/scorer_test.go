package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/intern-evaluation/internal/models"
)

func uniformMarks(mark int) map[models.Criterion]int {
	marks := make(map[models.Criterion]int, len(models.Criteria))
	for _, c := range models.Criteria {
		marks[c] = mark
	}
	return marks
}

// marksForTotal spreads total over the ten criteria (10 <= total <= 40)
func marksForTotal(total int) map[models.Criterion]int {
	marks := uniformMarks(1)
	extra := total - len(models.Criteria)
	for _, c := range models.Criteria {
		add := min(extra, 3)
		marks[c] += add
		extra -= add
	}
	return marks
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		marks map[models.Criterion]int
		want  int
	}{
		{name: "All fours", marks: uniformMarks(4), want: 40},
		{name: "All ones", marks: uniformMarks(1), want: 10},
		{name: "All threes", marks: uniformMarks(3), want: 30},
		{name: "Mixed", marks: marksForTotal(27), want: 27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTotal(tt.marks)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotal_EqualsArithmeticSum(t *testing.T) {
	for total := 10; total <= 40; total++ {
		marks := marksForTotal(total)
		sum := 0
		for _, m := range marks {
			sum += m
		}
		got, err := ComputeTotal(marks)
		require.NoError(t, err)
		assert.Equal(t, sum, got)
	}
}

func TestComputeTotal_MissingCriterion(t *testing.T) {
	for _, c := range models.Criteria {
		t.Run(string(c), func(t *testing.T) {
			marks := uniformMarks(4)
			delete(marks, c)

			_, err := ComputeTotal(marks)
			require.ErrorIs(t, err, ErrIncompleteScore)
			assert.Contains(t, err.Error(), string(c))
		})
	}
}

func TestComputeTotal_InvalidMarks(t *testing.T) {
	tests := []struct {
		name  string
		patch func(map[models.Criterion]int)
	}{
		{name: "Zero mark", patch: func(m map[models.Criterion]int) { m[models.Teamwork] = 0 }},
		{name: "Mark above scale", patch: func(m map[models.Criterion]int) { m[models.Initiative] = 5 }},
		{name: "Unknown criterion", patch: func(m map[models.Criterion]int) { m["charisma"] = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marks := uniformMarks(3)
			tt.patch(marks)
			_, err := ComputeTotal(marks)
			assert.ErrorIs(t, err, ErrInvalidMark)
		})
	}
}

func TestComputeGrade(t *testing.T) {
	tests := []struct {
		total int
		want  models.Grade
	}{
		{total: 40, want: models.GradeAPlus},
		{total: 36, want: models.GradeAPlus},
		{total: 35, want: models.GradeA},
		{total: 32, want: models.GradeA},
		{total: 31, want: models.GradeB},
		{total: 28, want: models.GradeB},
		{total: 27, want: models.GradeC},
		{total: 24, want: models.GradeC},
		{total: 23, want: models.GradeD},
		{total: 20, want: models.GradeD},
		{total: 19, want: models.GradeF},
		{total: 10, want: models.GradeF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeGrade(tt.total, MaxTotal), "total=%d", tt.total)
	}
}

func TestComputeGrade_UsesRawRatio(t *testing.T) {
	// 89.999% must not be rounded up into A+
	assert.Equal(t, models.GradeA, ComputeGrade(89999, 100000))
	assert.Equal(t, models.GradeAPlus, ComputeGrade(90000, 100000))
	assert.Equal(t, models.GradeF, ComputeGrade(10, 0))
}

func TestPerformanceLabel(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{pct: 100, want: "Outstanding"},
		{pct: 90, want: "Outstanding"},
		{pct: 89.99, want: "Excellent"},
		{pct: 80, want: "Excellent"},
		{pct: 75, want: "Good"},
		{pct: 70, want: "Good"},
		{pct: 60, want: "Satisfactory"},
		{pct: 59.9, want: "Needs Improvement"},
		{pct: 0, want: "Needs Improvement"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceLabel(tt.pct), "pct=%v", tt.pct)
	}
}

func TestRatingWord(t *testing.T) {
	assert.Equal(t, "Excellent", RatingWord(4))
	assert.Equal(t, "Good", RatingWord(3))
	assert.Equal(t, "Below Average", RatingWord(2))
	assert.Equal(t, "Poor", RatingWord(1))
}

func TestBandTablesAreDescending(t *testing.T) {
	assertDescending := func(name string, mins []float64) {
		for i := 1; i < len(mins); i++ {
			assert.Greater(t, mins[i-1], mins[i], "%s band %d", name, i)
		}
	}

	var mins []float64
	for _, b := range GradeBands {
		mins = append(mins, b.Min)
	}
	assertDescending("grade", mins)

	mins = mins[:0]
	for _, b := range PerformanceBands {
		mins = append(mins, b.Min)
	}
	assertDescending("performance", mins)

	mins = mins[:0]
	for _, b := range RatingBands {
		mins = append(mins, b.Min)
	}
	assertDescending("rating", mins)
}

func TestScore_AllThrees(t *testing.T) {
	record := models.EvaluationRecord{
		ID:          "rec-1",
		SubjectName: "Jane Doe",
		SubmittedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Marks:       uniformMarks(3),
	}

	scored, err := Score(record)
	require.NoError(t, err)

	assert.Equal(t, 30, scored.Total)
	assert.Equal(t, 75.0, scored.Percentage)
	assert.Equal(t, models.GradeB, scored.Grade)
	assert.Equal(t, "Good", scored.PerformanceLabel)
}

func TestScore_ChecksSuppliedScore(t *testing.T) {
	base := models.EvaluationRecord{ID: "rec-2", SubjectName: "John", Marks: uniformMarks(4)}

	t.Run("Matching claims accepted", func(t *testing.T) {
		r := base
		total := 40
		grade := models.GradeAPlus
		r.Total, r.Grade = &total, &grade
		scored, err := Score(r)
		require.NoError(t, err)
		assert.Nil(t, scored.EvaluationRecord.Total)
		assert.Equal(t, 40, scored.Total)
	})

	t.Run("Stale total rejected", func(t *testing.T) {
		r := base
		total := 12
		r.Total = &total
		_, err := Score(r)
		assert.ErrorIs(t, err, ErrScoreMismatch)
	})

	t.Run("Stale grade rejected", func(t *testing.T) {
		r := base
		grade := models.GradeC
		r.Grade = &grade
		_, err := Score(r)
		assert.ErrorIs(t, err, ErrScoreMismatch)
	})
}

func TestScore_RejectsIncompleteAndAnonymous(t *testing.T) {
	marks := uniformMarks(2)
	delete(marks, models.Adaptability)
	_, err := Score(models.EvaluationRecord{ID: "x", SubjectName: "A", Marks: marks})
	assert.ErrorIs(t, err, ErrIncompleteScore)

	_, err = Score(models.EvaluationRecord{SubjectName: "A", Marks: uniformMarks(2)})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = Score(models.EvaluationRecord{ID: "x", Marks: uniformMarks(2)})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestScore_DoesNotAliasMarks(t *testing.T) {
	marks := uniformMarks(3)
	scored, err := Score(models.EvaluationRecord{ID: "x", SubjectName: "A", Marks: marks})
	require.NoError(t, err)

	marks[models.Teamwork] = 1
	assert.Equal(t, 3, scored.Mark(models.Teamwork))
}

func TestParseGrade(t *testing.T) {
	g, ok := ParseGrade("a+")
	assert.True(t, ok)
	assert.Equal(t, models.GradeAPlus, g)

	_, ok = ParseGrade("E")
	assert.False(t, ok)
}
