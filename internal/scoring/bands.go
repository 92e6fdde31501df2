package scoring

import "github.com/fmuoria/intern-evaluation/internal/models"

// Band maps a lower bound (inclusive) to a value. Tables are ordered from
// the highest bound down; the first band whose bound is <= the input wins.
type Band[T any] struct {
	Min   float64
	Value T
}

// lookup returns the value of the first band satisfied by v, or fallback
func lookup[T any](bands []Band[T], v float64, fallback T) T {
	for _, b := range bands {
		if v >= b.Min {
			return b.Value
		}
	}
	return fallback
}

// GradeBands maps a total-score percentage to a letter grade
var GradeBands = []Band[models.Grade]{
	{Min: 90, Value: models.GradeAPlus},
	{Min: 80, Value: models.GradeA},
	{Min: 70, Value: models.GradeB},
	{Min: 60, Value: models.GradeC},
	{Min: 50, Value: models.GradeD},
}

// PerformanceBands maps a total-score percentage to the label printed in
// the overall assessment box. It is kept separate from GradeBands: the two
// ladders are owned by different parts of the report and may diverge.
var PerformanceBands = []Band[string]{
	{Min: 90, Value: "Outstanding"},
	{Min: 80, Value: "Excellent"},
	{Min: 70, Value: "Good"},
	{Min: 60, Value: "Satisfactory"},
}

// RatingBands maps a single criterion mark (1-4) to a rating word
var RatingBands = []Band[string]{
	{Min: 3.5, Value: "Excellent"},
	{Min: 3, Value: "Good"},
	{Min: 2.5, Value: "Fair"},
	{Min: 2, Value: "Below Average"},
}

// RecommendationBands maps a total-score percentage to the recommendation
// printed next to the performance label
var RecommendationBands = []Band[string]{
	{Min: 90, Value: "Highly recommended for full-time placement"},
	{Min: 80, Value: "Recommended for full-time placement"},
	{Min: 70, Value: "Recommended with minor development areas"},
	{Min: 60, Value: "Consider after further training"},
}

const (
	lowestPerformanceLabel = "Needs Improvement"
	lowestRating           = "Poor"
	lowestRecommendation   = "Not recommended at this time"
)
