// Package query filters, searches and sorts scored evaluation records.
// Every function returns a new slice and leaves its input untouched.
package query

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
)

// ErrInvalidQuery is returned for an unknown sort key, direction or grade
var ErrInvalidQuery = errors.New("invalid query")

// SortKey selects the field records are ordered by
type SortKey string

const (
	SortBySubmittedAt SortKey = "submitted_at"
	SortByTotal       SortKey = "total"
	SortBySubjectName SortKey = "subject_name"
)

// Direction is the sort direction
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// AllGrades disables grade filtering
const AllGrades = "all"

// Options is a complete query over a record list
type Options struct {
	Text      string
	Grade     string
	Key       SortKey
	Direction Direction
}

// DefaultOptions returns the "newest first" listing
func DefaultOptions() Options {
	return Options{Grade: AllGrades, Key: SortBySubmittedAt, Direction: Descending}
}

// ParseOptions reads q, grade, sort and dir from URL query values
func ParseOptions(values url.Values) (Options, error) {
	opts := Options{
		Text:      values.Get("q"),
		Grade:     values.Get("grade"),
		Key:       SortKey(values.Get("sort")),
		Direction: Direction(values.Get("dir")),
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	if o.Grade == "" {
		o.Grade = AllGrades
	}
	if o.Key == "" {
		o.Key = SortBySubmittedAt
	}
	if o.Direction == "" {
		o.Direction = Descending
	}
	return o
}

// Validate checks every parameter before any work is done
func (o Options) Validate() error {
	o = o.withDefaults()
	if _, err := gradeFilter(o.Grade); err != nil {
		return err
	}
	if _, err := comparator(o.Key); err != nil {
		return err
	}
	return validateDirection(o.Direction)
}

// Apply runs search, grade filter and sort, in that order
func Apply(records []models.ScoredRecord, opts Options) ([]models.ScoredRecord, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	out := Search(records, opts.Text)
	out, err := FilterByGrade(out, opts.Grade)
	if err != nil {
		return nil, err
	}
	return Sort(out, opts.Key, opts.Direction)
}

// Search keeps records whose subject name or email contains text,
// case-insensitively. Blank text returns the input unchanged.
func Search(records []models.ScoredRecord, text string) []models.ScoredRecord {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return records
	}

	out := make([]models.ScoredRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.SubjectName), needle) ||
			strings.Contains(strings.ToLower(r.SubjectEmail), needle) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByGrade keeps records with exactly the given grade; "all" is identity
func FilterByGrade(records []models.ScoredRecord, grade string) ([]models.ScoredRecord, error) {
	want, err := gradeFilter(grade)
	if err != nil {
		return nil, err
	}
	if want == "" {
		return records, nil
	}

	out := make([]models.ScoredRecord, 0, len(records))
	for _, r := range records {
		if r.Grade == want {
			out = append(out, r)
		}
	}
	return out, nil
}

// Sort returns a stably sorted copy of records
func Sort(records []models.ScoredRecord, key SortKey, dir Direction) ([]models.ScoredRecord, error) {
	if key == "" {
		key = SortBySubmittedAt
	}
	if dir == "" {
		dir = Descending
	}
	cmpFn, err := comparator(key)
	if err != nil {
		return nil, err
	}
	if err := validateDirection(dir); err != nil {
		return nil, err
	}

	out := slices.Clone(records)
	if dir == Descending {
		slices.SortStableFunc(out, func(a, b models.ScoredRecord) int { return cmpFn(b, a) })
	} else {
		slices.SortStableFunc(out, cmpFn)
	}
	return out, nil
}

func gradeFilter(grade string) (models.Grade, error) {
	g := strings.TrimSpace(grade)
	if g == "" || strings.EqualFold(g, AllGrades) {
		return "", nil
	}
	parsed, ok := scoring.ParseGrade(g)
	if !ok {
		return "", fmt.Errorf("%w: unknown grade %q", ErrInvalidQuery, grade)
	}
	return parsed, nil
}

func comparator(key SortKey) (func(a, b models.ScoredRecord) int, error) {
	switch key {
	case SortBySubmittedAt:
		return func(a, b models.ScoredRecord) int { return a.SubmittedAt.Compare(b.SubmittedAt) }, nil
	case SortByTotal:
		return func(a, b models.ScoredRecord) int { return cmp.Compare(a.Total, b.Total) }, nil
	case SortBySubjectName:
		return func(a, b models.ScoredRecord) int { return strings.Compare(a.SubjectName, b.SubjectName) }, nil
	default:
		return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidQuery, key)
	}
}

func validateDirection(dir Direction) error {
	switch dir {
	case Ascending, Descending:
		return nil
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidQuery, dir)
	}
}
