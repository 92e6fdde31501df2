package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
)

const (
	summarySheet     = "Summary"
	evaluationsSheet = "Evaluations"
	commentsSheet    = "Comments"
)

// Options describes the listing being exported
type Options struct {
	// Filter is a human-readable description of the query that produced
	// the records, printed on the summary sheet
	Filter      string
	GeneratedAt time.Time
}

// ExportToExcel writes the records to an Excel workbook at outputPath and
// returns the path actually written
func ExportToExcel(records []models.ScoredRecord, opts Options, outputPath string) (string, error) {
	f, err := build(records, opts)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

// WriteExcel streams the workbook to w
func WriteExcel(records []models.ScoredRecord, opts Options, w io.Writer) error {
	f, err := build(records, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel workbook: %w", err)
	}
	return nil
}

func build(records []models.ScoredRecord, opts Options) (*excelize.File, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(evaluationsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(commentsSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := createSummarySheet(f, summarySheet, records, opts); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createEvaluationsSheet(f, evaluationsSheet, records); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create evaluations sheet: %w", err)
	}
	if err := createCommentsSheet(f, commentsSheet, records); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create comments sheet: %w", err)
	}
	return f, nil
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// gradeFill is the row colour for each grade
var gradeFill = map[models.Grade]string{
	models.GradeAPlus: "C6EFCE",
	models.GradeA:     "C6EFCE",
	models.GradeB:     "FFEB9C",
	models.GradeC:     "FFC7CE",
	models.GradeD:     "FFC7CE",
	models.GradeF:     "FF9999",
}

func headerStyle(f *excelize.File, size float64, align string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: size, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: align, Vertical: "center"},
		Border:    thinBorder,
	})
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// createSummarySheet writes the export context, the grade distribution and
// the score statistics
func createSummarySheet(f *excelize.File, sheetName string, records []models.ScoredRecord, opts Options) error {
	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 40)

	header, err := headerStyle(f, 14, "left")
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	title := func(text string) {
		f.SetCellValue(sheetName, cell(1, row), text)
		f.SetCellStyle(sheetName, cell(1, row), cell(2, row), header)
		f.MergeCell(sheetName, cell(1, row), cell(2, row))
		row++
	}
	pair := func(label string, value interface{}) {
		f.SetCellValue(sheetName, cell(1, row), label)
		f.SetCellStyle(sheetName, cell(1, row), cell(1, row), labelStyle)
		f.SetCellValue(sheetName, cell(2, row), value)
		row++
	}

	title("Internship Evaluations")
	row++
	pair("Generated:", opts.GeneratedAt.Format("2006-01-02 15:04:05"))
	filter := opts.Filter
	if filter == "" {
		filter = "All evaluations"
	}
	pair("Filter:", filter)
	pair("Evaluations:", len(records))
	row++

	title("Grade Distribution")
	counts := make(map[models.Grade]int, len(models.Grades))
	for _, r := range records {
		counts[r.Grade]++
	}
	for _, g := range models.Grades {
		pair(string(g)+":", counts[g])
	}
	row++

	if len(records) == 0 {
		return nil
	}

	title("Score Statistics")
	sum, lo, hi := 0, records[0].Total, records[0].Total
	for _, r := range records {
		sum += r.Total
		lo = min(lo, r.Total)
		hi = max(hi, r.Total)
	}
	avg := float64(sum) / float64(len(records))
	pair("Average Score:", fmt.Sprintf("%.2f / %d", avg, scoring.MaxTotal))
	pair("Average Percentage:", fmt.Sprintf("%.1f%%", avg/float64(scoring.MaxTotal)*100))
	pair("Highest Score:", hi)
	pair("Lowest Score:", lo)
	pair("Score Range:", hi-lo)
	return nil
}

// createEvaluationsSheet writes one color-coded row per record with every
// criterion mark
func createEvaluationsSheet(f *excelize.File, sheetName string, records []models.ScoredRecord) error {
	headers := []string{"#", "Intern", "Email", "Evaluator", "Organization", "Submitted"}
	for _, c := range models.Criteria {
		headers = append(headers, c.Label())
	}
	headers = append(headers, "Total", "Percentage", "Grade", "Performance")

	header, err := headerStyle(f, 11, "center")
	if err != nil {
		return err
	}
	for col, h := range headers {
		f.SetCellValue(sheetName, cell(col+1, 1), h)
		f.SetCellStyle(sheetName, cell(col+1, 1), cell(col+1, 1), header)
	}
	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "F", 22)
	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheetName, "G", last, 14)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, Split: false, XSplit: 2, YSplit: 1, TopLeftCell: "C2", ActivePane: "bottomRight"})

	styles := make(map[models.Grade]int, len(gradeFill))
	for g, fill := range gradeFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		styles[g] = style
	}

	for i, r := range records {
		row := i + 2
		values := []interface{}{
			i + 1,
			r.SubjectName,
			r.SubjectEmail,
			r.EvaluatorName,
			r.EvaluatorOrganization,
			r.SubmittedAt.UTC().Format("2006-01-02"),
		}
		for _, c := range models.Criteria {
			values = append(values, r.Mark(c))
		}
		values = append(values, r.Total, fmt.Sprintf("%.1f%%", r.Percentage), string(r.Grade), r.PerformanceLabel)

		for col, v := range values {
			f.SetCellValue(sheetName, cell(col+1, row), v)
		}
		if style, ok := styles[r.Grade]; ok {
			f.SetCellStyle(sheetName, cell(1, row), cell(len(values), row), style)
		}
	}
	return nil
}

// createCommentsSheet writes the evaluator comments with the rating words
// of the weakest and strongest criteria
func createCommentsSheet(f *excelize.File, sheetName string, records []models.ScoredRecord) error {
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 80)

	header, err := headerStyle(f, 11, "center")
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	for col, h := range []string{"Intern", "Strongest Area", "Weakest Area", "Comments"} {
		f.SetCellValue(sheetName, cell(col+1, 1), h)
		f.SetCellStyle(sheetName, cell(col+1, 1), cell(col+1, 1), header)
	}

	for i, r := range records {
		row := i + 2
		strong, weak := extremes(r)
		f.SetCellValue(sheetName, cell(1, row), r.SubjectName)
		f.SetCellValue(sheetName, cell(2, row), fmt.Sprintf("%s (%s)", strong.Label(), scoring.RatingWord(r.Mark(strong))))
		f.SetCellValue(sheetName, cell(3, row), fmt.Sprintf("%s (%s)", weak.Label(), scoring.RatingWord(r.Mark(weak))))
		comments := r.Comments
		if comments == "" {
			comments = "No comments provided"
		}
		f.SetCellValue(sheetName, cell(4, row), comments)
		f.SetCellStyle(sheetName, cell(1, row), cell(4, row), wrapStyle)
	}
	return nil
}

// extremes returns the first highest and first lowest marked criteria in
// document order
func extremes(r models.ScoredRecord) (strong, weak models.Criterion) {
	strong, weak = models.Criteria[0], models.Criteria[0]
	for _, c := range models.Criteria[1:] {
		if r.Mark(c) > r.Mark(strong) {
			strong = c
		}
		if r.Mark(c) < r.Mark(weak) {
			weak = c
		}
	}
	return strong, weak
}
