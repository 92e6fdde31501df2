// Package llm drafts evaluator comments with a generative model. Drafts
// are suggestions; they are never stored or scored.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
)

// DraftRequest carries the marks an evaluator has entered so far
type DraftRequest struct {
	SubjectName string                   `json:"subject_name"`
	Marks       map[models.Criterion]int `json:"marks"`
	Notes       string                   `json:"notes,omitempty"`
}

// Draft is a suggested comment
type Draft struct {
	Comment      string   `json:"comment"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// CommentDrafter turns marks into a suggested evaluator comment
type CommentDrafter struct {
	gen Generator
}

// NewCommentDrafter creates a drafter backed by gen
func NewCommentDrafter(gen Generator) *CommentDrafter {
	return &CommentDrafter{gen: gen}
}

// DraftComment validates the marks and asks the model for a comment
func (d *CommentDrafter) DraftComment(ctx context.Context, req DraftRequest) (*Draft, error) {
	total, err := scoring.ComputeTotal(req.Marks)
	if err != nil {
		return nil, err
	}

	response, err := d.gen.GenerateContent(ctx, buildDraftPrompt(req, total))
	if err != nil {
		return nil, fmt.Errorf("failed to draft comment: %w", err)
	}

	draft, err := parseDraft(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}
	return draft, nil
}

func buildDraftPrompt(req DraftRequest, total int) string {
	var sb strings.Builder
	percentage := scoring.Percentage(total, scoring.MaxTotal)

	sb.WriteString("You are an experienced internship supervisor writing the comments section of an intern's evaluation report.\n\n")

	sb.WriteString("## INTERN\n")
	name := req.SubjectName
	if name == "" {
		name = "the intern"
	}
	sb.WriteString(fmt.Sprintf("Name: %s\n\n", name))

	sb.WriteString("## MARKS (1 = Unsatisfactory, 4 = Excellent)\n")
	for _, c := range models.Criteria {
		mark := req.Marks[c]
		sb.WriteString(fmt.Sprintf("- %s: %d/%d (%s)\n", c.Label(), mark, models.MaxMark, scoring.RatingWord(mark)))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d/%d (%.1f%%), grade %s, %s\n\n",
		total, scoring.MaxTotal, percentage, scoring.ComputeGrade(total, scoring.MaxTotal), scoring.PerformanceLabel(percentage)))

	if notes := strings.TrimSpace(req.Notes); notes != "" {
		sb.WriteString("## EVALUATOR NOTES\n")
		sb.WriteString(notes)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## INSTRUCTIONS\n")
	sb.WriteString("Write a professional comment of 80 to 150 words that is consistent with the marks. Mention the strongest areas first, then the areas to improve. Do not invent facts that are not supported by the marks or notes.\n\n")
	sb.WriteString("Provide your answer in the following JSON format:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "comment": "<the comment text>",` + "\n")
	sb.WriteString(`  "strengths": ["<criterion label>", ...],` + "\n")
	sb.WriteString(`  "improvements": ["<criterion label>", ...]` + "\n")
	sb.WriteString("}\n")

	return sb.String()
}

func parseDraft(response string) (*Draft, error) {
	// Find JSON in response (in case there's extra text)
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(response[startIdx:endIdx+1]), &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	draft.Comment = strings.TrimSpace(draft.Comment)
	if draft.Comment == "" {
		return nil, fmt.Errorf("empty comment in response")
	}
	return &draft, nil
}
