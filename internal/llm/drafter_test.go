package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func fullMarks(mark int) map[models.Criterion]int {
	marks := make(map[models.Criterion]int, len(models.Criteria))
	for _, c := range models.Criteria {
		marks[c] = mark
	}
	return marks
}

func TestDraftComment(t *testing.T) {
	gen := &fakeGenerator{response: "Here is the draft:\n" + `{"comment": " Reliable and thorough. ", "strengths": ["Teamwork"], "improvements": ["Initiative"]}` + "\nThanks"}
	d := NewCommentDrafter(gen)

	marks := fullMarks(3)
	marks[models.Teamwork] = 4
	draft, err := d.DraftComment(context.Background(), DraftRequest{SubjectName: "Jane", Marks: marks, Notes: "Led the demo day."})
	require.NoError(t, err)

	assert.Equal(t, "Reliable and thorough.", draft.Comment)
	assert.Equal(t, []string{"Teamwork"}, draft.Strengths)
	assert.Equal(t, []string{"Initiative"}, draft.Improvements)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Name: Jane")
	assert.Contains(t, prompt, "- Teamwork: 4/4 (Excellent)")
	assert.Contains(t, prompt, "Total: 31/40 (77.5%), grade B, Good")
	assert.Contains(t, prompt, "Led the demo day.")
}

func TestDraftComment_InvalidMarksSkipModel(t *testing.T) {
	gen := &fakeGenerator{}
	d := NewCommentDrafter(gen)

	marks := fullMarks(3)
	delete(marks, models.Communication)
	_, err := d.DraftComment(context.Background(), DraftRequest{Marks: marks})
	require.ErrorIs(t, err, scoring.ErrIncompleteScore)
	assert.Empty(t, gen.prompts)
}

func TestDraftComment_ModelError(t *testing.T) {
	boom := errors.New("quota exceeded")
	d := NewCommentDrafter(&fakeGenerator{err: boom})

	_, err := d.DraftComment(context.Background(), DraftRequest{Marks: fullMarks(2)})
	assert.ErrorIs(t, err, boom)
}

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
	}{
		{"plain json", `{"comment": "Good work"}`, false},
		{"no json", "I cannot help with that", true},
		{"malformed", `{"comment": }`, true},
		{"empty comment", `{"comment": "  "}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDraft(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
