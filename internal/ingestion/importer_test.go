package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/store"
)

type fakeMail struct {
	attachments []Attachment
	err         error
	subjects    []string
}

func (f *fakeMail) FetchAttachments(ctx context.Context, subject string) ([]Attachment, error) {
	f.subjects = append(f.subjects, subject)
	return f.attachments, f.err
}

func recordJSON(t *testing.T, id string, mark int) []byte {
	t.Helper()
	marks := make(map[models.Criterion]int, len(models.Criteria))
	for _, c := range models.Criteria {
		marks[c] = mark
	}
	data, err := json.Marshal(models.EvaluationRecord{
		ID:          id,
		SubjectName: "Intern " + id,
		SubmittedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Marks:       marks,
	})
	require.NoError(t, err)
	return data
}

func TestImporter_Import(t *testing.T) {
	mail := &fakeMail{attachments: []Attachment{
		{MessageID: "m1", Sender: "Grace Mutua", Filename: "eval.json", Data: recordJSON(t, "rec-1", 3)},
		{MessageID: "m1", Sender: "Grace Mutua", Filename: "photo.png", Data: []byte{0x89, 'P', 'N', 'G'}},
		{MessageID: "m2", Sender: "Unknown", Filename: "bad.JSON", Data: recordJSON(t, "rec-2", 7)},
		{MessageID: "m3", Sender: "Unknown", Filename: "garbage.json", Data: []byte("{not json")},
	}}
	st := store.NewFileStore(t.TempDir())
	im := NewImporter(mail, st, nil)

	result, err := im.Import(context.Background(), "Intern Evaluation")
	require.NoError(t, err)

	assert.Equal(t, []string{"Intern Evaluation"}, mail.subjects)
	assert.Equal(t, []string{"rec-1"}, result.Imported)
	assert.Equal(t, 1, result.Ignored)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, "bad.JSON", result.Failed[0].Filename)
	assert.Contains(t, result.Failed[0].Reason, "invalid mark")
	assert.Equal(t, "garbage.json", result.Failed[1].Filename)

	rec, err := st.Get(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Grace Mutua", rec.EvaluatorName)

	_, err = st.Get(context.Background(), "rec-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImporter_SecondRunReportsDuplicates(t *testing.T) {
	mail := &fakeMail{attachments: []Attachment{
		{MessageID: "m1", Filename: "a.json", Data: recordJSON(t, "", 4)},
	}}
	im := NewImporter(mail, store.NewFileStore(t.TempDir()), nil)

	first, err := im.Import(context.Background(), "Evaluations")
	require.NoError(t, err)
	require.Len(t, first.Imported, 1)

	second, err := im.Import(context.Background(), "Evaluations")
	require.NoError(t, err)
	assert.Empty(t, second.Imported)
	assert.Equal(t, first.Imported, second.Duplicates)
}

func TestImporter_SourceError(t *testing.T) {
	boom := errors.New("quota exceeded")
	im := NewImporter(&fakeMail{err: boom}, store.NewFileStore(t.TempDir()), nil)

	_, err := im.Import(context.Background(), "Evaluations")
	assert.ErrorIs(t, err, boom)
}

func TestExtractSenderName(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{`"Grace Mutua" <grace@example.com>`, "Grace Mutua"},
		{"Peter Otieno <peter@example.com>", "Peter Otieno"},
		{"coordinator@example.com", "coordinator"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		msg := &gmail.Message{Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{{Name: "From", Value: tt.from}},
		}}
		assert.Equal(t, tt.want, extractSenderName(msg), tt.from)
	}
	assert.Equal(t, "Unknown", extractSenderName(&gmail.Message{}))
}

func TestAttachmentParts_Nested(t *testing.T) {
	payload := &gmail.MessagePart{
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{}},
			{Filename: "a.json", Body: &gmail.MessagePartBody{AttachmentId: "att-a"}},
			{Parts: []*gmail.MessagePart{
				{Filename: "b.json", Body: &gmail.MessagePartBody{AttachmentId: "att-b"}},
				{Filename: "inline.png", Body: &gmail.MessagePartBody{}},
			}},
		},
	}

	parts := attachmentParts(payload)
	require.Len(t, parts, 2)
	assert.Equal(t, "a.json", parts[0].Filename)
	assert.Equal(t, "b.json", parts[1].Filename)
}
