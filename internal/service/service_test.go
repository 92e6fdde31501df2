package service

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/intern-evaluation/internal/ingestion"
	"github.com/fmuoria/intern-evaluation/internal/llm"
	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/query"
	"github.com/fmuoria/intern-evaluation/internal/render"
	"github.com/fmuoria/intern-evaluation/internal/report"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
	"github.com/fmuoria/intern-evaluation/internal/store"
)

var fixedNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts Options) (*Service, store.RecordSource) {
	t.Helper()
	st := store.NewFileStore(t.TempDir())
	renderer := report.NewRenderer(render.NewBackend("recorder", render.RecorderLoader(), nil), report.Options{}, nil)
	opts.Clock = func() time.Time { return fixedNow }
	return New(st, renderer, nil, opts), st
}

func record(id, name string, mark int, submitted time.Time) models.EvaluationRecord {
	marks := make(map[models.Criterion]int, len(models.Criteria))
	for _, c := range models.Criteria {
		marks[c] = mark
	}
	return models.EvaluationRecord{
		ID:          id,
		SubjectName: name,
		SubmittedAt: submitted,
		Marks:       marks,
	}
}

func TestSubmit(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	scored, err := svc.Submit(ctx, record("", "Amina Hassan", 4, time.Time{}))
	require.NoError(t, err)
	assert.NotEmpty(t, scored.ID)
	assert.Equal(t, fixedNow, scored.SubmittedAt)
	assert.Equal(t, 40, scored.Total)
	assert.Equal(t, models.GradeAPlus, scored.Grade)

	stored, err := st.Get(ctx, scored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amina Hassan", stored.SubjectName)
}

func TestSubmit_Rejections(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	incomplete := record("rec-1", "Brian", 3, fixedNow)
	delete(incomplete.Marks, models.Initiative)
	_, err := svc.Submit(ctx, incomplete)
	require.ErrorIs(t, err, scoring.ErrIncompleteScore)
	_, err = st.Get(ctx, "rec-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Submit(ctx, record("rec-2", "Carol", 3, fixedNow))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, record("rec-2", "Carol again", 4, fixedNow))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestList_AppliesQueryAndSkipsBrokenRecords(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	for _, rec := range []models.EvaluationRecord{
		record("a", "Amina Hassan", 4, fixedNow.Add(-48*time.Hour)),
		record("b", "Brian Kiprop", 3, fixedNow.Add(-24*time.Hour)),
		record("c", "Carol Njeri", 3, fixedNow),
	} {
		_, err := svc.Submit(ctx, rec)
		require.NoError(t, err)
	}
	broken := record("d", "Broken", 3, fixedNow)
	broken.Marks[models.Teamwork] = 9
	require.NoError(t, st.Put(ctx, broken))

	all, err := svc.List(ctx, query.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	opts := query.DefaultOptions()
	opts.Grade = "B"
	opts.Key = query.SortBySubjectName
	opts.Direction = query.Ascending
	bs, err := svc.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, "Brian Kiprop", bs[0].SubjectName)

	_, err = svc.List(ctx, query.Options{Key: "salary"})
	assert.ErrorIs(t, err, query.ErrInvalidQuery)
}

func TestRenderReport(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.RenderReport(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Submit(ctx, record("rec-1", "Amina Hassan", 3, fixedNow))
	require.NoError(t, err)

	doc, err := svc.RenderReport(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Internship_Evaluation_Amina_Hassan_2025-09-01.pdf", doc.Filename)
	assert.Equal(t, 1, doc.Pages)
}

func TestRenderToDir_ReportsProgress(t *testing.T) {
	svc, _ := newService(t, Options{})
	var messages []string
	svc.SetProgressCallback(func(current, total int, message string) {
		messages = append(messages, message)
	})

	outDir := filepath.Join(t.TempDir(), "reports")
	paths, err := svc.RenderToDir(context.Background(), []models.EvaluationRecord{
		record("a", "Amina Hassan", 4, fixedNow),
		record("b", "Brian Kiprop", 2, fixedNow),
	}, outDir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
	assert.Len(t, messages, 3)
	assert.Equal(t, "Rendered 2 reports", messages[2])
}

func TestExport(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()
	_, err := svc.Submit(ctx, record("a", "Amina Hassan", 4, fixedNow))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, query.DefaultOptions(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")), "xlsx is a zip archive")

	path, err := svc.ExportToFile(ctx, query.DefaultOptions(), filepath.Join(t.TempDir(), "evaluations"))
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))
}

type fakeMail struct{ attachments []ingestion.Attachment }

func (f *fakeMail) FetchAttachments(ctx context.Context, subject string) ([]ingestion.Attachment, error) {
	return f.attachments, nil
}

func TestImport(t *testing.T) {
	svc, _ := newService(t, Options{})
	_, err := svc.Import(context.Background(), "")
	require.ErrorIs(t, err, ErrFeatureDisabled)

	data, err := json.Marshal(record("mail-1", "Dan Mwangi", 3, fixedNow))
	require.NoError(t, err)
	st := store.NewFileStore(t.TempDir())
	mail := &fakeMail{attachments: []ingestion.Attachment{{MessageID: "m1", Filename: "eval.json", Data: data}}}
	renderer := report.NewRenderer(render.NewBackend("recorder", render.RecorderLoader(), nil), report.Options{}, nil)
	svc = New(st, renderer, nil, Options{Importer: ingestion.NewImporter(mail, st, nil), ImportSubject: "Evaluations"})

	result, err := svc.Import(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"mail-1"}, result.Imported)

	got, err := svc.Get(context.Background(), "mail-1")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Total)
}

type fakeGenerator struct{}

func (fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return `{"comment": "Consistent and dependable."}`, nil
}

func TestDraftComment(t *testing.T) {
	svc, _ := newService(t, Options{})
	req := llm.DraftRequest{Marks: record("", "", 3, fixedNow).Marks}

	_, err := svc.DraftComment(context.Background(), req)
	require.ErrorIs(t, err, ErrFeatureDisabled)

	svc, _ = newService(t, Options{Drafter: llm.NewCommentDrafter(fakeGenerator{})})
	draft, err := svc.DraftComment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Consistent and dependable.", draft.Comment)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "All evaluations", Describe(query.Options{}))
	assert.Equal(t, `search "jane", grade A, sorted by total asc`,
		Describe(query.Options{Text: "jane", Grade: "A", Key: query.SortByTotal, Direction: query.Ascending}))
}
