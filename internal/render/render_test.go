package render

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/intern-evaluation/internal/layout"
)

func TestBackend_SingleFlightLoad(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (Factory, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return func(DocumentInfo) Engine { return &Recorder{} }, nil
	}
	b := NewBackend("test", loader, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- b.Init(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	assert.True(t, b.Ready())

	require.NoError(t, b.Init(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads), "loaded backend is not reloaded")
}

func TestBackend_FailedLoadIsRetried(t *testing.T) {
	var loads int32
	loader := func(ctx context.Context) (Factory, error) {
		if atomic.AddInt32(&loads, 1) == 1 {
			return nil, errors.New("engine missing")
		}
		return RecorderLoader()(ctx)
	}
	b := NewBackend("flaky", loader, nil)

	_, err := b.NewEngine(context.Background(), DocumentInfo{})
	require.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "engine missing")
	assert.False(t, b.Ready())

	e, err := b.NewEngine(context.Background(), DocumentInfo{})
	require.NoError(t, err)
	assert.NotNil(t, e)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestBackend_EnginesAreIndependent(t *testing.T) {
	b := NewBackend("recorder", RecorderLoader(), nil)

	e1, err := b.NewEngine(context.Background(), DocumentInfo{})
	require.NoError(t, err)
	e2, err := b.NewEngine(context.Background(), DocumentInfo{})
	require.NoError(t, err)

	e1.AddPage()
	assert.Equal(t, 1, e1.(*Recorder).Pages)
	assert.Equal(t, 0, e2.(*Recorder).Pages)
}

func TestDraw_ReplaysEveryPage(t *testing.T) {
	c := layout.NewContext(layout.A4)
	c.SetFont(layout.Bold, 12)
	c.Text(30, 40, "Title")
	c.Skip(50)
	c.BreakPage()
	c.Text(30, 40, "Second")

	rec := &Recorder{}
	Draw(rec, c.Pages())

	assert.Equal(t, 2, rec.Pages)
	assert.Contains(t, rec.Calls, `font Helvetica "B" 12.0`)
	assert.Contains(t, rec.Calls, `text 30.00 40.00 "Second"`)
}

func TestPDFLoader_ProducesDeterministicPDF(t *testing.T) {
	b := NewBackend("pdf", PDFLoader(layout.A4), nil)
	info := DocumentInfo{
		Title:     "Report",
		Author:    "Acme",
		CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	build := func() []byte {
		c := layout.NewContext(layout.A4)
		c.SetFont(layout.Regular, 10)
		c.SetTextColor(layout.Ink)
		c.Text(30, 40, "Café résumé")

		e, err := b.NewEngine(context.Background(), info)
		require.NoError(t, err)
		Draw(e, c.Pages())

		var buf bytes.Buffer
		require.NoError(t, e.Output(&buf))
		return buf.Bytes()
	}

	first := build()
	second := build()
	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Equal(t, first, second)
}
