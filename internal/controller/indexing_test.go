package controller

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/mdc/internal/backend"
	"github.com/Zuo-Peng/mdc/internal/session"
	"github.com/Zuo-Peng/mdc/internal/staging"
)

func newSession(t *testing.T, store session.KVStore) (*session.ClientSession, *recorder) {
	t.Helper()
	s, err := session.New(context.Background(), store)
	require.NoError(t, err)
	rec := &recorder{}
	s.Subscribe(rec.record)
	return s, rec
}

func TestSubmitCorpus_EmptySelection(t *testing.T) {
	s, rec := newSession(t, nil)
	ing := &fakeIngestor{result: backend.IngestResult{SessionID: "abc"}}
	ix := NewIndexer(s, ing)

	_, err := ix.SubmitCorpus(context.Background())
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Zero(t, ing.callCount())
	assert.Equal(t, session.State{Status: session.StatusIdle}, s.State())
	assert.Equal(t, []string{NoticeEmptySelection}, rec.notices())
	assert.NotContains(t, rec.kinds(), session.EventIndexingStarted)
}

func TestSubmitCorpus_Success(t *testing.T) {
	store := newMemStore()
	s, rec := newSession(t, store)
	s.Stage(
		staging.StagedFile{Name: "a.txt", MimeType: "text/plain", SizeBytes: 100},
		staging.StagedFile{Name: "b.txt", MimeType: "text/plain", SizeBytes: 200},
	)
	ing := &fakeIngestor{result: backend.IngestResult{SessionID: "abc", Indexed: true}}
	ix := NewIndexer(s, ing)

	res, err := ix.SubmitCorpus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "abc", res.SessionID)
	assert.Len(t, res.Documents, 2)
	assert.Zero(t, s.Staging().Count)

	st := s.State()
	assert.Equal(t, "abc", st.SessionID)
	assert.Equal(t, session.StatusIndexed, st.Status)
	assert.False(t, st.IndexedAt.IsZero())
	assert.Equal(t, "abc", store.data[session.SessionIDKey])

	docs := s.Ingested()
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Name)
	assert.Equal(t, int64(200), docs[1].SizeBytes)

	require.Equal(t, 1, ing.callCount())
	uploads := ing.calls[0]
	require.Len(t, uploads, 2)
	assert.Equal(t, "a.txt", uploads[0].Name)
	assert.Equal(t, int64(100), uploads[0].SizeBytes)

	assert.Equal(t, []string{NoticeIndexingComplete}, rec.notices())
	kinds := rec.kinds()
	assert.Contains(t, kinds, session.EventIndexingStarted)
	assert.Equal(t, session.EventIndexingFinished, kinds[len(kinds)-1])
}

func TestSubmitCorpus_Failure(t *testing.T) {
	tests := []struct {
		name   string
		result backend.IngestResult
		err    error
	}{
		{"transport", backend.IngestResult{}, errors.New("connection refused")},
		{"server error", backend.IngestResult{}, &backend.APIError{Op: "upload", StatusCode: 500, Detail: "boom"}},
		{"missing session id", backend.IngestResult{Indexed: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newSession(t, nil)
			s.Stage(staging.StagedFile{Name: "a.txt", SizeBytes: 100}, staging.StagedFile{Name: "b.txt", SizeBytes: 200})
			before := s.Staging()

			ix := NewIndexer(s, &fakeIngestor{result: tt.result, err: tt.err})
			_, err := ix.SubmitCorpus(context.Background())

			assert.ErrorIs(t, err, ErrIngestionFailure)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, session.StatusFailed, s.State().Status)
			assert.Equal(t, before, s.Staging(), "files stay staged for a retry")
			assert.Empty(t, s.Ingested())
			assert.Equal(t, []string{NoticeIndexingFailed}, rec.notices())

			kinds := rec.kinds()
			assert.Equal(t, session.EventIndexingFinished, kinds[len(kinds)-1])
			assert.False(t, ix.InFlight())
		})
	}
}

func TestSubmitCorpus_RetryAfterFailure(t *testing.T) {
	s, _ := newSession(t, nil)
	s.Stage(staging.StagedFile{Name: "a.txt"})
	ing := &fakeIngestor{err: errors.New("down")}
	ix := NewIndexer(s, ing)

	_, err := ix.SubmitCorpus(context.Background())
	require.Error(t, err)

	ing.err = nil
	ing.result = backend.IngestResult{SessionID: "abc"}
	_, err = ix.SubmitCorpus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.StatusIndexed, s.State().Status)
	assert.Equal(t, 2, ing.callCount())
}

func TestSubmitCorpus_FreezesSubmittedSet(t *testing.T) {
	s, _ := newSession(t, nil)
	s.Stage(staging.StagedFile{Name: "a.txt"}, staging.StagedFile{Name: "b.txt"})

	ing := &fakeIngestor{
		result:  backend.IngestResult{SessionID: "abc"},
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	ix := NewIndexer(s, ing)

	done := make(chan error, 1)
	go func() {
		_, err := ix.SubmitCorpus(context.Background())
		done <- err
	}()
	<-ing.started

	assert.True(t, ix.InFlight())
	assert.Equal(t, session.StatusIndexing, s.State().Status)

	// user keeps editing while the upload runs
	s.Unstage(0)
	s.Stage(staging.StagedFile{Name: "late.txt"})

	close(ing.release)
	require.NoError(t, <-done)

	assert.Len(t, ing.calls[0], 2, "the set frozen at call time is what was sent")
	docs := s.Ingested()
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Name)

	remaining := s.Staging()
	require.Equal(t, 1, remaining.Count)
	assert.Equal(t, "late.txt", remaining.Files[0].Name)
}

func TestSubmitCorpus_Guard(t *testing.T) {
	s, _ := newSession(t, nil)
	s.Stage(staging.StagedFile{Name: "a.txt"})

	ing := &fakeIngestor{
		result:  backend.IngestResult{SessionID: "abc"},
		release: make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	ix := NewIndexer(s, ing)

	done := make(chan error, 1)
	go func() {
		_, err := ix.SubmitCorpus(context.Background())
		done <- err
	}()
	<-ing.started

	_, err := ix.SubmitCorpus(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, ing.callCount())

	close(ing.release)
	require.NoError(t, <-done)
	assert.False(t, ix.InFlight())
}

func TestSubmitCorpus_GuardDisabled(t *testing.T) {
	s, _ := newSession(t, nil)
	s.Stage(staging.StagedFile{Name: "a.txt"})

	ing := &fakeIngestor{
		result:  backend.IngestResult{SessionID: "abc"},
		release: make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	ix := NewIndexer(s, ing, WithSubmitGuard(false))

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := ix.SubmitCorpus(context.Background())
			done <- err
		}()
		<-ing.started
	}
	close(ing.release)
	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.Equal(t, 2, ing.callCount())
	assert.Zero(t, s.Staging().Count)
}

// Two staged files of 100 and 200 bytes, server returns "abc".
func TestScenario_StageTwoAndSubmit(t *testing.T) {
	s, _ := newSession(t, newMemStore())
	s.Stage(staging.StagedFile{Name: "one.txt", SizeBytes: 100}, staging.StagedFile{Name: "two.txt", SizeBytes: 200})
	require.Equal(t, int64(300), s.Staging().TotalBytes)

	ix := NewIndexer(s, &fakeIngestor{result: backend.IngestResult{SessionID: "abc"}})
	_, err := ix.SubmitCorpus(context.Background())
	require.NoError(t, err)

	assert.Zero(t, s.Staging().Count)
	st := s.State()
	assert.Equal(t, "abc", st.SessionID)
	assert.Equal(t, session.StatusIndexed, st.Status)
	assert.Len(t, s.Ingested(), 2)
}

func TestUploadsFor_ReadsFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	uploads := uploadsFor([]staging.StagedFile{{Name: "doc.txt", Path: path}, {Name: "virtual"}})
	require.Len(t, uploads, 2)

	rc, err := uploads[0].Open()
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "content", string(b))

	rc, err = uploads[1].Open()
	require.NoError(t, err)
	b, _ = io.ReadAll(rc)
	assert.Empty(t, b)
}
