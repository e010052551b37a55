package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/mdc/internal/backend"
	"github.com/Zuo-Peng/mdc/internal/session"
	"github.com/Zuo-Peng/mdc/internal/staging"
)

var errNoSessionID = errors.New("response carried no session id")

// IndexResult describes a successful submit.
type IndexResult struct {
	SessionID string
	Documents []session.IngestedDocument
}

// Indexer submits the staged corpus for indexing.
type Indexer struct {
	session  *session.ClientSession
	ingestor backend.Ingestor
	log      *zap.Logger
	guard    bool
	inFlight atomic.Int32
}

type IndexerOption func(*Indexer)

// WithSubmitGuard turns the single-slot in-flight guard on or off. With the
// guard on, a submit started while another is running fails with ErrBusy.
func WithSubmitGuard(on bool) IndexerOption {
	return func(ix *Indexer) { ix.guard = on }
}

func WithIndexerLogger(l *zap.Logger) IndexerOption {
	return func(ix *Indexer) {
		if l != nil {
			ix.log = l
		}
	}
}

func NewIndexer(s *session.ClientSession, ing backend.Ingestor, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		session:  s,
		ingestor: ing,
		log:      zap.NewNop(),
		guard:    true,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// InFlight reports whether a submit is currently running.
func (ix *Indexer) InFlight() bool {
	return ix.inFlight.Load() > 0
}

// SubmitCorpus sends every staged file to the ingestion service. The staged
// set is frozen when the call starts. On success the session id is stored
// and the submitted files leave the staging area; on failure the session is
// marked failed and the files stay staged for a retry.
func (ix *Indexer) SubmitCorpus(ctx context.Context) (IndexResult, error) {
	if n := ix.inFlight.Add(1); n > 1 && ix.guard {
		ix.inFlight.Add(-1)
		return IndexResult{}, ErrBusy
	}
	defer ix.inFlight.Add(-1)

	snap, ok := ix.session.BeginIndexing()
	if !ok {
		ix.session.Notify(NoticeEmptySelection)
		return IndexResult{}, ErrEmptySelection
	}
	defer ix.session.EndIndexing()

	ix.log.Info("submitting corpus",
		zap.Int("files", snap.Count),
		zap.Int64("bytes", snap.TotalBytes),
	)

	res, err := ix.ingestor.SubmitCorpus(ctx, uploadsFor(snap.Files))
	if err == nil && strings.TrimSpace(res.SessionID) == "" {
		err = errNoSessionID
	}
	if err != nil {
		ix.session.FailIndexing()
		ix.session.Notify(NoticeIndexingFailed)
		ix.log.Error("indexing failed", zap.Error(err), zap.Int("files", snap.Count))
		return IndexResult{}, fmt.Errorf("%w: %w", ErrIngestionFailure, err)
	}

	docs, err := ix.session.CompleteIndexing(ctx, res.SessionID, snap.Files)
	if err != nil {
		ix.log.Warn("session id not persisted", zap.Error(err), zap.String("session_id", res.SessionID))
	}
	ix.session.Notify(NoticeIndexingComplete)
	ix.log.Info("indexing completed", zap.String("session_id", res.SessionID), zap.Int("documents", len(docs)))

	return IndexResult{SessionID: res.SessionID, Documents: docs}, nil
}

func uploadsFor(files []staging.StagedFile) []backend.Upload {
	uploads := make([]backend.Upload, len(files))
	for i, f := range files {
		path := f.Path
		uploads[i] = backend.Upload{
			Name:      f.Name,
			MimeType:  f.MimeType,
			SizeBytes: f.SizeBytes,
			Open: func() (io.ReadCloser, error) {
				if path == "" {
					return io.NopCloser(strings.NewReader("")), nil
				}
				return os.Open(path)
			},
		}
	}
	return uploads
}
