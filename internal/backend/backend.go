package backend

import (
	"context"
	"fmt"
	"io"
)

// Upload is one file handed to the ingestion service.
type Upload struct {
	Name      string
	MimeType  string
	SizeBytes int64
	Open      func() (io.ReadCloser, error)
}

type IngestResult struct {
	SessionID string `json:"session_id"`
	Indexed   bool   `json:"indexed"`
}

type Answer struct {
	Answer string `json:"answer"`
}

// Ingestor submits a corpus for server-side indexing.
type Ingestor interface {
	SubmitCorpus(ctx context.Context, files []Upload) (IngestResult, error)
}

// Answerer asks a question against an indexed session.
type Answerer interface {
	AskQuestion(ctx context.Context, sessionID, message string) (Answer, error)
}

// APIError is a non-success response from the service. Detail carries the
// "detail" field of the JSON error body when there was one.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
}
