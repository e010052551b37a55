package controller

import "errors"

var (
	// ErrEmptySelection: submit with nothing staged.
	ErrEmptySelection = errors.New("no files staged")
	// ErrIngestionFailure wraps any failure of the ingestion call.
	ErrIngestionFailure = errors.New("ingestion failed")
	// ErrNoActiveSession: chat before any successful indexing.
	ErrNoActiveSession = errors.New("no active session")
	// ErrAnswerFailure wraps any failure of the question-answering call.
	ErrAnswerFailure = errors.New("answer failed")
	// ErrEmptyMessage is returned for blank input. Nothing happened and no
	// notice was raised; callers usually ignore it.
	ErrEmptyMessage = errors.New("empty message")
	// ErrBusy: a submit is already in flight.
	ErrBusy = errors.New("submit already in progress")
)

// User-visible notice texts.
const (
	NoticeEmptySelection   = "Please select files to upload"
	NoticeIndexingComplete = "Indexing completed"
	NoticeIndexingFailed   = "Indexing failed"
	NoticeNoActiveSession  = "Please upload documents first"
	NoticeChatError        = "Chat error"
)

// Transcript texts used in place of a real answer.
const (
	AnswerPlaceholder = "(no answer)"
	AnswerErrorText   = "Error: failed to get answer. Check server logs."
)
