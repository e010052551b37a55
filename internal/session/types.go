package session

import (
	"context"
	"time"
)

// SessionIDKey is the durable key under which the current session id lives.
const SessionIDKey = "mdc_session_id"

type Status int

const (
	StatusIdle Status = iota
	StatusIndexing
	StatusIndexed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusIndexing:
		return "indexing"
	case StatusIndexed:
		return "indexed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State identifies the current indexing session. An empty SessionID means
// there is no session; StatusIndexed is only ever set together with an id.
type State struct {
	SessionID string
	Status    Status
	IndexedAt time.Time // zero when unknown
}

// IngestedDocument summarises one file believed to be indexed server-side.
type IngestedDocument struct {
	Name      string
	MimeType  string
	SizeBytes int64
	IndexedAt time.Time
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role
	Text string
	At   time.Time
}

// KVStore is the durable key-value storage the session id is kept in.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type EventKind int

const (
	EventStagingChanged EventKind = iota
	EventSessionChanged
	EventIngestedChanged
	EventMessageAppended
	EventIndexingStarted
	EventIndexingFinished
	EventThinkingStarted
	EventThinkingFinished
	EventNotice
)

func (k EventKind) String() string {
	switch k {
	case EventStagingChanged:
		return "staging_changed"
	case EventSessionChanged:
		return "session_changed"
	case EventIngestedChanged:
		return "ingested_changed"
	case EventMessageAppended:
		return "message_appended"
	case EventIndexingStarted:
		return "indexing_started"
	case EventIndexingFinished:
		return "indexing_finished"
	case EventThinkingStarted:
		return "thinking_started"
	case EventThinkingFinished:
		return "thinking_finished"
	case EventNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Event is delivered to observers after a mutation. Notice is set for
// EventNotice and Message for EventMessageAppended.
type Event struct {
	Kind    EventKind
	Notice  string
	Message Message
}
