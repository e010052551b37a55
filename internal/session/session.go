package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/mdc/internal/staging"
)

// ClientSession owns the staging area, the session state, the ingested
// document list and the transcript of one client. Mutations take the lock
// only for the in-memory update; observers are called after it is released.
type ClientSession struct {
	mu         sync.Mutex
	store      KVStore
	log        *zap.Logger
	now        func() time.Time
	staging    staging.Area
	state      State
	ingested   []IngestedDocument
	transcript []Message

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

type Option func(*ClientSession)

func WithLogger(l *zap.Logger) Option {
	return func(s *ClientSession) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ClientSession) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a session and restores the persisted session id from store.
// A restored id is assumed valid and reported as indexed without asking the
// server. A nil store keeps everything in memory.
func New(ctx context.Context, store KVStore, opts ...Option) (*ClientSession, error) {
	s := &ClientSession{
		store:     store,
		log:       zap.NewNop(),
		now:       time.Now,
		observers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if store == nil {
		return s, nil
	}
	id, ok, err := store.Get(ctx, SessionIDKey)
	if err != nil {
		return nil, fmt.Errorf("restore session id: %w", err)
	}
	if ok && id != "" {
		s.state = State{SessionID: id, Status: StatusIndexed}
		s.log.Info("restored session", zap.String("session_id", id))
	}
	return s, nil
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it again.
func (s *ClientSession) Subscribe(fn func(Event)) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *ClientSession) emit(events ...Event) {
	s.obsMu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.obsMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func (s *ClientSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ClientSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionID
}

func (s *ClientSession) Staging() staging.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staging.Snapshot()
}

func (s *ClientSession) Ingested() []IngestedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ingested)
}

func (s *ClientSession) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

// Stage appends files to the staging area.
func (s *ClientSession) Stage(files ...staging.StagedFile) {
	if len(files) == 0 {
		return
	}
	s.mu.Lock()
	s.staging.Add(files...)
	s.mu.Unlock()
	s.emit(Event{Kind: EventStagingChanged})
}

// Unstage removes the staged file at index; invalid indexes are ignored.
func (s *ClientSession) Unstage(index int) bool {
	s.mu.Lock()
	ok := s.staging.RemoveAt(index)
	s.mu.Unlock()
	if ok {
		s.emit(Event{Kind: EventStagingChanged})
	}
	return ok
}

// UnstageString is Unstage for an index taken from UI input.
func (s *ClientSession) UnstageString(raw string) bool {
	s.mu.Lock()
	ok := s.staging.RemoveAtString(raw)
	s.mu.Unlock()
	if ok {
		s.emit(Event{Kind: EventStagingChanged})
	}
	return ok
}

func (s *ClientSession) ClearStaging() {
	s.mu.Lock()
	s.staging.Clear()
	s.mu.Unlock()
	s.emit(Event{Kind: EventStagingChanged})
}

func (s *ClientSession) ReplaceStaging(files []staging.StagedFile) {
	s.mu.Lock()
	s.staging.Replace(files)
	s.mu.Unlock()
	s.emit(Event{Kind: EventStagingChanged})
}

// Notify raises a transient user-visible notice.
func (s *ClientSession) Notify(text string) {
	s.emit(Event{Kind: EventNotice, Notice: text})
}

// Forget drops the current session id, in memory and in the store.
func (s *ClientSession) Forget(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{Status: StatusIdle}
	var err error
	if s.store != nil {
		err = s.store.Delete(ctx, SessionIDKey)
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventSessionChanged})
	if err != nil {
		return fmt.Errorf("forget session id: %w", err)
	}
	return nil
}

// BeginIndexing freezes the staged set and moves the session to
// StatusIndexing. It reports false, changing nothing, when nothing is staged.
func (s *ClientSession) BeginIndexing() (staging.Snapshot, bool) {
	s.mu.Lock()
	if s.staging.Len() == 0 {
		s.mu.Unlock()
		return staging.Snapshot{}, false
	}
	snap := s.staging.Snapshot()
	s.state.Status = StatusIndexing
	s.mu.Unlock()
	s.emit(Event{Kind: EventSessionChanged}, Event{Kind: EventIndexingStarted})
	return snap, true
}

// CompleteIndexing records a successful submit of the submitted files under
// id. The ingested list is replaced, the submitted entries leave the staging
// area and id is persisted. A persistence error is returned but the in-memory
// state is updated regardless.
func (s *ClientSession) CompleteIndexing(ctx context.Context, id string, submitted []staging.StagedFile) ([]IngestedDocument, error) {
	s.mu.Lock()
	now := s.now()
	s.state = State{SessionID: id, Status: StatusIndexed, IndexedAt: now}

	docs := make([]IngestedDocument, 0, len(submitted))
	ids := make([]uint64, 0, len(submitted))
	for _, f := range submitted {
		docs = append(docs, IngestedDocument{
			Name:      f.Name,
			MimeType:  f.MimeType,
			SizeBytes: f.SizeBytes,
			IndexedAt: now,
		})
		ids = append(ids, f.ID)
	}
	s.ingested = docs
	s.staging.Discard(ids...)

	var err error
	if s.store != nil && id != "" {
		err = s.store.Set(ctx, SessionIDKey, id)
	}
	s.mu.Unlock()

	s.emit(
		Event{Kind: EventSessionChanged},
		Event{Kind: EventIngestedChanged},
		Event{Kind: EventStagingChanged},
	)
	if err != nil {
		return slices.Clone(docs), fmt.Errorf("persist session id: %w", err)
	}
	return slices.Clone(docs), nil
}

// FailIndexing marks the session failed. The id and the staged files stay.
func (s *ClientSession) FailIndexing() {
	s.mu.Lock()
	s.state.Status = StatusFailed
	s.mu.Unlock()
	s.emit(Event{Kind: EventSessionChanged})
}

func (s *ClientSession) EndIndexing() {
	s.emit(Event{Kind: EventIndexingFinished})
}

// BeginTurn appends the user's message and signals thinking. It reports
// false, changing nothing, when there is no active session.
func (s *ClientSession) BeginTurn(text string) (string, Message, bool) {
	s.mu.Lock()
	id := s.state.SessionID
	if id == "" {
		s.mu.Unlock()
		return "", Message{}, false
	}
	msg := Message{Role: RoleUser, Text: text, At: s.now()}
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	s.emit(Event{Kind: EventMessageAppended, Message: msg}, Event{Kind: EventThinkingStarted})
	return id, msg, true
}

// Append adds a message to the end of the transcript.
func (s *ClientSession) Append(role Role, text string) Message {
	s.mu.Lock()
	msg := Message{Role: role, Text: text, At: s.now()}
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	s.emit(Event{Kind: EventMessageAppended, Message: msg})
	return msg
}

func (s *ClientSession) EndThinking() {
	s.emit(Event{Kind: EventThinkingFinished})
}
