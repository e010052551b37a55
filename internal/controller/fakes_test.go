package controller

import (
	"context"
	"sync"
	"time"

	"github.com/Zuo-Peng/mdc/internal/backend"
	"github.com/Zuo-Peng/mdc/internal/session"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeIngestor struct {
	mu      sync.Mutex
	calls   [][]backend.Upload
	result  backend.IngestResult
	err     error
	release chan struct{} // when set, calls block until it is closed
	started chan struct{}
}

func (f *fakeIngestor) SubmitCorpus(ctx context.Context, files []backend.Upload) (backend.IngestResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, files)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *fakeIngestor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type askCall struct {
	sessionID string
	message   string
}

type fakeAnswerer struct {
	mu      sync.Mutex
	calls   []askCall
	answers map[string]backend.Answer // by message; missing uses answer
	answer  backend.Answer
	err     error
	gates   map[string]chan struct{} // by message; call blocks until closed
}

func (f *fakeAnswerer) AskQuestion(ctx context.Context, sessionID, message string) (backend.Answer, error) {
	f.mu.Lock()
	f.calls = append(f.calls, askCall{sessionID, message})
	gate := f.gates[message]
	ans, ok := f.answers[message]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return backend.Answer{}, f.err
	}
	if !ok {
		ans = f.answer
	}
	return ans, nil
}

func (f *fakeAnswerer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// recorder collects session events.
type recorder struct {
	mu     sync.Mutex
	events []session.Event
}

func (r *recorder) record(ev session.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) kinds() []session.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.Kind == session.EventNotice {
			out = append(out, ev.Notice)
		}
	}
	return out
}
