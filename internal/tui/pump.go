package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/mdc/internal/session"
)

// eventPump forwards session events into the program in order. Observers
// may run inside Update (staging keys mutate the session synchronously), and
// Program.Send blocks until the event loop reads, so events are queued here
// and delivered from a separate goroutine.
type eventPump struct {
	mu    sync.Mutex
	queue []session.Event
	wake  chan struct{}
	done  chan struct{}
	send  func(tea.Msg)
}

func newEventPump(send func(tea.Msg)) *eventPump {
	return &eventPump{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		send: send,
	}
}

func (p *eventPump) push(ev session.Event) {
	p.mu.Lock()
	p.queue = append(p.queue, ev)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *eventPump) run() {
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}
		p.mu.Lock()
		batch := p.queue
		p.queue = nil
		p.mu.Unlock()
		for _, ev := range batch {
			p.send(sessionEventMsg{ev: ev})
		}
	}
}

func (p *eventPump) stop() {
	close(p.done)
}
