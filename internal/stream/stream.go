package stream

import (
	"context"
	"sync"
	"time"

	"bankist.org/internal/presenter"
)

// ViewEvent is one re-render of the page.
type ViewEvent struct {
	Seq       uint64         `json:"seq"`
	View      presenter.View `json:"view"`
	Timestamp time.Time      `json:"timestamp"`
}

// Stream fan-outs rendered views to all active subscribers (SSE clients).
// The most recent event is kept so late subscribers start from the current page.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan ViewEvent
	next int
	seq  uint64
	last *ViewEvent
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan ViewEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive events.
// The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan ViewEvent {
	ch := make(chan ViewEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	if s.last != nil {
		ch <- *s.last
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt ViewEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	evt.Seq = s.seq
	s.last = &evt
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking the controller.
		}
	}
}

// Render publishes a view; it lets a Stream serve as the session's renderer.
func (s *Stream) Render(v presenter.View) {
	s.Publish(ViewEvent{View: v, Timestamp: time.Now().UTC()})
}

// Subscribers reports the number of live subscribers.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
