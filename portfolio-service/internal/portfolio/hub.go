package portfolio

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription receives portfolio snapshots. C holds at most one pending
// snapshot: a slow reader skips intermediate snapshots and always gets the latest.
type Subscription struct {
	ID string
	C  <-chan []Position

	ch  chan []Position
	hub *hub
}

// Close stops delivery and closes C.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.ID)
}

// hub fans snapshots out to subscribers and replays the latest one on subscribe.
type hub struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	latest []Position
}

func newHub(initial []Position) *hub {
	return &hub{
		subs:   make(map[string]*Subscription),
		latest: clone(initial),
	}
}

func (h *hub) subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []Position, 1)
	sub := &Subscription{
		ID:  uuid.NewString(),
		C:   ch,
		ch:  ch,
		hub: h,
	}
	ch <- clone(h.latest)
	h.subs[sub.ID] = sub
	return sub
}

func (h *hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func (h *hub) publish(snapshot []Position) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = clone(snapshot)
	for _, sub := range h.subs {
		offer(sub.ch, clone(snapshot))
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// offer never blocks: a pending snapshot the reader has not taken yet is replaced.
func offer(ch chan []Position, snapshot []Position) {
	select {
	case ch <- snapshot:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snapshot:
	default:
	}
}
