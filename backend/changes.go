package backend

import "sync"

// changeHub fans out committed writes to subscribers. Callbacks run outside
// the hub lock so a subscriber may re-enter the client (the submissions
// store re-fetches inside its callback).
type changeHub struct {
	mu   sync.Mutex
	subs map[int]func(Change)
	next int
}

func newChangeHub() *changeHub {
	return &changeHub{subs: make(map[int]func(Change))}
}

func (h *changeHub) subscribe(fn func(Change)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *changeHub) broadcast(c Change) {
	h.mu.Lock()
	fns := make([]func(Change), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
