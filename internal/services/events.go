package services

import (
	"sync"

	"vendorhub/internal/domain"
)

type SessionEventKind int

const (
	SignedIn SessionEventKind = iota + 1
	SignedOut
	Refreshed
)

func (k SessionEventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case Refreshed:
		return "refreshed"
	}
	return "unknown"
}

// SessionEvent is published on every login, logout and refresh. Session is nil
// for SignedOut.
type SessionEvent struct {
	Kind    SessionEventKind
	SID     string
	Session *domain.Session
}

// SessionHub fans session events out to in-process listeners.
type SessionHub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(SessionEvent)
}

func NewSessionHub() *SessionHub {
	return &SessionHub{subs: map[int]func(SessionEvent){}}
}

// Subscribe registers fn and returns the func that removes it.
func (h *SessionHub) Subscribe(fn func(SessionEvent)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish calls every listener synchronously, outside the lock.
func (h *SessionHub) Publish(ev SessionEvent) {
	h.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (h *SessionHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
