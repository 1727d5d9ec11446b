package session

import (
	"encoding/json"
	"sync"

	"github.com/nova-ctrl/asteroids-arena/internal/metrics"
	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

// Registry is the shared authoritative map of connected players and their
// open transports (spec §2 component 2, §5). Readers hold the lock during
// broadcast fan-out; the acceptor and the per-tick removal step take the
// writer lock briefly.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uint64]*Session)}
}

// Add registers a newly-handshaked session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Count returns the number of currently registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Get looks up a session by player id.
func (r *Registry) Get(id uint64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Removed describes one session the sweep step evicted from the registry.
type Removed struct {
	ID     uint64
	Reason string
}

// SweepClosed removes every session that has begun terminating (I/O error,
// protocol error, or overflow) from the registry and returns their ids and
// reasons, so the caller can also remove the corresponding Player from the
// World (spec §4.5: "the player is marked for removal at the next
// Input-drain phase").
func (r *Registry) SweepClosed() []Removed {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []Removed
	for id, s := range r.sessions {
		if s.Closed() {
			removed = append(removed, Removed{ID: id, Reason: s.Reason()})
			delete(r.sessions, id)
		}
	}
	return removed
}

// BroadcastState fans the tick's single serialized snapshot out to every
// session (spec §4.6). Sessions pushed past their hard cap are terminated
// after the read lock is released.
func (r *Registry) BroadcastState(payload []byte) {
	r.mu.RLock()
	var overflowed []*Session
	for _, s := range r.sessions {
		if s.EnqueueState(payload) {
			overflowed = append(overflowed, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range overflowed {
		s.Terminate("slow consumer")
	}
}

// RelayChat implements Session.ChatRelay: on receipt from a reader, the
// message is enqueued to every session, including the sender, immediately
// (spec §4.6).
func (r *Registry) RelayChat(from, text string) {
	payload, err := json.Marshal(protocol.ChatOut{Type: protocol.TypeChatOut, From: from, Text: text})
	if err != nil {
		return
	}

	r.mu.RLock()
	var overflowed []*Session
	for _, s := range r.sessions {
		if s.EnqueueChat(payload) {
			overflowed = append(overflowed, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range overflowed {
		s.Terminate("slow consumer")
	}
}

// Shutdown notifies every session of server shutdown and waits (up to the
// given grace behaviour controlled by the caller) for writers to drain
// (spec §5: "drains writers with a 1s grace before closing transports").
func (r *Registry) Shutdown(reason string) {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.Terminate(reason)
	}
	for _, s := range sessions {
		<-s.Done()
		metrics.SessionsTerminated.WithLabelValues("shutdown").Inc()
	}
}
