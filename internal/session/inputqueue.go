package session

import (
	"sync"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/entity"
)

// inputQueue is the lock-protected buffer a session's reader appends to and
// the simulation drains once per tick (spec §5: "Readers ... enqueue to
// lock-protected per-session input queues; the simulation drains them under
// a short-held lock").
type inputQueue struct {
	mu      sync.Mutex
	actions []entity.Action
}

func newInputQueue() *inputQueue {
	return &inputQueue{actions: make([]entity.Action, 0, 8)}
}

// push appends one action, preserving the client's send order (spec §5).
// If a misbehaving client outruns the rate limiter badly enough to fill the
// queue beyond its configured capacity, the oldest action is dropped rather
// than growing unboundedly.
func (q *inputQueue) push(a entity.Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) >= config.InputQueueSize {
		q.actions = q.actions[1:]
	}
	q.actions = append(q.actions, a)
}

// drain removes and returns every queued action, in arrival order.
func (q *inputQueue) drain() []entity.Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 {
		return nil
	}
	out := q.actions
	q.actions = make([]entity.Action, 0, 8)
	return out
}
