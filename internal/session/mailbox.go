package session

import "sync"

// frameKind tags an outbound frame so the mailbox knows which frames may be
// dropped under backpressure (spec §4.5: "a full outbound queue drops the
// oldest state frame; chat frames are preserved").
type frameKind int

const (
	kindState frameKind = iota
	kindChat
	kindWelcome
	kindBye
)

type outboundFrame struct {
	kind    frameKind
	payload []byte
}

// mailbox is a per-session outbound frame queue. It is a hand-rolled
// condition-variable queue rather than a plain buffered channel because a
// channel cannot selectively evict one queued element (the oldest State
// frame) while leaving Chat/Bye frames in place, which spec §4.5 requires.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []outboundFrame
	closed bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// push enqueues a frame. For kindState, if the soft cap (OutboundQueueSize)
// is already reached, the oldest still-queued State frame is evicted to make
// room — non-state frames are never evicted. push reports whether the queue
// has now grown past the hard cap, in which case the caller must terminate
// the session (spec §8 scenario 6).
func (m *mailbox) push(kind frameKind, payload []byte, softCap, hardCap int) (overflow, dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, false
	}

	if kind == kindState && len(m.queue) >= softCap {
		dropped = m.dropOldestStateLocked()
	}

	m.queue = append(m.queue, outboundFrame{kind: kind, payload: payload})
	overflow = len(m.queue) > hardCap
	m.cond.Signal()
	return overflow, dropped
}

func (m *mailbox) dropOldestStateLocked() bool {
	for i, f := range m.queue {
		if f.kind == kindState {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

// pop blocks until a frame is available or the mailbox is closed and
// drained, in which case ok is false.
func (m *mailbox) pop() (f outboundFrame, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.queue) == 0 {
		return outboundFrame{}, false
	}
	f = m.queue[0]
	m.queue = m.queue[1:]
	return f, true
}

// close marks the mailbox closed; already-queued frames still drain via pop,
// but no new frame after this point wakes a pop that finds the queue empty.
func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
}
