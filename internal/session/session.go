// Package session tracks one connected client: its transport, its input
// queue, and its outbound mailbox (spec §3 "Session", §4.5, §4.6). Sessions
// hold no references into the World except the player id they were
// allocated at handshake time.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/google/uuid"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/entity"
	"github.com/nova-ctrl/asteroids-arena/internal/metrics"
	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
	"github.com/nova-ctrl/asteroids-arena/internal/ratelimit"
)

// Session is the server-side handle for one connected player.
type Session struct {
	ID      uint64
	Name    string
	TraceID string

	conn    net.Conn
	mailbox *mailbox
	input   *inputQueue
	limiter *ratelimit.Limiter
	relay   ChatRelay

	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	done chan struct{} // closed once the writer goroutine has torn down the conn
}

// ChatRelay is the subset of Registry a Session needs to fan out a chat
// message the instant it arrives, bypassing the tick (spec §4.6).
type ChatRelay interface {
	RelayChat(from, text string)
}

// New wraps an already-accepted connection as a Session for the given
// player id and display name. The caller must have already completed the
// handshake (spec §4.5) before constructing a Session.
func New(conn net.Conn, id uint64, name string, relay ChatRelay) *Session {
	return &Session{
		ID:      id,
		Name:    name,
		TraceID: uuid.NewString()[:8],
		conn:    conn,
		mailbox: newMailbox(),
		input:   newInputQueue(),
		limiter: ratelimit.NewLimiter(),
		relay:   relay,
		done:    make(chan struct{}),
	}
}

// Start launches the session's reader and writer goroutines. Must be called
// at most once.
func (s *Session) Start() {
	go s.writeLoop()
	go s.readLoop()
}

// Done returns a channel closed once the writer goroutine has closed the
// session's transport and exited. The reader goroutine exits on its own once
// its pending read fails; Done does not wait for it.
func (s *Session) Done() <-chan struct{} { return s.done }

// Closed reports whether the session has begun terminating.
func (s *Session) Closed() bool { return s.closed.Load() }

// Reason returns the termination reason recorded by Terminate, or "" if the
// session is still active or closed without an explicit reason (e.g. a
// clean peer disconnect).
func (s *Session) Reason() string {
	v, _ := s.reason.Load().(string)
	return v
}

// DrainInput removes and returns every action queued by the reader since the
// last call (spec §4.1 phase 1).
func (s *Session) DrainInput() []entity.Action { return s.input.drain() }

// EnqueueState pushes a pre-serialized State payload onto the session's
// outbound mailbox (spec §4.6: "serialises the snapshot once ... enqueues a
// reference to every session's outbound queue"). Returns true if pushing
// this frame drove the mailbox past its hard cap, meaning the caller must
// terminate the session (spec §8 scenario 6).
func (s *Session) EnqueueState(payload []byte) (overflow bool) {
	overflow, dropped := s.mailbox.push(kindState, payload, config.OutboundQueueSize, config.OutboundHardCap)
	if dropped {
		metrics.FramesDropped.WithLabelValues("queue_full").Inc()
	}
	return overflow
}

// EnqueueChat pushes a chat frame, which is never dropped for backpressure
// (spec §4.5).
func (s *Session) EnqueueChat(payload []byte) (overflow bool) {
	overflow, _ = s.mailbox.push(kindChat, payload, config.OutboundQueueSize, config.OutboundHardCap)
	return overflow
}

// SendWelcome writes the handshake reply directly and synchronously, before
// the writer goroutine is started (spec §4.5).
func (s *Session) SendWelcome(w protocol.Welcome) error {
	return protocol.WriteFrame(s.conn, w)
}

// Terminate begins an idempotent shutdown of the session. If reason is
// non-empty, a Bye frame carrying it is enqueued ahead of the close so the
// client sees why it was disconnected (spec §4.5, §7).
func (s *Session) Terminate(reason string) {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.reason.Store(reason)
		if reason != "" {
			payload, err := json.Marshal(protocol.Bye{Type: protocol.TypeBye, Reason: reason})
			if err == nil {
				s.mailbox.push(kindBye, payload, config.OutboundQueueSize, config.OutboundHardCap)
			}
		}
		s.mailbox.close()
	})
}

func (s *Session) readLoop() {
	defer s.Terminate("")
	for {
		payload, err := protocol.ReadFrame(s.conn)
		if err != nil {
			return // TransportError: peer close or I/O failure (spec §7)
		}

		env, err := protocol.DecodeEnvelope(payload)
		if err != nil {
			s.Terminate("malformed frame")
			return
		}

		switch env.Type {
		case protocol.TypeInput:
			if !s.limiter.Allow() {
				s.Terminate("flood")
				return
			}
			var in protocol.Input
			if err := json.Unmarshal(payload, &in); err != nil {
				s.Terminate("malformed frame")
				return
			}
			action, ok := decodeAction(in.Action)
			if !ok {
				s.Terminate("unrecognised input action")
				return
			}
			s.input.push(action)

		case protocol.TypeChat:
			var c protocol.Chat
			if err := json.Unmarshal(payload, &c); err != nil {
				s.Terminate("malformed frame")
				return
			}
			text := sanitizeChat(c.Text)
			if text == "" {
				continue
			}
			if s.relay != nil {
				s.relay.RelayChat(s.Name, text)
			}

		default:
			s.Terminate("unexpected frame type")
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer func() {
		_ = s.conn.Close()
		close(s.done)
	}()

	for {
		f, ok := s.mailbox.pop()
		if !ok {
			return
		}
		if err := protocol.WriteRawFrame(s.conn, f.payload); err != nil {
			log.Printf("session[%s]: write error: %v", s.TraceID, err)
			s.Terminate("")
			return
		}
		metrics.FramesSent.WithLabelValues(frameKindLabel(f.kind)).Inc()
	}
}

func frameKindLabel(k frameKind) string {
	switch k {
	case kindState:
		return "state"
	case kindChat:
		return "chat"
	case kindWelcome:
		return "welcome"
	case kindBye:
		return "bye"
	default:
		return "unknown"
	}
}

// decodeAction maps a wire-level input action to the entity-layer Action
// enum (spec §6).
func decodeAction(a protocol.InputAction) (entity.Action, bool) {
	switch a {
	case protocol.ActionThrustOn:
		return entity.ActionThrustOn, true
	case protocol.ActionThrustOff:
		return entity.ActionThrustOff, true
	case protocol.ActionRotLeft:
		return entity.ActionRotateLeft, true
	case protocol.ActionRotRight:
		return entity.ActionRotateRight, true
	case protocol.ActionRotStop:
		return entity.ActionRotateStop, true
	case protocol.ActionFire:
		return entity.ActionFire, true
	default:
		return 0, false
	}
}

// sanitizeChat truncates to the configured character cap and strips control
// characters, the same discipline the teacher applies to usernames
// (cmd/ssh/main.go's sanitizeUsername).
func sanitizeChat(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	count := 0
	for _, r := range raw {
		if !unicode.IsGraphic(r) {
			continue
		}
		if count >= config.MaxChatChars {
			break
		}
		b.WriteRune(r)
		count++
	}
	return strings.TrimSpace(b.String())
}

// SanitizeName truncates a display name to MaxNameCodePoints code points and
// strips control characters (spec §4.5).
func SanitizeName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	count := 0
	for _, r := range raw {
		if !unicode.IsGraphic(r) {
			continue
		}
		if count >= config.MaxNameCodePoints {
			break
		}
		b.WriteRune(r)
		count++
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		return fmt.Sprintf("player-%d", nextAnonSuffix())
	}
	return name
}

var anonSuffix atomic.Uint64

func nextAnonSuffix() uint64 { return anonSuffix.Add(1) }
