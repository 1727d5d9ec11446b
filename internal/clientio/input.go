package clientio

import (
	"io"
	"time"

	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

// keyHoldDuration is how long a key is considered "held" after its last
// press, the same key-repeat smoothing the teacher's internal/input package
// uses so a terminal's OS-level key-repeat cadence doesn't cause visible
// stutter in ThrustOn/Off toggling.
const keyHoldDuration = 120 * time.Millisecond

// Stream delivers raw input bytes from r via a channel, decoupling the
// blocking read from the client's render/send loop (teacher's
// internal/input.StartStream).
type Stream struct {
	ch chan byte
}

// StartStream spawns a goroutine that reads bytes from r until it errors or
// closes, forwarding each one onto the stream's channel.
func StartStream(r io.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				s.ch <- buf[0]
			}
			if err != nil {
				close(s.ch)
				return
			}
		}
	}()
	return s
}

// Intent is the client's current held/triggered control state, decoded from
// raw keys (w=thrust, a=rotate left, d=rotate right, space=fire,
// q/ctrl-c=quit; letters in either case). Arrow keys are not decoded.
type Intent struct {
	Thrust bool
	Left   bool
	Right  bool
	Fire   bool
	Quit   bool
}

type keyState struct {
	thrust, left, right, fire, quit time.Time
}

// Poll drains every byte currently available on the stream (non-blocking)
// and returns the resulting Intent.
func (s *Stream) Poll(state *keyState) Intent {
	now := time.Now()
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				break drain
			}
			applyByte(state, b, now)
		default:
			break drain
		}
	}

	return Intent{
		Thrust: now.Sub(state.thrust) < keyHoldDuration,
		Left:   now.Sub(state.left) < keyHoldDuration,
		Right:  now.Sub(state.right) < keyHoldDuration,
		Fire:   now.Sub(state.fire) < keyHoldDuration,
		Quit:   now.Sub(state.quit) < keyHoldDuration,
	}
}

// NewKeyState returns a fresh, all-released key state for use with Poll.
func NewKeyState() *keyState { return &keyState{} }

func applyByte(state *keyState, b byte, now time.Time) {
	switch b {
	case 'w', 'W':
		state.thrust = now
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case ' ':
		state.fire = now
	case 'q', 'Q', 0x03: // ctrl-c
		state.quit = now
	}
}

// Actions converts an Intent transition (prev -> cur) into the discrete
// wire-level input actions spec §6 defines, emitting edges for thrust and
// rotation so the server only sees state changes rather than a flood of
// redundant "still on" frames, and re-sending Fire on every tick it is held
// since the server's own cooldown (spec §4.1 phase 4) gates the actual rate.
func Actions(prev, cur Intent) []protocol.InputAction {
	var out []protocol.InputAction

	if cur.Thrust != prev.Thrust {
		if cur.Thrust {
			out = append(out, protocol.ActionThrustOn)
		} else {
			out = append(out, protocol.ActionThrustOff)
		}
	}

	curRot := rotationOf(cur)
	if prevRot := rotationOf(prev); curRot != prevRot {
		switch curRot {
		case 1:
			out = append(out, protocol.ActionRotRight)
		case -1:
			out = append(out, protocol.ActionRotLeft)
		default:
			out = append(out, protocol.ActionRotStop)
		}
	}

	if cur.Fire {
		out = append(out, protocol.ActionFire)
	}

	return out
}

func rotationOf(in Intent) int {
	switch {
	case in.Left && !in.Right:
		return -1
	case in.Right && !in.Left:
		return 1
	default:
		return 0
	}
}
