package session

import "testing"

func TestMailboxDropsOldestStateUnderBackpressure(t *testing.T) {
	m := newMailbox()
	const softCap = 2

	m.push(kindState, []byte("s1"), softCap, 100)
	m.push(kindState, []byte("s2"), softCap, 100)
	_, dropped := m.push(kindState, []byte("s3"), softCap, 100)

	if !dropped {
		t.Fatal("pushing past the soft cap should report a dropped frame")
	}
	if len(m.queue) != softCap {
		t.Fatalf("queue length = %d, want %d (oldest evicted)", len(m.queue), softCap)
	}
	if string(m.queue[0].payload) != "s2" {
		t.Errorf("surviving oldest frame = %q, want %q", m.queue[0].payload, "s2")
	}
}

func TestMailboxNeverDropsChatOrBye(t *testing.T) {
	m := newMailbox()
	const softCap = 1

	m.push(kindState, []byte("s1"), softCap, 100)
	m.push(kindChat, []byte("chat"), softCap, 100)
	m.push(kindBye, []byte("bye"), softCap, 100)
	m.push(kindState, []byte("s2"), softCap, 100)

	var sawChat, sawBye bool
	for _, f := range m.queue {
		if f.kind == kindChat {
			sawChat = true
		}
		if f.kind == kindBye {
			sawBye = true
		}
	}
	if !sawChat {
		t.Error("chat frame should never be evicted by state backpressure")
	}
	if !sawBye {
		t.Error("bye frame should never be evicted by state backpressure")
	}
}

func TestMailboxPushReportsHardCapOverflow(t *testing.T) {
	m := newMailbox()
	const hardCap = 2

	m.push(kindChat, []byte("a"), 100, hardCap)
	m.push(kindChat, []byte("b"), 100, hardCap)
	overflow, _ := m.push(kindChat, []byte("c"), 100, hardCap)

	if !overflow {
		t.Fatal("pushing past the hard cap should report overflow so the caller terminates the session")
	}
}

func TestMailboxPopDrainsThenClosesCleanly(t *testing.T) {
	m := newMailbox()
	m.push(kindWelcome, []byte("w"), 100, 100)
	m.close()

	f, ok := m.pop()
	if !ok || string(f.payload) != "w" {
		t.Fatalf("pop should still drain frames queued before close, got (%v, %v)", f, ok)
	}

	_, ok = m.pop()
	if ok {
		t.Error("pop on an empty closed mailbox should report !ok")
	}
}

func TestMailboxPushAfterCloseIsNoop(t *testing.T) {
	m := newMailbox()
	m.close()

	overflow, dropped := m.push(kindState, []byte("late"), 1, 1)
	if overflow || dropped {
		t.Error("push after close should be a no-op")
	}
	if len(m.queue) != 0 {
		t.Error("push after close should not enqueue anything")
	}
}
