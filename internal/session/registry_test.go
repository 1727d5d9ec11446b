package session

import (
	"net"
	"testing"
	"time"
)

func newPipedSession(t *testing.T, id uint64) (*Session, net.Conn) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	s := New(serverConn, id, "p", nil)
	s.Start()
	return s, clientConn
}

func TestRegistryAddGetCount(t *testing.T) {
	r := NewRegistry()
	s, clientConn := newPipedSession(t, 1)
	defer clientConn.Close()
	defer s.Terminate("test done")

	r.Add(s)

	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}
	got, ok := r.Get(1)
	if !ok || got != s {
		t.Fatalf("Get(1) = (%v, %v), want the added session", got, ok)
	}
}

func TestRegistrySweepClosedRemovesTerminatedSessions(t *testing.T) {
	r := NewRegistry()
	s, clientConn := newPipedSession(t, 1)
	defer clientConn.Close()

	r.Add(s)
	s.Terminate("bye")

	var removed []Removed
	deadline := time.After(time.Second)
	for len(removed) == 0 {
		removed = r.SweepClosed()
		if len(removed) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for sweep to observe the closed session")
		case <-time.After(time.Millisecond):
		}
	}

	if removed[0].ID != 1 || removed[0].Reason != "bye" {
		t.Errorf("removed = %+v, want {ID:1 Reason:bye}", removed[0])
	}
	if r.Count() != 0 {
		t.Errorf("Count() after sweep = %d, want 0", r.Count())
	}
}

func TestRegistryBroadcastStateReachesAllSessions(t *testing.T) {
	r := NewRegistry()
	s1, c1 := newPipedSession(t, 1)
	s2, c2 := newPipedSession(t, 2)
	defer c1.Close()
	defer c2.Close()
	defer s1.Terminate("test done")
	defer s2.Terminate("test done")

	r.Add(s1)
	r.Add(s2)

	r.BroadcastState([]byte(`{"type":"state"}`))

	for _, c := range []net.Conn{c1, c2} {
		c.SetReadDeadline(time.Now().Add(time.Second))
		buf := make([]byte, 64)
		n, err := c.Read(buf)
		if err != nil || n == 0 {
			t.Errorf("expected a frame on the connection, read err=%v n=%d", err, n)
		}
	}
}
