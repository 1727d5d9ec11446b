package session

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

type fakeRelay struct {
	calls []string
}

func (f *fakeRelay) RelayChat(from, text string) {
	f.calls = append(f.calls, from+":"+text)
}

func TestSessionDecodesInputAndDrains(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	s := New(serverConn, 1, "p", &fakeRelay{})
	s.Start()
	defer s.Terminate("test done")

	if err := protocol.WriteFrame(clientConn, protocol.Input{Type: protocol.TypeInput, Action: protocol.ActionThrustOn}); err != nil {
		t.Fatalf("write input: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		actions := s.DrainInput()
		if len(actions) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for input to be drained")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSessionRelaysChatImmediately(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	relay := &fakeRelay{}
	s := New(serverConn, 1, "p", relay)
	s.Start()
	defer s.Terminate("test done")

	if err := protocol.WriteFrame(clientConn, protocol.Chat{Type: protocol.TypeChat, Text: "hi"}); err != nil {
		t.Fatalf("write chat: %v", err)
	}

	deadline := time.After(time.Second)
	for len(relay.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for chat relay")
		case <-time.After(time.Millisecond):
		}
	}
	if relay.calls[0] != "p:hi" {
		t.Errorf("relayed chat = %q, want %q", relay.calls[0], "p:hi")
	}
}

func TestSessionTerminateSendsByeBeforeClosing(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	s := New(serverConn, 1, "p", nil)
	s.Start()

	readDone := make(chan protocol.Bye, 1)
	go func() {
		payload, err := protocol.ReadFrame(clientConn)
		if err != nil {
			return
		}
		var bye protocol.Bye
		if json.Unmarshal(payload, &bye) == nil {
			readDone <- bye
		}
	}()

	s.Terminate("flood")

	select {
	case bye := <-readDone:
		if bye.Reason != "flood" {
			t.Errorf("Bye.Reason = %q, want %q", bye.Reason, "flood")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Bye frame")
	}

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not signal Done after Terminate")
	}
}

func TestSessionTerminateIsIdempotent(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	s := New(serverConn, 1, "p", nil)
	s.Start()

	go protocol.ReadFrame(clientConn) // drain the Bye frame so writeLoop can close

	s.Terminate("first")
	s.Terminate("second")

	if s.Reason() != "first" {
		t.Errorf("Reason() = %q, want %q (first call wins)", s.Reason(), "first")
	}
}
