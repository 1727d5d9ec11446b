package server

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

// TestIntegrationHandshakeAndSnapshotDelivery runs a real server over a
// loopback TCP listener, connects a bare client, and checks that the
// handshake produces a Welcome followed by periodic State snapshots — the
// same full-loop shape as the teacher pack's own game-loop integration test,
// adapted from a renderer-pressure simulation to a wire-protocol one.
func TestIntegrationHandshakeAndSnapshotDelivery(t *testing.T) {
	srv, err := New("127.0.0.1:0")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()
	defer func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("server did not shut down in time")
		}
	}()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := protocol.WriteFrame(conn, protocol.Hello{Type: protocol.TypeHello, Name: "tester"}); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	payload, err := protocol.ReadFrame(conn)
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var welcome protocol.Welcome
	if err := json.Unmarshal(payload, &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.PlayerID == 0 {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	payload, err = protocol.ReadFrame(conn)
	if err != nil {
		t.Fatalf("read first state snapshot: %v", err)
	}
	env, err := protocol.DecodeEnvelope(payload)
	if err != nil || env.Type != protocol.TypeState {
		t.Fatalf("expected a state frame, got type=%q err=%v", env.Type, err)
	}

	var st protocol.State
	if err := json.Unmarshal(payload, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	found := false
	for _, p := range st.Players {
		if p.ID == welcome.PlayerID {
			found = true
		}
	}
	if !found {
		t.Error("the connecting player should appear in its own state snapshot")
	}
}

func TestNormalizeReason(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "peer_close"},
		{"flood", "flood"},
		{"slow consumer", "slow_consumer"},
		{"malformed frame", "protocol_error"},
	}
	for _, tt := range tests {
		if got := normalizeReason(tt.in); got != tt.want {
			t.Errorf("normalizeReason(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
