// Package server wires the Connection Acceptor, Session Registry, World
// Simulation, and Broadcaster together (spec §2). It owns the TCP listener
// and the single goroutine that drives the simulation tick; every other
// goroutine (one reader and one writer per session, plus the acceptor
// itself) only ever touches the World indirectly, through the join channel,
// the registry's closed-session sweep, and the session input queues (spec §5).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/metrics"
	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
	"github.com/nova-ctrl/asteroids-arena/internal/session"
	"github.com/nova-ctrl/asteroids-arena/internal/sim"
)

// joinRequest is how the acceptor asks the simulation goroutine to allocate
// a new player, since only that goroutine may mutate the World (spec §5).
type joinRequest struct {
	name   string
	result chan uint64
}

// Server ties the four components from spec §2 together for one process:
// a single global room, per spec §1's "one global room per server process"
// non-goal around matchmaking.
type Server struct {
	listener net.Listener
	registry *session.Registry
	sim      *sim.Simulation

	joinCh chan joinRequest
}

// New constructs a Server bound to the given TCP address. Binding happens
// immediately so a bad address surfaces as a ConfigError-adjacent failure
// before the caller starts accepting (spec §7, §6 exit code 1).
func New(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return &Server{
		listener: ln,
		registry: session.NewRegistry(),
		sim:      sim.NewSimulation(),
		joinCh:   make(chan joinRequest, 16),
	}, nil
}

// Addr returns the address the server is actually listening on (useful when
// the caller requested port 0).
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Run accepts connections and drives the simulation until ctx is cancelled.
// On cancellation it stops accepting, lets the in-flight tick finish, then
// terminates every session and waits up to a grace period for their writers
// to drain and close their transports (spec §5). Transports still draining
// when the grace period ends are not force-closed; Run returns without them.
func (s *Server) Run(ctx context.Context) error {
	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		s.acceptLoop(ctx)
	}()

	s.tickLoop(ctx)

	_ = s.listener.Close()
	<-acceptDone

	log.Printf("server: shutting down, draining %d session(s)", s.registry.Count())
	drainCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownWriterGrace)
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.registry.Shutdown("server shutting down")
		close(done)
	}()
	select {
	case <-done:
	case <-drainCtx.Done():
		log.Printf("server: shutdown grace period elapsed with sessions still draining")
	}
	return nil
}

// acceptLoop accepts connections until ctx is cancelled or the listener is
// closed by Run's shutdown sequence.
func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			log.Printf("server: accept error: %v", err)
			return
		}
		go s.handleConn(ctx, conn)
	}
}

// handleConn performs the handshake (spec §4.5) then, once the simulation
// goroutine has allocated a player id, registers and starts the session.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	traceID := uuid.NewString()[:8]

	if err := conn.SetReadDeadline(time.Now().Add(config.HandshakeTimeout)); err != nil {
		_ = conn.Close()
		return
	}

	payload, err := protocol.ReadFrame(conn)
	if err != nil {
		log.Printf("handshake[%s]: read error: %v", traceID, err)
		_ = conn.Close()
		return
	}
	env, err := protocol.DecodeEnvelope(payload)
	if err != nil || env.Type != protocol.TypeHello {
		log.Printf("handshake[%s]: expected hello frame", traceID)
		_ = conn.Close()
		return
	}
	var hello protocol.Hello
	if err := json.Unmarshal(payload, &hello); err != nil {
		_ = conn.Close()
		return
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		_ = conn.Close()
		return
	}

	name := session.SanitizeName(hello.Name)

	req := joinRequest{name: name, result: make(chan uint64, 1)}
	select {
	case s.joinCh <- req:
	case <-ctx.Done():
		_ = conn.Close()
		return
	}

	var playerID uint64
	select {
	case playerID = <-req.result:
	case <-ctx.Done():
		_ = conn.Close()
		return
	case <-time.After(2 * time.Second):
		log.Printf("handshake[%s]: timed out waiting for simulation to allocate a player", traceID)
		_ = conn.Close()
		return
	}

	sess := session.New(conn, playerID, name, s.registry)
	sess.TraceID = traceID
	welcome := protocol.Welcome{
		Type:     protocol.TypeWelcome,
		PlayerID: playerID,
		ArenaW:   uint32(config.ArenaWidth),
		ArenaH:   uint32(config.ArenaHeight),
	}
	if err := sess.SendWelcome(welcome); err != nil {
		log.Printf("handshake[%s]: welcome write failed: %v", traceID, err)
		_ = conn.Close()
		return
	}

	s.registry.Add(sess)
	sess.Start()
	log.Printf("session[%s]: player %d (%q) joined", traceID, playerID, name)
}

// tickLoop is the single goroutine allowed to mutate the World (spec §5). It
// must not suspend once a tick's drain has occurred, so network I/O never
// happens here beyond the non-blocking join-channel drain.
func (s *Server) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(config.TickTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOneTick()
		}
	}
}

func (s *Server) runOneTick() {
	start := time.Now()

	s.processJoins()
	s.sweepClosedSessions()
	actions := s.drainInputs()

	state := s.sim.Tick(config.DeltaT, actions)

	metrics.RecordTick(time.Since(start))
	metrics.AsteroidCount.Set(float64(len(s.sim.World.Asteroids)))
	metrics.ActiveSessions.Set(float64(s.registry.Count()))

	payload, err := json.Marshal(state)
	if err != nil {
		log.Printf("tick %d: marshal state: %v", state.Tick, err)
		return
	}
	s.registry.BroadcastState(payload)
}

// processJoins allocates a Player in the World for every handshake that
// completed since the last tick (spec §4.5).
func (s *Server) processJoins() {
	for {
		select {
		case req := <-s.joinCh:
			p := s.sim.SpawnNewPlayer(req.name)
			req.result <- p.ID
		default:
			return
		}
	}
}

// sweepClosedSessions removes every session that terminated since the last
// tick (I/O error, protocol error, overflow) along with its Player, under
// the registry's writer lock held only briefly (spec §4.5, §5).
func (s *Server) sweepClosedSessions() {
	for _, r := range s.registry.SweepClosed() {
		s.sim.World.RemovePlayer(r.ID)
		reason := r.Reason
		if reason == "" {
			reason = "peer_close"
		}
		metrics.SessionsTerminated.WithLabelValues(normalizeReason(r.Reason)).Inc()
		log.Printf("session: player %d removed (%s)", r.ID, reason)
	}
}

func normalizeReason(reason string) string {
	switch reason {
	case "":
		return "peer_close"
	case "flood":
		return "flood"
	case "slow consumer":
		return "slow_consumer"
	default:
		return "protocol_error"
	}
}

// drainInputs collects every session's queued actions, ordered by ascending
// player id (spec §5's deterministic client tie-break).
func (s *Server) drainInputs() []sim.ClientActions {
	out := make([]sim.ClientActions, 0, len(s.sim.World.Players))
	for id := range s.sim.World.Players {
		sess, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		actions := sess.DrainInput()
		if len(actions) == 0 {
			continue
		}
		out = append(out, sim.ClientActions{PlayerID: id, Actions: actions})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}
