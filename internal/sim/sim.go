// Package sim implements the fixed-rate world simulation: the ordered
// per-tick phases described in spec §4.1, owning the entity.World
// exclusively and producing the snapshot the broadcaster fans out.
package sim

import (
	"sort"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/entity"
	"github.com/nova-ctrl/asteroids-arena/internal/physics"
	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

// ClientActions is one session's queued input events for the tick about to
// run, already in the order the client sent them (spec §5: "inputs from one
// client are applied in the order the client sent them").
type ClientActions struct {
	PlayerID uint64
	Actions  []entity.Action
}

// Simulation drives the World forward one tick at a time. It is meant to be
// driven exclusively from a single goroutine (internal/server's tick loop);
// it holds no locks of its own (spec §5: "Only the simulation task mutates
// World").
type Simulation struct {
	World *entity.World

	collideGrid *physics.Grid

	waveCountdownRunning bool // true once the post-clear countdown has started
}

// collisionCellSize must be >= the largest radius sum between any two
// colliding bodies: two Large asteroids (5+5=10) is the widest case.
const collisionCellSize = 10.0

// NewSimulation creates a simulation over a freshly constructed world of the
// configured arena dimensions.
func NewSimulation() *Simulation {
	w := entity.NewWorld(config.ArenaWidth, config.ArenaHeight)
	return &Simulation{
		World:       w,
		collideGrid: physics.NewGrid(config.ArenaWidth, config.ArenaHeight, collisionCellSize),
	}
}

// Tick runs one full simulation step (spec §4.1 phases 1-7) and returns the
// resulting snapshot. `ordered` is applied by ascending PlayerID (spec §5's
// deterministic client tie-break); the caller (internal/server's drainInputs)
// provides it pre-sorted, and Tick checks the order and sorts the slice in
// place only when it is not already sorted.
func (s *Simulation) Tick(dt float64, ordered []ClientActions) *protocol.State {
	if !sort.SliceIsSorted(ordered, func(i, j int) bool { return ordered[i].PlayerID < ordered[j].PlayerID }) {
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].PlayerID < ordered[j].PlayerID })
	}

	s.phaseInputDrain(ordered)
	s.phaseTimerAdvance(dt)
	s.phaseMotionIntegration(dt)
	s.phaseFiringResolution()
	s.phaseCollisionResolution()
	s.phaseWaveProgression(dt)

	s.World.Tick++
	return s.phaseSnapshotEmission()
}

// phaseInputDrain applies each client's queued actions to its player, in
// client order, then client-arrival order (spec §4.1 phase 1). Every input
// for a dead player is silently dropped, Fire included, so no fire request
// is left pending for phase 4.
func (s *Simulation) phaseInputDrain(ordered []ClientActions) {
	for _, ca := range ordered {
		p, ok := s.World.Players[ca.PlayerID]
		if !ok {
			continue
		}
		for _, act := range ca.Actions {
			if !p.Alive {
				continue
			}
			if act == entity.ActionFire {
				p.RequestFire()
				continue
			}
			p.ApplyAction(act)
		}
	}
}

// phaseTimerAdvance decrements every per-entity timer by dt and applies the
// transitions that fire at zero: respawn completion and combo lapse
// (spec §4.1 phase 2).
func (s *Simulation) phaseTimerAdvance(dt float64) {
	for _, p := range s.World.Players {
		wasRespawning := !p.Alive && p.RespawnRemaining > 0
		p.AdvanceTimers(dt)
		if wasRespawning && p.RespawnRemaining == 0 {
			s.respawnPlayer(p)
		}
	}

	for id, b := range s.World.Bullets {
		if b.AdvanceTimer(dt) {
			delete(s.World.Bullets, id)
		}
	}

	for id, pu := range s.World.PowerUps {
		if pu.AdvanceTimer(dt) {
			delete(s.World.PowerUps, id)
		}
	}

	if s.World.WavePendingSecs > 0 {
		s.World.WavePendingSecs -= dt
		if s.World.WavePendingSecs < 0 {
			s.World.WavePendingSecs = 0
		}
	}
}

// phaseMotionIntegration advances every entity's position (spec §4.1 phase 3).
func (s *Simulation) phaseMotionIntegration(dt float64) {
	for _, p := range s.World.Players {
		p.Integrate(s.World, dt)
	}
	for _, a := range s.World.Asteroids {
		a.Integrate(s.World, dt)
	}
	for _, b := range s.World.Bullets {
		b.Integrate(s.World, dt)
	}
}

// phaseFiringResolution spawns bullets for players who requested fire this
// tick and whose cooldown has elapsed (spec §4.1 phase 4).
func (s *Simulation) phaseFiringResolution() {
	for _, p := range s.World.Players {
		if !p.ConsumeFireRequest() {
			continue
		}
		if !p.CanFire() {
			continue
		}
		p.LastFireCooldown = p.FireCooldown()
		for _, b := range entity.FireBullets(p) {
			s.World.SpawnBullet(b)
		}
	}
}

// phaseWaveProgression starts or completes the wave countdown (spec §4.1
// phase 6, §4.3).
func (s *Simulation) phaseWaveProgression(dt float64) {
	if len(s.World.Asteroids) > 0 {
		return
	}
	if s.World.Wave == 0 {
		s.startWave()
		return
	}
	if !s.waveCountdownRunning {
		s.World.WavePendingSecs = config.WaveCountdownSecs
		s.waveCountdownRunning = true
		return
	}
	if s.World.WavePendingSecs == 0 {
		s.waveCountdownRunning = false
		s.startWave()
	}
}

func (s *Simulation) startWave() {
	s.World.Wave++
	count := entity.WaveTargetAsteroidCount(s.World.Wave)
	alive := s.World.AlivePlayers()
	for i := 0; i < count; i++ {
		x, y := s.farSpawnPoint(alive)
		s.World.SpawnAsteroid(entity.NewAsteroid(entity.AsteroidLarge, x, y))
	}
	s.World.WavePendingSecs = 0
}

// farSpawnPoint returns a random arena point at least WaveMinSpawnDistFromPlayer
// from every alive player, falling back to the first random candidate after
// a bounded number of trials (spec §4.1 phase 6 + the same "give up and use
// best effort" discipline as respawn placement, §4.4).
func (s *Simulation) farSpawnPoint(alive []*entity.Player) (float64, float64) {
	var fallbackX, fallbackY float64
	for trial := 0; trial < config.RespawnMaxTrials; trial++ {
		x, y := s.World.RandomArenaPoint()
		if trial == 0 {
			fallbackX, fallbackY = x, y
		}
		ok := true
		for _, p := range alive {
			if s.World.ToroidalDistance(x, y, p.X, p.Y) < config.WaveMinSpawnDistFromPlayer {
				ok = false
				break
			}
		}
		if ok {
			return x, y
		}
	}
	return fallbackX, fallbackY
}
