package entity

import (
	"math"
	"math/rand"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
)

// PowerUpKind identifies one of the four pickup effects (spec §3).
type PowerUpKind int

const (
	PowerUpShield PowerUpKind = iota
	PowerUpRapidFire
	PowerUpTripleShot
	PowerUpSpeedBoost
)

// Code returns the single-letter wire code for a power-up kind (spec §6).
func (k PowerUpKind) Code() string {
	switch k {
	case PowerUpShield:
		return "S"
	case PowerUpRapidFire:
		return "R"
	case PowerUpTripleShot:
		return "T"
	case PowerUpSpeedBoost:
		return "B"
	default:
		return "?"
	}
}

// AllPowerUpKinds lists every kind, for uniform-random selection on drop.
var AllPowerUpKinds = []PowerUpKind{PowerUpShield, PowerUpRapidFire, PowerUpTripleShot, PowerUpSpeedBoost}

// Player is a connected participant's ship, identified by a stable id
// assigned at connection (spec §3).
type Player struct {
	ID   uint64
	Name string

	X, Y     float64
	VX, VY   float64
	Heading  float64

	Alive bool

	RespawnRemaining          float64
	SpawnInvincibilityRemain  float64

	Score int

	Combo       int
	ComboExpiry float64

	KillStreak int

	// ActivePowerUps maps kind -> remaining seconds. Absence means inactive.
	ActivePowerUps map[PowerUpKind]float64

	LastFireCooldown float64 // seconds remaining until next shot is allowed

	rotateDir    int // -1 left, 0 stop, +1 right
	thrusting    bool
	fireRequested bool
}

// NewPlayer constructs a live player at the origin with combo 1 and no
// power-ups; Spawn places it and starts its spawn invincibility (spec §4.4).
func NewPlayer(id uint64, name string) *Player {
	return &Player{
		ID:             id,
		Name:           name,
		Alive:          true,
		Combo:          1,
		ActivePowerUps: make(map[PowerUpKind]float64),
	}
}

// Spawn places the player at x,y with full invincibility, as used both for
// initial connection and for respawn (spec §4.4).
func (p *Player) Spawn(x, y float64) {
	p.X, p.Y = x, y
	p.VX, p.VY = 0, 0
	p.Heading = rand.Float64() * 2 * math.Pi
	p.Alive = true
	p.SpawnInvincibilityRemain = config.SpawnInvincibilitySecs
	p.RespawnRemaining = 0
}

// HasShield reports whether the Shield power-up is currently active.
func (p *Player) HasShield() bool {
	return p.ActivePowerUps[PowerUpShield] > 0
}

// Invincible reports whether the player is immune to asteroid/bullet damage
// right now: either mid spawn-invincibility or shielded (spec §4.1 phase 5).
func (p *Player) Invincible() bool {
	return p.SpawnInvincibilityRemain > 0 || p.HasShield()
}

// Blinking reports whether the client should render the blink effect
// (spec §4.4: "the player is marked 'blinking' in snapshots").
func (p *Player) Blinking() bool {
	return p.SpawnInvincibilityRemain > 0
}

// SetRotation records a RotateLeft/Right/Stop input for the next motion
// integration (spec §4.1 phase 1 -> phase 3).
func (p *Player) SetRotation(dir int) { p.rotateDir = dir }

// SetThrust records a ThrustOn/Off input.
func (p *Player) SetThrust(on bool) { p.thrusting = on }

// Thrusting reports the last-set thrust input state.
func (p *Player) Thrusting() bool { return p.thrusting }

// RequestFire marks that the player asked to fire this tick (spec §4.1
// phase 1); the actual bullet spawn happens in phase 4 subject to cooldown.
func (p *Player) RequestFire() { p.fireRequested = true }

// ConsumeFireRequest reports whether a fire request is pending and clears
// it, so at most one fire is attempted per tick regardless of how many Fire
// inputs arrived.
func (p *Player) ConsumeFireRequest() bool {
	requested := p.fireRequested
	p.fireRequested = false
	return requested
}

// AdvanceTimers decrements every per-player timer by dt, clamped at zero,
// and applies the state transitions spec §4.1 phase 2 describes: combo
// lapse and (via the caller, since it needs world access for a safe spawn
// position) respawn completion is signalled by RespawnRemaining reaching 0.
func (p *Player) AdvanceTimers(dt float64) {
	if p.SpawnInvincibilityRemain > 0 {
		p.SpawnInvincibilityRemain = clampZero(p.SpawnInvincibilityRemain - dt)
	}
	if p.ComboExpiry > 0 {
		p.ComboExpiry = clampZero(p.ComboExpiry - dt)
		if p.ComboExpiry == 0 {
			p.Combo = 1
		}
	}
	for kind, remaining := range p.ActivePowerUps {
		remaining = clampZero(remaining - dt)
		if remaining == 0 {
			delete(p.ActivePowerUps, kind)
		} else {
			p.ActivePowerUps[kind] = remaining
		}
	}
	if !p.Alive && p.RespawnRemaining > 0 {
		p.RespawnRemaining = clampZero(p.RespawnRemaining - dt)
	}
	if p.LastFireCooldown > 0 {
		p.LastFireCooldown = clampZero(p.LastFireCooldown - dt)
	}
}

// Integrate applies motion integration for one tick (spec §4.1 phase 3):
// rotation, thrust acceleration, position update and toroidal wrap, then
// drag and speed clamp (thrust and max speed both boosted by SpeedBoost).
func (p *Player) Integrate(w *World, dt float64) {
	if !p.Alive {
		return
	}

	accel := config.ThrustAccel
	maxSpeed := config.MaxSpeed
	if p.ActivePowerUps[PowerUpSpeedBoost] > 0 {
		accel *= config.SpeedBoostMult
		maxSpeed *= config.SpeedBoostMult
	}

	switch p.rotateDir {
	case -1:
		p.Heading -= config.RotationSpeed * dt
	case 1:
		p.Heading += config.RotationSpeed * dt
	}
	p.Heading = normalizeAngle(p.Heading)

	if p.thrusting {
		p.VX += math.Cos(p.Heading) * accel * dt
		p.VY += math.Sin(p.Heading) * accel * dt
	}

	p.X += p.VX * dt
	p.Y += p.VY * dt
	w.Wrap(&p.X, &p.Y)

	p.VX *= config.LinearDrag
	p.VY *= config.LinearDrag

	speed := math.Hypot(p.VX, p.VY)
	if speed > maxSpeed && speed > 0 {
		scale := maxSpeed / speed
		p.VX *= scale
		p.VY *= scale
	}
}

// FireCooldown returns the cooldown duration for this player's current
// power-up state (spec §4.1 phase 4): RapidFire multiplies the base by 0.4.
func (p *Player) FireCooldown() float64 {
	base := config.BaseFireCooldown
	if p.ActivePowerUps[PowerUpRapidFire] > 0 {
		base *= config.RapidFireMultiplier
	}
	return base
}

// CanFire reports whether the cooldown has elapsed.
func (p *Player) CanFire() bool {
	return p.Alive && p.LastFireCooldown <= 0
}

// ApplyPowerUp sets (or replaces) the remaining time for a picked-up
// power-up kind (spec §4.1 phase 5d, scenario 5: replacement, not additive).
func (p *Player) ApplyPowerUp(kind PowerUpKind) {
	p.ActivePowerUps[kind] = config.PowerUpActiveSeconds
}

// RegisterComboKill updates the combo multiplier for an asteroid kill and
// returns the combo value to use for *this* kill's score (spec §4.2: the
// update happens before the score is computed).
func (p *Player) RegisterComboKill() int {
	if p.ComboExpiry > 0 {
		if p.Combo < config.ComboMax {
			p.Combo++
		}
	} else {
		p.Combo = 2
	}
	p.ComboExpiry = config.ComboExpirySecs
	return p.Combo
}

// Kill transitions the player to dead, applying the death penalty, combo
// reset, and respawn timer start (spec §4.4).
func (p *Player) Kill() {
	p.Alive = false
	if p.Score >= 0 {
		p.Score -= ceilFrac(p.Score, config.DeathPenaltyFraction)
	}
	p.Combo = 1
	p.ComboExpiry = 0
	p.KillStreak = 0
	p.ActivePowerUps = make(map[PowerUpKind]float64)
	p.RespawnRemaining = config.RespawnDelaySecs
	p.VX, p.VY = 0, 0
}

// RegisterPvPKill increments the killer's streak and returns the score
// awarded for this kill (flat 200, plus a +100 bonus every 3rd streak kill),
// per spec §4.1 phase 5b and §4.4.
func (p *Player) RegisterPvPKill() int {
	p.KillStreak++
	award := config.ScorePvPKill
	if p.KillStreak%config.StreakBonusEvery == 0 {
		award += config.ScoreStreakBonus
	}
	return award
}

// ceilFrac returns ceil(frac*score) as a non-negative int, implementing the
// "ceiling of absolute value" rounding spec §4.4/§9 settles on.
func ceilFrac(score int, frac float64) int {
	v := frac * float64(score)
	c := int(math.Ceil(v))
	if c < 0 {
		c = 0
	}
	return c
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
