package entity

import (
	"math/rand"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
)

// PowerUp is a pickup lying on the arena floor (spec §3).
type PowerUp struct {
	ID             uint64
	Kind           PowerUpKind
	X, Y           float64
	LifetimeRemain float64
}

// NewGroundPowerUp creates a power-up of a uniformly random kind at x,y,
// with the default ground lifetime (spec §3, §4.1 phase 5a).
func NewGroundPowerUp(x, y float64) *PowerUp {
	kind := AllPowerUpKinds[rand.Intn(len(AllPowerUpKinds))]
	return &PowerUp{
		Kind:           kind,
		X:              x,
		Y:              y,
		LifetimeRemain: config.PowerUpGroundLife,
	}
}

// AdvanceTimer decrements the ground lifetime and reports expiry.
func (p *PowerUp) AdvanceTimer(dt float64) (expired bool) {
	p.LifetimeRemain = clampZero(p.LifetimeRemain - dt)
	return p.LifetimeRemain == 0
}

// RollPowerUpDrop reports whether destroying an asteroid drops a power-up,
// per the configured probability (spec §4.1 phase 5a).
func RollPowerUpDrop() bool {
	return rand.Float64() < config.PowerUpDropChance
}
