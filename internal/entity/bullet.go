package entity

import (
	"math"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
)

// Bullet is a projectile fired by a player (spec §3).
type Bullet struct {
	ID               uint64
	OwnerID          uint64
	X, Y             float64
	VX, VY           float64
	LifetimeRemain   float64
}

// NewBullet creates a bullet fired from (x,y) along angle, inheriting the
// shooter's own velocity (spec §4.1 phase 4).
func NewBullet(ownerID uint64, x, y, angle, ownerVX, ownerVY float64) *Bullet {
	return &Bullet{
		OwnerID:        ownerID,
		X:              x,
		Y:              y,
		VX:             ownerVX + math.Cos(angle)*config.BulletSpeed,
		VY:             ownerVY + math.Sin(angle)*config.BulletSpeed,
		LifetimeRemain: config.BulletLifetime,
	}
}

// AdvanceTimer decrements the bullet's remaining lifetime and reports
// whether it should be removed (spec §4.1 phase 2).
func (b *Bullet) AdvanceTimer(dt float64) (expired bool) {
	b.LifetimeRemain = clampZero(b.LifetimeRemain - dt)
	return b.LifetimeRemain == 0
}

// Integrate moves the bullet in a straight line and wraps it (spec §4.1
// phase 3).
func (b *Bullet) Integrate(w *World, dt float64) {
	b.X += b.VX * dt
	b.Y += b.VY * dt
	w.Wrap(&b.X, &b.Y)
}

// FireBullets computes the bullets produced by a single Fire input, applying
// the TripleShot spread when active (spec §4.1 phase 4).
func FireBullets(p *Player) []*Bullet {
	noseX := p.X + math.Cos(p.Heading)*config.BulletSpawnOffset
	noseY := p.Y + math.Sin(p.Heading)*config.BulletSpawnOffset

	if p.ActivePowerUps[PowerUpTripleShot] > 0 {
		angles := []float64{
			p.Heading - config.TripleShotSpreadRad,
			p.Heading,
			p.Heading + config.TripleShotSpreadRad,
		}
		out := make([]*Bullet, len(angles))
		for i, a := range angles {
			out[i] = NewBullet(p.ID, noseX, noseY, a, p.VX, p.VY)
		}
		return out
	}
	return []*Bullet{NewBullet(p.ID, noseX, noseY, p.Heading, p.VX, p.VY)}
}
