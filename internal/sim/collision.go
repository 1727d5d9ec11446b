package sim

import (
	"sort"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/entity"
	"github.com/nova-ctrl/asteroids-arena/internal/physics"
)

// phaseCollisionResolution runs spec §4.1 phase 5's sub-phases in contract
// order, breaking ties within each sub-phase by ascending entity id so tick
// outcomes are deterministic given identical input ordering (spec §5, §8
// law 1). Two SPEC_FULL additions bracket the spec's a-d order: mutual
// bullet neutralization runs first (grounded on the teacher's
// checkProjectileProjectileCollisions, so a bullet destroyed by another
// bullet never also scores a kill), and asteroid-asteroid elastic bounce
// runs last (grounded on the teacher's bounceAsteroids; purely cosmetic
// physics that never destroys or scores).
func (s *Simulation) phaseCollisionResolution() {
	s.resolveBulletBulletCollisions()
	s.resolveBulletVsAsteroid()
	s.resolveBulletVsPlayer()
	s.resolvePlayerVsAsteroid()
	s.resolvePlayerVsPowerUp()
	s.resolveAsteroidBounce()
}

func sortedBulletIDs(w *entity.World) []uint64 {
	ids := make([]uint64, 0, len(w.Bullets))
	for id := range w.Bullets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedAsteroidIDs(w *entity.World) []uint64 {
	ids := make([]uint64, 0, len(w.Asteroids))
	for id := range w.Asteroids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedPlayerIDs(w *entity.World) []uint64 {
	ids := make([]uint64, 0, len(w.Players))
	for id := range w.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedPowerUpIDs(w *entity.World) []uint64 {
	ids := make([]uint64, 0, len(w.PowerUps))
	for id := range w.PowerUps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// resolveBulletBulletCollisions destroys both bullets in a pair that
// collide, as long as they belong to different owners (a ship's own
// triple-shot spread never self-destructs).
func (s *Simulation) resolveBulletBulletCollisions() {
	ids := sortedBulletIDs(s.World)
	dead := make(map[uint64]bool)
	for i, idA := range ids {
		if dead[idA] {
			continue
		}
		a := s.World.Bullets[idA]
		for j := i + 1; j < len(ids); j++ {
			idB := ids[j]
			if dead[idB] {
				continue
			}
			b := s.World.Bullets[idB]
			if a.OwnerID == b.OwnerID {
				continue
			}
			if physics.CirclesOverlap(a.X, a.Y, config.BulletRadius, b.X, b.Y, config.BulletRadius) {
				dead[idA] = true
				dead[idB] = true
				break
			}
		}
	}
	for id := range dead {
		delete(s.World.Bullets, id)
	}
}

// resolveBulletVsAsteroid implements spec §4.1 phase 5a.
func (s *Simulation) resolveBulletVsAsteroid() {
	bulletIDs := sortedBulletIDs(s.World)
	asteroidIDs := sortedAsteroidIDs(s.World)

	consumedBullets := make(map[uint64]bool)
	destroyedAsteroids := make(map[uint64]bool)
	var spawnedAsteroids []*entity.Asteroid
	var spawnedPowerUps []*entity.PowerUp

	for _, bid := range bulletIDs {
		b := s.World.Bullets[bid]
		for _, aid := range asteroidIDs {
			if destroyedAsteroids[aid] {
				continue
			}
			a := s.World.Asteroids[aid]
			if !physics.PointInCircle(b.X, b.Y, a.X, a.Y, a.Radius) {
				continue
			}

			consumedBullets[bid] = true
			destroyedAsteroids[aid] = true

			if owner, ok := s.World.Players[b.OwnerID]; ok {
				combo := owner.RegisterComboKill()
				owner.Score += a.Size.Score() * combo
			}

			spawnedAsteroids = append(spawnedAsteroids, a.Fragment()...)
			if entity.RollPowerUpDrop() {
				spawnedPowerUps = append(spawnedPowerUps, entity.NewGroundPowerUp(a.X, a.Y))
			}
			break
		}
	}

	for id := range consumedBullets {
		delete(s.World.Bullets, id)
	}
	for id := range destroyedAsteroids {
		delete(s.World.Asteroids, id)
	}
	for _, child := range spawnedAsteroids {
		s.World.SpawnAsteroid(child)
	}
	for _, pu := range spawnedPowerUps {
		s.World.SpawnPowerUp(pu)
	}
}

// resolveBulletVsPlayer implements spec §4.1 phase 5b. A bullet consumed in
// phase 5a is already gone from s.World.Bullets and cannot participate
// here, satisfying the spec's "consumed bullet no longer participates"
// rule without extra bookkeeping.
func (s *Simulation) resolveBulletVsPlayer() {
	bulletIDs := sortedBulletIDs(s.World)
	playerIDs := sortedPlayerIDs(s.World)

	consumed := make(map[uint64]bool)
	for _, bid := range bulletIDs {
		b := s.World.Bullets[bid]
		for _, pid := range playerIDs {
			p := s.World.Players[pid]
			if p.ID == b.OwnerID || !p.Alive || p.Invincible() {
				continue
			}
			if !physics.PointInCircle(b.X, b.Y, p.X, p.Y, config.ShipRadius) {
				continue
			}

			consumed[bid] = true
			p.Kill()
			if owner, ok := s.World.Players[b.OwnerID]; ok {
				owner.Score += owner.RegisterPvPKill()
			}
			break
		}
		if consumed[bid] {
			continue
		}
	}
	for id := range consumed {
		delete(s.World.Bullets, id)
	}
}

// resolvePlayerVsAsteroid implements spec §4.1 phase 5c.
func (s *Simulation) resolvePlayerVsAsteroid() {
	playerIDs := sortedPlayerIDs(s.World)
	asteroidIDs := sortedAsteroidIDs(s.World)

	for _, pid := range playerIDs {
		p := s.World.Players[pid]
		if !p.Alive || p.Invincible() {
			continue
		}
		for _, aid := range asteroidIDs {
			a := s.World.Asteroids[aid]
			if physics.CirclesOverlap(p.X, p.Y, config.ShipRadius, a.X, a.Y, a.Radius) {
				p.Kill()
				break
			}
		}
	}
}

// resolvePlayerVsPowerUp implements spec §4.1 phase 5d.
func (s *Simulation) resolvePlayerVsPowerUp() {
	playerIDs := sortedPlayerIDs(s.World)
	powerUpIDs := sortedPowerUpIDs(s.World)

	consumed := make(map[uint64]bool)
	for _, pid := range playerIDs {
		p := s.World.Players[pid]
		if !p.Alive {
			continue
		}
		for _, puid := range powerUpIDs {
			if consumed[puid] {
				continue
			}
			pu := s.World.PowerUps[puid]
			if physics.PointInCircle(pu.X, pu.Y, p.X, p.Y, config.ShipRadius) {
				consumed[puid] = true
				p.ApplyPowerUp(pu.Kind)
			}
		}
	}
	for id := range consumed {
		delete(s.World.PowerUps, id)
	}
}

// resolveAsteroidBounce applies elastic collisions between overlapping
// asteroids, grounded on the teacher's bounceAsteroids. Uses the broad-phase
// grid since a full wave can hold up to 100 asteroids.
func (s *Simulation) resolveAsteroidBounce() {
	ids := sortedAsteroidIDs(s.World)
	if len(ids) < 2 {
		return
	}

	s.collideGrid.Reset()
	for i, id := range ids {
		a := s.World.Asteroids[id]
		s.collideGrid.Insert(a.X, a.Y, i)
	}

	for i, idA := range ids {
		a := s.World.Asteroids[idA]
		s.collideGrid.Query(a.X, a.Y, func(j int) bool {
			if j <= i {
				return false
			}
			b := s.World.Asteroids[ids[j]]
			dist := physics.Distance(a.X, a.Y, b.X, b.Y)
			minDist := a.Radius + b.Radius
			if dist > 0 && dist < minDist {
				bounceAsteroids(a, b, dist)
			}
			return false
		})
	}
}

func bounceAsteroids(a, b *entity.Asteroid, dist float64) {
	nx := (b.X - a.X) / dist
	ny := (b.Y - a.Y) / dist

	dvx := a.VX - b.VX
	dvy := a.VY - b.VY
	dvn := dvx*nx + dvy*ny
	if dvn < 0 {
		return
	}

	m1 := a.Radius * a.Radius
	m2 := b.Radius * b.Radius
	totalMass := m1 + m2
	impulse := 2 * dvn / totalMass

	a.VX -= impulse * m2 * nx
	a.VY -= impulse * m2 * ny
	b.VX += impulse * m1 * nx
	b.VY += impulse * m1 * ny

	overlap := (a.Radius + b.Radius) - dist
	if overlap > 0 {
		sep1 := overlap * m2 / totalMass
		sep2 := overlap * m1 / totalMass
		a.X -= nx * sep1
		a.Y -= ny * sep1
		b.X += nx * sep2
		b.Y += ny * sep2
	}
}
