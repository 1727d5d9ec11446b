package sim

import (
	"github.com/nova-ctrl/asteroids-arena/internal/config"
	"github.com/nova-ctrl/asteroids-arena/internal/entity"
)

// SpawnNewPlayer creates a Player in the World and places it at a safe spawn
// point, using the same placement discipline as a respawn (spec §4.4, §4.5).
// Only the simulation goroutine may call this, since it mutates the World.
func (s *Simulation) SpawnNewPlayer(name string) *entity.Player {
	p := s.World.AddPlayer(name)
	x, y := s.safeSpawnPoint(p.ID)
	p.Spawn(x, y)
	return p
}

// respawnPlayer selects a safe spawn position and brings the player back to
// life (spec §4.4): at least RespawnMinAsteroidDist from every asteroid and
// RespawnMinPlayerDist from every other alive player; after RespawnMaxTrials
// random trials with no qualifying candidate, the farthest-seen candidate
// is used instead of retrying forever.
func (s *Simulation) respawnPlayer(p *entity.Player) {
	x, y := s.safeSpawnPoint(p.ID)
	p.Spawn(x, y)
}

func (s *Simulation) safeSpawnPoint(excludePlayerID uint64) (float64, float64) {
	var bestX, bestY float64
	bestMinDist := -1.0

	for trial := 0; trial < config.RespawnMaxTrials; trial++ {
		x, y := s.World.RandomArenaPoint()

		minDist := s.nearestObstacleDistance(x, y, excludePlayerID)
		if minDist > bestMinDist {
			bestMinDist = minDist
			bestX, bestY = x, y
		}
		if minDist >= config.RespawnMinAsteroidDist && minDist >= config.RespawnMinPlayerDist {
			return x, y
		}
	}
	return bestX, bestY
}

// nearestObstacleDistance returns the distance from (x,y) to the nearest
// asteroid or other alive player, whichever is closer, so safeSpawnPoint
// can compare a single candidate against both §4.4 constraints at once.
func (s *Simulation) nearestObstacleDistance(x, y float64, excludePlayerID uint64) float64 {
	nearest := -1.0
	for _, a := range s.World.Asteroids {
		d := s.World.ToroidalDistance(x, y, a.X, a.Y)
		if nearest < 0 || d < nearest {
			nearest = d
		}
	}
	for id, p := range s.World.Players {
		if id == excludePlayerID || !p.Alive {
			continue
		}
		d := s.World.ToroidalDistance(x, y, p.X, p.Y)
		if nearest < 0 || d < nearest {
			nearest = d
		}
	}
	if nearest < 0 {
		return config.RespawnMinAsteroidDist + config.RespawnMinPlayerDist // no obstacles at all
	}
	return nearest
}
