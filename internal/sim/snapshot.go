package sim

import (
	"sort"

	"github.com/nova-ctrl/asteroids-arena/internal/entity"
	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

// phaseSnapshotEmission builds the authoritative State snapshot for the tick
// that just ran (spec §4.1 phase 7). Every collection is walked in ascending
// entity-id order so two simulations fed identical inputs produce
// byte-identical snapshot sequences (spec §8, determinism law).
func (s *Simulation) phaseSnapshotEmission() *protocol.State {
	w := s.World

	players := make([]protocol.PlayerView, 0, len(w.Players))
	for _, id := range sortedPlayerIDs(w) {
		players = append(players, playerView(w.Players[id]))
	}

	asteroids := make([]protocol.AsteroidView, 0, len(w.Asteroids))
	for _, id := range sortedAsteroidIDs(w) {
		a := w.Asteroids[id]
		asteroids = append(asteroids, protocol.AsteroidView{
			ID:   a.ID,
			Size: a.Size.String(),
			X:    a.X,
			Y:    a.Y,
			Rot:  a.Rotation,
		})
	}

	bullets := make([]protocol.BulletView, 0, len(w.Bullets))
	for _, id := range sortedBulletIDs(w) {
		b := w.Bullets[id]
		bullets = append(bullets, protocol.BulletView{
			ID:      b.ID,
			OwnerID: b.OwnerID,
			X:       b.X,
			Y:       b.Y,
		})
	}

	powerups := make([]protocol.PowerUpView, 0, len(w.PowerUps))
	for _, id := range sortedPowerUpIDs(w) {
		p := w.PowerUps[id]
		powerups = append(powerups, protocol.PowerUpView{
			ID:   p.ID,
			Kind: p.Kind.Code(),
			X:    p.X,
			Y:    p.Y,
		})
	}

	return &protocol.State{
		Type:               protocol.TypeState,
		Tick:               w.Tick,
		Wave:               w.Wave,
		AsteroidsRemaining: uint32(len(w.Asteroids)),
		WavePendingS:       float32(w.WavePendingSecs),
		Players:            players,
		Asteroids:          asteroids,
		Bullets:            bullets,
		PowerUps:           powerups,
		Leaderboard:        leaderboard(w),
	}
}

// powerUpCodeOrder fixes the iteration order over a player's active power-ups
// so the wire-level "active_powerups" list is deterministic despite being
// backed by a Go map.
var powerUpCodeOrder = []entity.PowerUpKind{
	entity.PowerUpShield,
	entity.PowerUpRapidFire,
	entity.PowerUpTripleShot,
	entity.PowerUpSpeedBoost,
}

func playerView(p *entity.Player) protocol.PlayerView {
	codes := make([]string, 0, len(powerUpCodeOrder)+1)
	for _, kind := range powerUpCodeOrder {
		if p.ActivePowerUps[kind] > 0 {
			codes = append(codes, kind.Code())
		}
	}
	if p.Blinking() {
		codes = append(codes, "I")
	}

	return protocol.PlayerView{
		ID:             p.ID,
		Name:           p.Name,
		X:              p.X,
		Y:              p.Y,
		Heading:        p.Heading,
		Alive:          p.Alive,
		Blinking:       p.Blinking(),
		Score:          p.Score,
		Combo:          p.Combo,
		KillStreak:     p.KillStreak,
		ActivePowerups: codes,
		RespawnS:       float32(p.RespawnRemaining),
	}
}

// leaderboard returns the top 5 players by score, descending, breaking ties
// by ascending player id for determinism (spec §6).
func leaderboard(w *entity.World) []protocol.LeaderboardEntry {
	ids := sortedPlayerIDs(w)
	sort.SliceStable(ids, func(i, j int) bool {
		return w.Players[ids[i]].Score > w.Players[ids[j]].Score
	})
	if len(ids) > 5 {
		ids = ids[:5]
	}
	out := make([]protocol.LeaderboardEntry, len(ids))
	for i, id := range ids {
		p := w.Players[id]
		out[i] = protocol.LeaderboardEntry{Name: p.Name, Score: p.Score}
	}
	return out
}
