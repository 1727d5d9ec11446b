// Package ratelimit guards the simulation's input drain from a misbehaving
// or malicious client flooding its session with frames (spec §4.5, §7
// CapacityError; SPEC_FULL's per-session inbound flood guard). This is
// frame-rate policing only — it never inspects input semantics, so it is
// not anti-cheat, which spec §1 explicitly excludes.
package ratelimit

import (
	"golang.org/x/time/rate"

	"github.com/nova-ctrl/asteroids-arena/internal/config"
)

// Limiter caps the number of non-chat frames a single session may submit per
// second, grounded on the token-bucket limiter iamvalenciia-kick-game-stream
// wires per source IP for its HTTP surface; here it is wired per session
// instead, since the transport is a persistent connection rather than
// discrete HTTP requests.
type Limiter struct {
	tokens *rate.Limiter
}

// NewLimiter builds a limiter using the configured flood-guard rate and burst.
func NewLimiter() *Limiter {
	return &Limiter{
		tokens: rate.NewLimiter(rate.Limit(config.InboundFloodPerSecond), config.InboundFloodBurst),
	}
}

// Allow reports whether one more inbound frame may be accepted right now.
func (l *Limiter) Allow() bool {
	return l.tokens.Allow()
}
