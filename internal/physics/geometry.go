// Package physics provides the collision-test primitives used by the
// simulation's phase-5 collision resolution (spec §4.1).
package physics

import "math"

// DistanceSquared returns the squared Euclidean distance between two
// points. Prefer this over Distance when only comparing against a radius,
// to avoid the sqrt cost in the collision hot path.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// PointInCircle reports whether (px,py) lies within radius of (cx,cy).
// Used for bullet-vs-asteroid and bullet-vs-player hit tests (spec §4.1
// phase 5a/5b), where the bullet is treated as a point.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// CirclesOverlap reports whether two circles intersect. Used for
// player-vs-asteroid and bullet-vs-bullet tests (spec §4.1 phase 5c,
// SPEC_FULL's added bullet neutralization), where both bodies have a hit radius.
func CirclesOverlap(x1, y1, r1, x2, y2, r2 float64) bool {
	minDist := r1 + r2
	return DistanceSquared(x1, y1, x2, y2) < minDist*minDist
}
