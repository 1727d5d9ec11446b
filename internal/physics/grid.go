package physics

import "math"

// Grid is a uniform spatial hash over a wrapping (toroidal) arena, used for
// broad-phase culling in the simulation's asteroid-asteroid bounce step so
// it doesn't need an O(n^2) scan of every asteroid pair (asteroid counts
// reach 100 per wave). The bullet and player collision checks do not use it.
//
// Cell size must be >= the largest interaction radius sum between any two
// colliding bodies so every true collision falls within the 3x3
// neighbourhood query.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       []gridCell
}

type gridCell struct {
	items []int
}

// NewGrid builds a grid covering a worldW x worldH arena with the given
// cell size.
func NewGrid(worldW, worldH, cellSize float64) *Grid {
	cols := int(math.Ceil(worldW / cellSize))
	rows := int(math.Ceil(worldH / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([]gridCell, cols*rows),
	}
}

// Reset clears all items without releasing the backing slices, so a single
// Grid can be reused every tick without per-tick allocation.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
}

// Insert records that the item identified by index sits at world position
// (x, y).
func (g *Grid) Insert(x, y float64, index int) {
	col, row := g.cellOf(x, y)
	idx := row*g.cols + col
	g.cells[idx].items = append(g.cells[idx].items, index)
}

// Query invokes fn for every item index in the 3x3 cell neighbourhood
// around (x, y), wrapping at the arena edges. Iteration stops early if fn
// returns true.
func (g *Grid) Query(x, y float64, fn func(index int) bool) {
	col, row := g.cellOf(x, y)
	for dr := -1; dr <= 1; dr++ {
		r := wrapIndex(row+dr, g.rows)
		rowOffset := r * g.cols
		for dc := -1; dc <= 1; dc++ {
			c := wrapIndex(col+dc, g.cols)
			for _, item := range g.cells[rowOffset+c].items {
				if fn(item) {
					return
				}
			}
		}
	}
}

func (g *Grid) cellOf(x, y float64) (col, row int) {
	col = clampInt(int(x*g.invCellSize), g.cols)
	row = clampInt(int(y*g.invCellSize), g.rows)
	return col, row
}

func clampInt(v, max int) int {
	if v < 0 {
		return 0
	}
	if v >= max {
		return max - 1
	}
	return v
}

func wrapIndex(v, max int) int {
	if v < 0 {
		return v + max
	}
	if v >= max {
		return v - max
	}
	return v
}
