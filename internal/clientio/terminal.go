// Package clientio provides the terminal rendering and raw-mode input glue
// for the reference client. Spec §1 explicitly treats terminal rendering and
// keyboard decoding as out-of-scope external collaborators to the
// authoritative server; this package exists only so the repository ships a
// working consumer of the wire protocol (spec §6), grounded on the teacher's
// internal/draw (ANSI helpers) and internal/input (raw key stream) packages.
package clientio

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/nova-ctrl/asteroids-arena/internal/protocol"
)

// EnableRawMode puts stdin into raw mode and returns a restore function,
// the same MakeRaw/Restore pairing the teacher's cmd/game/main.go uses.
func EnableRawMode() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("clientio: enable raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, old) }, nil
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) { fmt.Fprint(w, "\033[H\033[2J") }

// HideCursor / ShowCursor toggle cursor visibility during rendering.
func HideCursor(w io.Writer) { fmt.Fprint(w, "\033[?25l") }
func ShowCursor(w io.Writer) { fmt.Fprint(w, "\033[?25h") }

// moveCursor positions the cursor at 1-based (col, row).
func moveCursor(w io.Writer, col, row int) { fmt.Fprintf(w, "\033[%d;%dH", row, col) }

// Grid is a reusable text-cell framebuffer matching the arena's dimensions,
// so each render is one full rune grid written in a single pass rather than
// many small cursor-addressed writes.
type Grid struct {
	w, h  int
	cells [][]rune
}

// NewGrid allocates a grid of the given arena dimensions.
func NewGrid(w, h int) *Grid {
	g := &Grid{w: w, h: h, cells: make([][]rune, h)}
	for y := range g.cells {
		g.cells[y] = make([]rune, w)
	}
	return g
}

func (g *Grid) clear() {
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			g.cells[y][x] = ' '
		}
	}
}

func (g *Grid) set(x, y float64, r rune) {
	cx, cy := int(x), int(y)
	if cx < 0 || cy < 0 || cx >= g.w || cy >= g.h {
		return
	}
	g.cells[cy][cx] = r
}

// asteroidGlyph renders size-dependent asteroid markers.
func asteroidGlyph(size string) rune {
	switch size {
	case "large":
		return 'O'
	case "medium":
		return 'o'
	default:
		return '.'
	}
}

// shipGlyph marks the local player distinctly from other ships, and
// blinking ones with a lighter glyph (spec §4.4's "blinking" render hint).
func shipGlyph(isSelf, blinking bool) rune {
	switch {
	case isSelf && blinking:
		return '+'
	case isSelf:
		return '@'
	case blinking:
		return ';'
	default:
		return 'A'
	}
}

// Render draws one State snapshot into the grid and flushes it to w as a
// single buffered write (spec §1: "Clients render the latest snapshot in a
// text-cell grid").
func Render(w io.Writer, g *Grid, st *protocol.State, selfID uint64) {
	out := w
	var buf bytes.Buffer
	w = &buf
	g.clear()

	for _, a := range st.Asteroids {
		g.set(a.X, a.Y, asteroidGlyph(a.Size))
	}
	for _, b := range st.Bullets {
		g.set(b.X, b.Y, '*')
	}
	for _, p := range st.PowerUps {
		g.set(p.X, p.Y, '$')
	}
	for _, pl := range st.Players {
		if !pl.Alive {
			continue
		}
		g.set(pl.X, pl.Y, shipGlyph(pl.ID == selfID, pl.Blinking))
	}

	ClearScreen(w)
	for y := 0; y < g.h; y++ {
		moveCursor(w, 1, y+1)
		fmt.Fprint(w, string(g.cells[y]))
	}

	moveCursor(w, 1, g.h+2)
	fmt.Fprintf(w, "wave %d  asteroids %d  tick %d", st.Wave, st.AsteroidsRemaining, st.Tick)
	if me := findSelf(st, selfID); me != nil {
		fmt.Fprintf(w, "  score %d  combo x%d  streak %d", me.Score, me.Combo, me.KillStreak)
	}
	moveCursor(w, 1, g.h+3)
	fmt.Fprint(w, "leaderboard: ")
	for i, entry := range st.Leaderboard {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s=%d", entry.Name, entry.Score)
	}
	_, _ = out.Write(buf.Bytes())
}

func findSelf(st *protocol.State, id uint64) *protocol.PlayerView {
	for i := range st.Players {
		if st.Players[i].ID == id {
			return &st.Players[i]
		}
	}
	return nil
}
