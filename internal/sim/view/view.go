package view

import (
	"errors"
	"fmt"
	"strings"

	"gridscout.ai/internal/sim/geom"
)

var (
	ErrEmpty     = errors.New("empty view")
	ErrNotSquare = errors.New("view is not square")
	ErrEvenSide  = errors.New("view side length is even")
)

// View is one turn's heading-aligned terrain snapshot. The agent sits at
// the center and always faces up (row 0).
type View struct {
	rows []string
}

// Cell is a symbol together with its offset from the center.
type Cell struct {
	Offset geom.Vec
	Symbol byte
}

// New validates a frame. Windows that are empty, ragged or of even side
// are rejected before they can reach the known map.
func New(rows []string) (View, error) {
	if len(rows) == 0 {
		return View{}, ErrEmpty
	}
	side := len(rows)
	for i, r := range rows {
		if len(r) != side {
			return View{}, fmt.Errorf("%w: row %d has %d symbols, want %d", ErrNotSquare, i, len(r), side)
		}
	}
	if side%2 == 0 {
		return View{}, fmt.Errorf("%w: %d", ErrEvenSide, side)
	}
	cp := make([]string, side)
	copy(cp, rows)
	return View{rows: cp}, nil
}

// MustNew is New for fixtures.
func MustNew(rows ...string) View {
	v, err := New(rows)
	if err != nil {
		panic(err)
	}
	return v
}

func (v View) Side() int { return len(v.rows) }

// Radius is the view radius derived from the side length.
func (v View) Radius() int { return len(v.rows) / 2 }

func (v View) IsZero() bool { return len(v.rows) == 0 }

// At returns the symbol at a heading-relative offset. ok is false outside
// the window.
func (v View) At(off geom.Vec) (byte, bool) {
	r := v.Radius()
	x, y := off.X+r, off.Y+r
	if x < 0 || y < 0 || x >= v.Side() || y >= v.Side() {
		return 0, false
	}
	return v.rows[y][x], true
}

// Center is the agent's own symbol.
func (v View) Center() byte {
	c, _ := v.At(geom.Vec{})
	return c
}

// Cells enumerates every symbol with its offset, row by row.
func (v View) Cells() []Cell {
	r := v.Radius()
	out := make([]Cell, 0, v.Side()*v.Side())
	for y, row := range v.rows {
		for x := 0; x < len(row); x++ {
			out = append(out, Cell{Offset: geom.Vec{X: x - r, Y: y - r}, Symbol: row[x]})
		}
	}
	return out
}

func (v View) Rows() []string {
	cp := make([]string, len(v.rows))
	copy(cp, v.rows)
	return cp
}

func (v View) String() string { return strings.Join(v.rows, "/") }
