package worldtest

import (
	"context"
	"io"

	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/knownmap"
)

// Grid is an in-process stand-in for the game server: a static map, one
// player, heading-aligned frames and one command per frame. Cells outside
// the map read as walls.
type Grid struct {
	rows   []string
	radius int

	Pose      geom.Pose
	Submitted []byte
	Turns     int

	// MaxTurns ends the game after that many commands (0 = unlimited).
	MaxTurns int
	// StopAfterSubmits ends the game once that many letters were submitted.
	StopAfterSubmits int
}

func NewGrid(rows []string, start geom.Pose, radius int) *Grid {
	return &Grid{rows: rows, radius: radius, Pose: start}
}

// At returns the terrain at an absolute grid position.
func (g *Grid) At(p geom.Vec) byte {
	if p.Y < 0 || p.Y >= len(g.rows) || p.X < 0 || p.X >= len(g.rows[p.Y]) {
		return '#'
	}
	return g.rows[p.Y][p.X]
}

// Render builds the frame the player sees: rotated so that it faces up,
// with its own symbol at the center.
func (g *Grid) Render() []string {
	side := 2*g.radius + 1
	out := make([]string, side)
	for y := 0; y < side; y++ {
		row := make([]byte, side)
		for x := 0; x < side; x++ {
			rel := geom.Vec{X: x - g.radius, Y: y - g.radius}
			if rel == (geom.Vec{}) {
				row[x] = 'A'
				continue
			}
			row[x] = g.At(g.Pose.Pos.Add(geom.AlignToNorth(rel, g.Pose.Heading)))
		}
		out[y] = string(row)
	}
	return out
}

// Apply executes one command. Movement bytes win over letters, so 'v' is
// always a backward step. Moves into walls are swallowed.
func (g *Grid) Apply(c protocol.Command) {
	g.Turns++
	a, ok := c.Action()
	if !ok {
		if c.IsSubmit() {
			g.Submitted = append(g.Submitted, byte(c))
		}
		return
	}
	next := g.Pose.Apply(a)
	if knownmap.IsObstacle(g.At(next.Pos)) {
		return
	}
	g.Pose = next
}

func (g *Grid) done() bool {
	if g.MaxTurns > 0 && g.Turns >= g.MaxTurns {
		return true
	}
	return g.StopAfterSubmits > 0 && len(g.Submitted) >= g.StopAfterSubmits
}

func (g *Grid) ReadFrame(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.done() {
		return nil, io.EOF
	}
	return g.Render(), nil
}

func (g *Grid) WriteCommand(c protocol.Command) error {
	g.Apply(c)
	return nil
}
