package worldtest

import (
	"testing"

	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
)

func TestGrid_BackwardMovesInsteadOfSubmitting(t *testing.T) {
	g := NewGrid([]string{
		".....",
		".....",
		".....",
	}, geom.Pose{Pos: geom.Vec{X: 2, Y: 1}, Heading: geom.North}, 1)

	g.Apply(protocol.CmdBackward)
	if want := (geom.Vec{X: 2, Y: 2}); g.Pose.Pos != want {
		t.Fatalf("pos=%v want %v", g.Pose.Pos, want)
	}
	if len(g.Submitted) != 0 {
		t.Fatalf("submitted %q after a backward move", g.Submitted)
	}

	g.Apply(protocol.Command('c'))
	if string(g.Submitted) != "c" || g.Pose.Pos != (geom.Vec{X: 2, Y: 2}) {
		t.Fatalf("submitted=%q pos=%v", g.Submitted, g.Pose.Pos)
	}
}

func TestGrid_WallsSwallowMoves(t *testing.T) {
	g := NewGrid([]string{
		".#.",
		"...",
	}, geom.Pose{Pos: geom.Vec{X: 1, Y: 1}, Heading: geom.North}, 1)
	g.Apply(protocol.CmdForward)
	if g.Pose.Pos != (geom.Vec{X: 1, Y: 1}) {
		t.Fatalf("walked into wall: %v", g.Pose.Pos)
	}
	// Off-map reads as wall.
	g.Apply(protocol.CmdBackward)
	if g.Pose.Pos != (geom.Vec{X: 1, Y: 1}) {
		t.Fatalf("walked off map: %v", g.Pose.Pos)
	}
	if g.Turns != 2 {
		t.Fatalf("turns=%d want 2", g.Turns)
	}
}
