package agent

import (
	"errors"
	"testing"

	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/view"
)

func TestReckon(t *testing.T) {
	sc := StateContext{Pose: geom.Pose{Heading: geom.North}}
	steps := []struct {
		cmd  protocol.Command
		want geom.Pose
	}{
		{protocol.CmdForward, geom.Pose{Pos: geom.Vec{Y: -1}, Heading: geom.North}},
		{protocol.CmdRight, geom.Pose{Pos: geom.Vec{Y: -1}, Heading: geom.East}},
		{protocol.CmdBackward, geom.Pose{Pos: geom.Vec{X: -1, Y: -1}, Heading: geom.East}},
		{protocol.CmdLeft, geom.Pose{Pos: geom.Vec{X: -1, Y: -1}, Heading: geom.North}},
		{protocol.Command('z'), geom.Pose{Pos: geom.Vec{X: -1, Y: -1}, Heading: geom.North}},
	}
	for i, s := range steps {
		sc = sc.Reckon(s.cmd)
		if sc.Pose != s.want {
			t.Fatalf("step %d (%q): pose=%v want %v", i, s.cmd, sc.Pose, s.want)
		}
	}
}

func TestObserve_GrowsMapAndCountsTurns(t *testing.T) {
	sc := StateContext{}
	prev := 0
	views := []view.View{
		view.MustNew("...", ".A.", "..."),
		view.MustNew("..#", ".A.", "..."),
		view.MustNew("#..", ".A.", "..."),
	}
	for i, v := range views {
		next, err := sc.Observe(v)
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		if next.Turn != i+1 {
			t.Fatalf("turn=%d want %d", next.Turn, i+1)
		}
		if next.Known.Len() < prev {
			t.Fatalf("known map shrank: %d -> %d", prev, next.Known.Len())
		}
		prev = next.Known.Len()
		sc = next.Reckon(protocol.CmdForward)
	}
	if sc.Known.Len() != 15 {
		t.Fatalf("known=%d want 15", sc.Known.Len())
	}
}

func TestTurn_RejectsBadFrameWithoutTouchingMap(t *testing.T) {
	a := New(DefaultConfig(), nil, nil)
	sc, err := StateContext{}.Observe(view.MustNew("...", ".A.", "..."))
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	_, _, got, err := a.Turn(sc, Initial(), []string{"....", "....", "....", "...."})
	if !errors.Is(err, view.ErrEvenSide) {
		t.Fatalf("err=%v want ErrEvenSide", err)
	}
	if got.Known.Len() != sc.Known.Len() || got.Turn != sc.Turn {
		t.Fatalf("rejected frame changed the context: %s", got)
	}
	if _, _, _, err := a.Turn(sc, Initial(), []string{".....", ".....", "..A..", ".....", "....."}); err == nil {
		t.Fatalf("side change must be rejected")
	}
}
