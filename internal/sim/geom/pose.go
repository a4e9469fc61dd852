package geom

import "fmt"

// Action is one of the four unit-cost movements of the agent.
type Action uint8

const (
	RotateLeft Action = iota
	RotateRight
	Forward
	Backward
)

// Actions lists every movement in a fixed order.
var Actions = [...]Action{RotateLeft, RotateRight, Forward, Backward}

func (a Action) String() string {
	switch a {
	case RotateLeft:
		return "LEFT"
	case RotateRight:
		return "RIGHT"
	case Forward:
		return "FORWARD"
	case Backward:
		return "BACKWARD"
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// Pose is a search-graph vertex.
type Pose struct {
	Pos     Vec
	Heading Dir
}

func (p Pose) String() string { return fmt.Sprintf("%v %s", p.Pos, p.Heading) }

// Apply returns the pose reached by performing a.
func (p Pose) Apply(a Action) Pose {
	switch a {
	case RotateLeft:
		return Pose{Pos: p.Pos, Heading: p.Heading.Left()}
	case RotateRight:
		return Pose{Pos: p.Pos, Heading: p.Heading.Right()}
	case Forward:
		return Pose{Pos: p.Pos.Add(p.Heading.Vec()), Heading: p.Heading}
	case Backward:
		return Pose{Pos: p.Pos.Sub(p.Heading.Vec()), Heading: p.Heading}
	}
	return p
}

// ActionBetween reads the action connecting two adjacent poses.
// ok is false when no single action leads from p to q.
func ActionBetween(p, q Pose) (Action, bool) {
	if p.Pos == q.Pos {
		switch q.Heading {
		case p.Heading.Left():
			return RotateLeft, true
		case p.Heading.Right():
			return RotateRight, true
		}
		return 0, false
	}
	if p.Heading != q.Heading {
		return 0, false
	}
	switch q.Pos.Sub(p.Pos) {
	case p.Heading.Vec():
		return Forward, true
	case p.Heading.Vec().Neg():
		return Backward, true
	}
	return 0, false
}
