// Package search finds short command sequences that bring a target cell into
// view. Both searches run over poses (position + heading) where each of the
// four actions costs one turn.
package search

import (
	"errors"

	"gridscout.ai/internal/sim/geom"
)

var (
	ErrCostCeiling = errors.New("search cost ceiling exceeded")
	ErrUnreachable = errors.New("no reachable pose sees a target")
	ErrNoTargets   = errors.New("no targets")
)

const (
	DefaultReachMaxCost    = 20
	DefaultFrontierMaxCost = 100
)

// Obstacles reports static positions the agent cannot enter.
type Obstacles interface {
	Blocked(p geom.Vec) bool
}

// NoObstacles is an empty obstacle set.
type NoObstacles struct{}

func (NoObstacles) Blocked(geom.Vec) bool { return false }

// ObstacleSet is a fixed set of blocked positions.
type ObstacleSet map[geom.Vec]struct{}

func (s ObstacleSet) Blocked(p geom.Vec) bool {
	_, ok := s[p]
	return ok
}

// Path is the outcome of a successful search.
type Path struct {
	// Goal is the pose from which Target is seen.
	Goal    geom.Pose
	Target  geom.Vec
	Actions []geom.Action
}

func (p Path) Cost() int { return len(p.Actions) }

// Sees reports whether a pose at pos has target within view radius.
func Sees(pos, target geom.Vec, radius int) bool {
	return geom.Manhattan(pos, target) <= radius
}

// reconstruct walks predecessors back from goal and reads the connecting
// action off each adjacent pair.
func reconstruct(prev map[geom.Pose]geom.Pose, start, goal geom.Pose) []geom.Action {
	var poses []geom.Pose
	for p := goal; p != start; p = prev[p] {
		poses = append(poses, p)
	}
	poses = append(poses, start)

	actions := make([]geom.Action, 0, len(poses)-1)
	for i := len(poses) - 1; i > 0; i-- {
		a, ok := geom.ActionBetween(poses[i], poses[i-1])
		if !ok {
			panic("search: predecessor chain is not connected")
		}
		actions = append(actions, a)
	}
	return actions
}

// diamond lists every offset with Manhattan norm <= r.
func diamond(r int) []geom.Vec {
	var out []geom.Vec
	for dx := -r; dx <= r; dx++ {
		rest := r - geom.AbsInt(dx)
		for dy := -rest; dy <= rest; dy++ {
			out = append(out, geom.Vec{X: dx, Y: dy})
		}
	}
	return out
}
