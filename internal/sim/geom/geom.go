package geom

import "fmt"

// Vec is a displacement (or absolute position) in grid units.
// y grows southwards, matching the row order of a frame.
type Vec struct {
	X int
	Y int
}

func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec) Neg() Vec      { return Vec{X: -v.X, Y: -v.Y} }

// Less orders vectors by x, then y.
func (v Vec) Less(o Vec) bool {
	if v.X != o.X {
		return v.X < o.X
	}
	return v.Y < o.Y
}

// Norm is the Manhattan norm |x|+|y|.
func (v Vec) Norm() int { return AbsInt(v.X) + AbsInt(v.Y) }

// Manhattan returns the Manhattan distance between two positions.
func Manhattan(a, b Vec) int { return a.Sub(b).Norm() }

// Neighbors returns the 4-neighbors of v in a fixed order (N, E, S, W).
func (v Vec) Neighbors() []Vec {
	return []Vec{
		v.Add(North.Vec()),
		v.Add(East.Vec()),
		v.Add(South.Vec()),
		v.Add(West.Vec()),
	}
}

func (v Vec) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// CompareVec is a three-way comparison for slices.SortFunc.
func CompareVec(a, b Vec) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}
