package search

import (
	"container/heap"

	"gridscout.ai/internal/sim/geom"
)

type openNode struct {
	pose  geom.Pose
	g     int
	f     int
	seq   int
	index int
}

type openList []*openNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}
func (ol *openList) Push(x any) {
	n := x.(*openNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}
func (ol *openList) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// Heuristic estimates the remaining cost from pose to seeing target. It
// never overestimates: residual distances along each axis beyond the view
// radius, plus one turn when the heading is off the dominant axis.
func Heuristic(pose geom.Pose, target geom.Vec, radius int) int {
	v := target.Sub(pose.Pos)
	if v.Norm() <= radius {
		return 0
	}
	ax, ay := geom.AbsInt(v.X), geom.AbsInt(v.Y)
	h := max(0, ax-radius-1) + max(0, ay-radius-1)
	switch {
	case ax > ay && !pose.Heading.Horizontal():
		h++
	case ay > ax && pose.Heading.Horizontal():
		h++
	}
	return h
}

func minHeuristic(pose geom.Pose, targets []geom.Vec, radius int) int {
	best := -1
	for _, t := range targets {
		h := Heuristic(pose, t, radius)
		if best < 0 || h < best {
			best = h
			if h == 0 {
				break
			}
		}
	}
	return best
}

// Frontier runs an A* search from start towards the first pose that sees
// any of targets. The search aborts with ErrCostCeiling once the lowest
// estimated total cost exceeds maxCost (<= 0 selects DefaultFrontierMaxCost),
// and fails with ErrUnreachable when the open list drains.
//
// Unknown cells are treated as free; only obstacles block. Ties between equal
// priorities are broken by insertion order.
func Frontier(start geom.Pose, obstacles Obstacles, targets []geom.Vec, radius, maxCost int) (Path, error) {
	if len(targets) == 0 {
		return Path{}, ErrNoTargets
	}
	if maxCost <= 0 {
		maxCost = DefaultFrontierMaxCost
	}
	if obstacles == nil {
		obstacles = NoObstacles{}
	}

	best := map[geom.Pose]int{start: 0}
	prev := map[geom.Pose]geom.Pose{}
	seq := 0
	ol := &openList{{pose: start, g: 0, f: minHeuristic(start, targets, radius)}}
	heap.Init(ol)

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*openNode)
		if cur.g > best[cur.pose] {
			// stale entry, a cheaper route was pushed later
			continue
		}
		if cur.f > maxCost {
			return Path{}, ErrCostCeiling
		}
		for _, t := range targets {
			if Sees(cur.pose.Pos, t, radius) {
				return Path{Goal: cur.pose, Target: t, Actions: reconstruct(prev, start, cur.pose)}, nil
			}
		}
		for _, a := range geom.Actions {
			n := cur.pose.Apply(a)
			if obstacles.Blocked(n.Pos) {
				continue
			}
			ng := cur.g + 1
			if g, ok := best[n]; ok && g <= ng {
				continue
			}
			best[n] = ng
			prev[n] = cur.pose
			seq++
			heap.Push(ol, &openNode{pose: n, g: ng, f: ng + minHeuristic(n, targets, radius), seq: seq})
		}
	}
	return Path{}, ErrUnreachable
}
