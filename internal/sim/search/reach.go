package search

import (
	"gridscout.ai/internal/sim/geom"
)

// Reach is a breadth-first expansion of the pose graph. Poses are expanded
// cost layer by cost layer, so the first visit to any pose is along a
// minimum-cost path.
type Reach struct {
	start  geom.Pose
	radius int

	cost  map[geom.Pose]int
	prev  map[geom.Pose]geom.Pose
	order []geom.Pose

	// truncated is set when poses were left unexpanded at the ceiling.
	truncated bool
}

// Explore runs the expansion from start up to maxCost layers. maxCost <= 0
// selects DefaultReachMaxCost.
func Explore(start geom.Pose, obstacles Obstacles, radius, maxCost int) *Reach {
	if maxCost <= 0 {
		maxCost = DefaultReachMaxCost
	}
	if obstacles == nil {
		obstacles = NoObstacles{}
	}
	r := &Reach{
		start:  start,
		radius: radius,
		cost:   make(map[geom.Pose]int, 1024),
		prev:   make(map[geom.Pose]geom.Pose, 1024),
		order:  make([]geom.Pose, 0, 1024),
	}
	r.cost[start] = 0
	r.order = append(r.order, start)

	for head := 0; head < len(r.order); head++ {
		p := r.order[head]
		c := r.cost[p]
		if c >= maxCost {
			r.truncated = true
			continue
		}
		for _, a := range geom.Actions {
			n := p.Apply(a)
			if _, seen := r.cost[n]; seen {
				continue
			}
			if obstacles.Blocked(n.Pos) {
				continue
			}
			r.cost[n] = c + 1
			r.prev[n] = p
			r.order = append(r.order, n)
		}
	}
	return r
}

// Visited is the number of poses reached.
func (r *Reach) Visited() int { return len(r.order) }

// Cost returns the minimum cost of reaching p, if it was visited.
func (r *Reach) Cost(p geom.Pose) (int, bool) {
	c, ok := r.cost[p]
	return c, ok
}

// Query returns the cheapest visited pose that sees target, with the
// commands leading there.
func (r *Reach) Query(target geom.Vec) (Path, error) {
	for _, p := range r.order {
		if Sees(p.Pos, target, r.radius) {
			return Path{Goal: p, Target: target, Actions: reconstruct(r.prev, r.start, p)}, nil
		}
	}
	return Path{}, r.failure()
}

// Nearest is Query over several targets. Among targets seen at the same
// minimal cost, the one closest to the start position wins, then the lowest
// by (x, y).
func (r *Reach) Nearest(targets []geom.Vec) (Path, error) {
	if len(targets) == 0 {
		return Path{}, ErrNoTargets
	}
	set := make(map[geom.Vec]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	offsets := diamond(r.radius)

	found := false
	var best Path
	bestCost, bestDist := 0, 0
	for _, p := range r.order {
		c := r.cost[p]
		if found && c > bestCost {
			break
		}
		for _, off := range offsets {
			t := p.Pos.Add(off)
			if _, ok := set[t]; !ok {
				continue
			}
			d := geom.Manhattan(r.start.Pos, t)
			if found && (d > bestDist || (d == bestDist && !t.Less(best.Target))) {
				continue
			}
			found = true
			bestCost, bestDist = c, d
			best = Path{Goal: p, Target: t}
		}
	}
	if !found {
		return Path{}, r.failure()
	}
	best.Actions = reconstruct(r.prev, r.start, best.Goal)
	return best, nil
}

func (r *Reach) failure() error {
	if r.truncated {
		return ErrCostCeiling
	}
	return ErrUnreachable
}
