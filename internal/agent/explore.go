package agent

import (
	"slices"

	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/search"
	"gridscout.ai/internal/sim/word"
)

func (a *Agent) explore(ctx StateContext) (protocol.Command, State, error) {
	d := word.Detect(ctx.Known)
	switch d.Kind {
	case word.Complete:
		a.log.Printf("turn %d: word complete %q (step=%v)", ctx.Turn, d.Word, d.Step)
		return a.Advance(ctx, EnterWord(d.Word))
	case word.Extend:
		if targets := ctx.Known.Unknown(d.Targets); len(targets) > 0 {
			p, err := search.Frontier(ctx.Pose, ctx.Known, targets, ctx.Radius(), a.cfg.FrontierMaxCost)
			if err == nil && p.Cost() > 0 {
				return protocol.CommandFor(p.Actions[0]), Exploring(p.Target), nil
			}
			a.log.Printf("warn: turn %d: word targets %v: %v", ctx.Turn, targets, errOrEmpty(err))
		}
	}
	return a.exploreFrontier(ctx)
}

// exploreFrontier heads for the nearest unknown cell bordering the known map.
// Breadth-first search is tried first; beyond its reach the A* search runs
// over the closest frontier cells. If both fail a random legal action is
// returned, so a command is always produced.
func (a *Agent) exploreFrontier(ctx StateContext) (protocol.Command, State, error) {
	frontier := ctx.Known.Frontier()
	if len(frontier) == 0 {
		return a.randomAction(ctx), Initial(), nil
	}

	p, err := search.Explore(ctx.Pose, ctx.Known, ctx.Radius(), a.cfg.ReachMaxCost).Nearest(frontier)
	if err == nil && p.Cost() > 0 {
		return protocol.CommandFor(p.Actions[0]), Exploring(p.Target), nil
	}

	origin := ctx.Pose.Pos
	slices.SortStableFunc(frontier, func(x, y geom.Vec) int {
		return geom.Manhattan(origin, x) - geom.Manhattan(origin, y)
	})
	if len(frontier) > a.cfg.FrontierMaxTargets {
		frontier = frontier[:a.cfg.FrontierMaxTargets]
	}
	p, err = search.Frontier(ctx.Pose, ctx.Known, frontier, ctx.Radius(), a.cfg.FrontierMaxCost)
	if err == nil && p.Cost() > 0 {
		return protocol.CommandFor(p.Actions[0]), Exploring(p.Target), nil
	}
	a.log.Printf("warn: turn %d: frontier search over %d cells: %v; moving randomly", ctx.Turn, len(frontier), errOrEmpty(err))
	return a.randomAction(ctx), Initial(), nil
}

// randomAction picks uniformly among actions that do not walk into a known
// obstacle. Rotations are always legal.
func (a *Agent) randomAction(ctx StateContext) protocol.Command {
	legal := make([]geom.Action, 0, len(geom.Actions))
	for _, act := range geom.Actions {
		if !ctx.Known.Blocked(ctx.Pose.Apply(act).Pos) {
			legal = append(legal, act)
		}
	}
	return protocol.CommandFor(legal[a.rng.Intn(len(legal))])
}

func errOrEmpty(err error) any {
	if err == nil {
		return "empty path"
	}
	return err
}
