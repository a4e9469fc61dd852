package agent

import (
	"fmt"

	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/knownmap"
	"gridscout.ai/internal/sim/view"
)

// StateContext is everything a control state may look at during one turn.
// It is a value: every turn produces a new one.
type StateContext struct {
	Turn  int
	View  view.View
	Known knownmap.Map
	// Pose is dead-reckoned; the server never reports absolute position.
	Pose geom.Pose
}

// Observe returns the context for the next turn after v was received.
func (c StateContext) Observe(v view.View) (StateContext, error) {
	if !c.View.IsZero() && v.Side() != c.View.Side() {
		return c, fmt.Errorf("view side changed from %d to %d", c.View.Side(), v.Side())
	}
	return StateContext{
		Turn:  c.Turn + 1,
		View:  v,
		Known: c.Known.Merge(v, c.Pose),
		Pose:  c.Pose,
	}, nil
}

// Reckon applies the turn's final command to the pose estimate. A submitted
// 'v' reads as a backward step on the wire and is reckoned as one.
func (c StateContext) Reckon(cmd protocol.Command) StateContext {
	if a, ok := cmd.Action(); ok {
		c.Pose = c.Pose.Apply(a)
	}
	return c
}

// Radius is the current view radius.
func (c StateContext) Radius() int { return c.View.Radius() }

func (c StateContext) String() string {
	return fmt.Sprintf("StateContext(turn=%d, view=%s, known=%d, pose=%s)", c.Turn, c.View, c.Known.Len(), c.Pose)
}
