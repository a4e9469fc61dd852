package worldtest

import (
	"context"
	"math/rand"
	"testing"

	"gridscout.ai/internal/agent"
	"gridscout.ai/internal/sim/geom"
)

// Harness is a small black-box test helper: it plays an agent against a
// Grid through the exported Run loop and keeps every turn record.
type Harness struct {
	T     *testing.T
	Grid  *Grid
	Agent *agent.Agent
	Start geom.Pose

	Records []agent.TurnRecord
}

func NewHarness(t *testing.T, rows []string, start geom.Pose, radius int, seed int64) *Harness {
	t.Helper()
	return &Harness{
		T:     t,
		Grid:  NewGrid(rows, start, radius),
		Agent: agent.New(agent.DefaultConfig(), rand.New(rand.NewSource(seed)), nil),
		Start: start,
	}
}

func (h *Harness) RecordTurn(r agent.TurnRecord) error {
	h.Records = append(h.Records, r)
	return nil
}

// Run plays until the grid ends the game and fails the test on any error.
func (h *Harness) Run() agent.Summary {
	h.T.Helper()
	sum, err := h.Agent.Run(context.Background(), h.Grid, h)
	if err != nil {
		h.T.Fatalf("Run: %v (after %d turns)", err, h.Grid.Turns)
	}
	return sum
}

// Actual translates a position of the agent's own frame (origin at the
// start cell, assuming the agent started facing north) into grid
// coordinates.
func (h *Harness) Actual(p geom.Vec) geom.Vec { return p.Add(h.Start.Pos) }
