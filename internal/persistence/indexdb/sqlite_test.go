package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gridscout.ai/internal/agent"
	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
)

func TestSQLiteIndex_SessionAndTurns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := idx.StartSession("s1", start)
	moves := []agent.TurnRecord{
		{Turn: 1, Pose: geom.Pose{Heading: geom.North}, Command: protocol.CmdForward, State: agent.Initial()},
		{Turn: 2, Pose: geom.Pose{Pos: geom.Vec{Y: -1}, Heading: geom.North}, Command: protocol.CmdRight, State: agent.Initial()},
		{Turn: 3, Pose: geom.Pose{Pos: geom.Vec{Y: -1}, Heading: geom.East}, Command: protocol.Command('c'), State: agent.EnterWord("cat")},
	}
	for _, m := range moves {
		if err := rec.RecordTurn(m); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}
	sum := agent.Summary{
		Context: agent.StateContext{Turn: 3},
		State:   agent.State{Mode: agent.ModeEnterWord, Word: "cat", Cursor: 1},
	}
	idx.EndSession("s1", start.Add(time.Minute), sum, "ended")
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	sessions, err := idx.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	want := []SessionRow{{
		ID:        "s1",
		StartedAt: "2026-01-02T03:04:05Z",
		EndedAt:   "2026-01-02T03:05:05Z",
		Turns:     3,
		Word:      "cat",
		Outcome:   "ended",
	}}
	if diff := cmp.Diff(want, sessions); diff != "" {
		t.Fatalf("sessions (-want +got):\n%s", diff)
	}

	turns, err := idx.Turns(ctx, "s1")
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns=%d want 3", len(turns))
	}
	if got := turns[1]; got.Y != -1 || got.Command != ">" || got.Heading != "NORTH" {
		t.Fatalf("turn 2 = %+v", got)
	}
	if got := turns[2]; got.Command != "c" || got.Heading != "EAST" {
		t.Fatalf("turn 3 = %+v", got)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	rec := s.StartSession("s1", time.Now())

	_ = rec.RecordTurn(agent.TurnRecord{Turn: 1})
	s.EndSession("s1", time.Now(), agent.Summary{}, "ended")

	st := s.Stats()
	if st.DropTurnTotal != 1 {
		t.Fatalf("DropTurnTotal=%d want=1", st.DropTurnTotal)
	}
	if st.DropSessionTotal != 1 {
		t.Fatalf("DropSessionTotal=%d want=1", st.DropSessionTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_RollbackIsCounted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := idx.db.Exec(`CREATE TRIGGER fail_turn_3 BEFORE INSERT ON turns
		WHEN NEW.turn = 3 BEGIN SELECT RAISE(ABORT, 'disk says no'); END;`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	rec := idx.StartSession("s1", time.Now())
	for turn := 1; turn <= 4; turn++ {
		_ = rec.RecordTurn(agent.TurnRecord{Turn: turn, Command: protocol.CmdForward, State: agent.Initial()})
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st := idx.Stats()
	if st.RollbackTotal != 1 {
		t.Fatalf("RollbackTotal=%d want=1", st.RollbackTotal)
	}
	if st.RollbackLostTotal < 1 {
		t.Fatalf("RollbackLostTotal=%d want >= 1", st.RollbackLostTotal)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()
	turns, err := idx.Turns(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(turns) == 0 || turns[len(turns)-1].Turn != 4 {
		t.Fatalf("turns=%+v, want turn 4 kept after the failed batch", turns)
	}
	for _, tr := range turns {
		if tr.Turn == 3 {
			t.Fatalf("turn 3 should have failed")
		}
	}
}
