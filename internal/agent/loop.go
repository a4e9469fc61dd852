package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/view"
)

// Conn is the turn transport: one frame in, one command out.
type Conn interface {
	// ReadFrame blocks for the next frame. io.EOF means the game is over.
	ReadFrame(ctx context.Context) ([]string, error)
	WriteCommand(c protocol.Command) error
}

// TurnRecord describes one completed turn. Pose is the pose the command was
// chosen from.
type TurnRecord struct {
	Turn    int
	Pose    geom.Pose
	Command protocol.Command
	State   State
	Known   int
	Letters int
}

// Recorder receives every turn after its command was sent.
type Recorder interface {
	RecordTurn(r TurnRecord) error
}

// Recorders fans one turn out to several recorders. Every recorder sees the
// turn even if an earlier one failed.
type Recorders []Recorder

func (rs Recorders) RecordTurn(r TurnRecord) error {
	var errs []error
	for _, rec := range rs {
		if rec == nil {
			continue
		}
		if err := rec.RecordTurn(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Summary is what a finished session leaves behind.
type Summary struct {
	Context StateContext
	State   State
}

func (s Summary) Turns() int { return s.Context.Turn }

// Run plays turns until the server stops sending frames (a nil error) or
// something fails. Recorder may be nil.
func (a *Agent) Run(ctx context.Context, conn Conn, rec Recorder) (Summary, error) {
	sc := StateContext{}
	st := Initial()
	for {
		if err := ctx.Err(); err != nil {
			return Summary{Context: sc, State: st}, err
		}
		rows, err := conn.ReadFrame(ctx)
		if errors.Is(err, io.EOF) {
			a.log.Printf("turn %d: game ended", sc.Turn+1)
			return Summary{Context: sc, State: st}, nil
		}
		if err != nil {
			return Summary{Context: sc, State: st}, fmt.Errorf("read frame: %w", err)
		}

		cmd, next, nsc, err := a.Turn(sc, st, rows)
		if err != nil {
			return Summary{Context: sc, State: st}, err
		}
		if err := conn.WriteCommand(cmd); err != nil {
			return Summary{Context: nsc, State: st}, fmt.Errorf("write command: %w", err)
		}
		if rec != nil {
			r := TurnRecord{
				Turn:    nsc.Turn,
				Pose:    nsc.Pose,
				Command: cmd,
				State:   next,
				Known:   nsc.Known.Len(),
				Letters: len(nsc.Known.Letters()),
			}
			if err := rec.RecordTurn(r); err != nil {
				a.log.Printf("record turn %d: %v", nsc.Turn, err)
			}
		}

		// The pose estimate moves only once the command is final.
		sc, st = nsc.Reckon(cmd), next

		if a.cfg.TurnDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.cfg.TurnDelay):
			}
		}
	}
}

// Turn processes one frame without any I/O. It returns the command, the next
// state and the context the command was decided in (before dead reckoning).
func (a *Agent) Turn(sc StateContext, st State, rows []string) (protocol.Command, State, StateContext, error) {
	v, err := view.New(rows)
	if err != nil {
		return 0, st, sc, fmt.Errorf("turn %d: %w", sc.Turn+1, err)
	}
	if sc.Turn == 0 {
		a.log.Printf("I am %c (view %dx%d)", v.Center(), v.Side(), v.Side())
	}
	nsc, err := sc.Observe(v)
	if err != nil {
		return 0, st, sc, fmt.Errorf("turn %d: %w", sc.Turn+1, err)
	}
	cmd, next, err := a.Advance(nsc, st)
	if err != nil {
		return 0, st, nsc, fmt.Errorf("turn %d: state %s: %w", nsc.Turn, st, err)
	}
	return cmd, next, nsc, nil
}
