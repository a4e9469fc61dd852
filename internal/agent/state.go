package agent

import (
	"errors"
	"fmt"

	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/geom"
)

// ErrNoCommand means a control state failed to produce a command. It is a
// logic defect; the loop aborts instead of sending garbage.
var ErrNoCommand = errors.New("state produced no command")

type Mode uint8

const (
	ModeExplore Mode = iota
	ModeEnterWord
)

func (m Mode) String() string {
	switch m {
	case ModeExplore:
		return "explore"
	case ModeEnterWord:
		return "enter_word"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// State is the control state. Mode selects which fields are meaningful:
//
//	ModeExplore:   Target/HasTarget hold the cell the last search aimed at.
//	ModeEnterWord: Word and Cursor track how much of the word was sent.
//
// Target is informational only (traces, index rows). Explore replans from the
// known map every turn, because each frame can reveal obstacles on the old
// route or a closer frontier cell.
type State struct {
	Mode Mode

	Target    geom.Vec
	HasTarget bool

	Word   string
	Cursor int
}

// Initial is the state a session starts in.
func Initial() State { return State{Mode: ModeExplore} }

func Exploring(target geom.Vec) State {
	return State{Mode: ModeExplore, Target: target, HasTarget: true}
}

func EnterWord(word string) State { return State{Mode: ModeEnterWord, Word: word} }

func (s State) String() string {
	switch s.Mode {
	case ModeExplore:
		if s.HasTarget {
			return fmt.Sprintf("Explore(target=%v)", s.Target)
		}
		return "Explore"
	case ModeEnterWord:
		return fmt.Sprintf("EnterWord(%q, %d)", s.Word, s.Cursor)
	}
	return s.Mode.String()
}

// Advance decides the command for this turn and the state for the next one.
func (a *Agent) Advance(ctx StateContext, s State) (protocol.Command, State, error) {
	switch s.Mode {
	case ModeExplore:
		return a.explore(ctx)
	case ModeEnterWord:
		return enterWord(s)
	}
	return 0, s, fmt.Errorf("%w: unknown mode %s", ErrNoCommand, s.Mode)
}

// enterWord sends one letter per turn. Once the word is exhausted it starts
// over with the reversed word, since the reading direction is unknown.
// It never leaves this mode.
func enterWord(s State) (protocol.Command, State, error) {
	if s.Word == "" {
		return 0, s, fmt.Errorf("%w: empty word", ErrNoCommand)
	}
	if s.Cursor >= len(s.Word) {
		s = EnterWord(reverse(s.Word))
	}
	cmd, err := protocol.Submit(s.Word[s.Cursor])
	if err != nil {
		return 0, s, fmt.Errorf("%w: %v", ErrNoCommand, err)
	}
	s.Cursor++
	return cmd, s, nil
}

func reverse(w string) string {
	b := []byte(w)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
