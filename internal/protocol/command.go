package protocol

import (
	"fmt"

	"gridscout.ai/internal/sim/geom"
)

// Command is the single byte sent back to the game server each turn.
type Command byte

// Movement commands.
const (
	CmdForward  Command = '^'
	CmdBackward Command = 'v'
	CmdLeft     Command = '<'
	CmdRight    Command = '>'
)

// CommandFor maps a search action onto its wire byte.
func CommandFor(a geom.Action) Command {
	switch a {
	case geom.RotateLeft:
		return CmdLeft
	case geom.RotateRight:
		return CmdRight
	case geom.Forward:
		return CmdForward
	default:
		return CmdBackward
	}
}

// Submit wraps a lowercase letter as a submit command. The wire cannot tell
// Submit('v') from CmdBackward: the server moves the player back and the
// pose estimate follows it (see Action).
func Submit(letter byte) (Command, error) {
	if letter < 'a' || letter > 'z' {
		return 0, fmt.Errorf("submit %q: not a lowercase letter", letter)
	}
	return Command(letter), nil
}

// Action returns the movement carried by c. ok is false for submit commands.
func (c Command) Action() (geom.Action, bool) {
	switch c {
	case CmdLeft:
		return geom.RotateLeft, true
	case CmdRight:
		return geom.RotateRight, true
	case CmdForward:
		return geom.Forward, true
	case CmdBackward:
		return geom.Backward, true
	}
	return 0, false
}

// IsSubmit reports whether c carries a letter. CmdBackward shares its byte
// with 'v' and counts as a move.
func (c Command) IsSubmit() bool { return c >= 'a' && c <= 'z' && c != CmdBackward }

func (c Command) String() string { return string(rune(c)) }
