// Package word locates the hidden word in the known map.
//
// Letters are assumed to lie on one straight line with uniform spacing.
// A letter found after wrapping around a toroidal world would break the
// sort-by-position assumption; that case is not handled.
package word

import (
	"fmt"

	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/knownmap"
)

type Kind int

const (
	// NoLetters means no letter has been seen yet.
	NoLetters Kind = iota
	// Extend asks for the cells in Targets to be explored.
	Extend
	// Complete means Word holds the whole recovered string.
	Complete
)

func (k Kind) String() string {
	switch k {
	case NoLetters:
		return "none"
	case Extend:
		return "extend"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Decision struct {
	Kind    Kind
	Word    string
	Targets []geom.Vec
	// Step is the per-letter displacement, zero until two letters are known.
	Step geom.Vec
}

// Detect inspects the known letters. It is a pure function of m.
func Detect(m knownmap.Map) Decision {
	letters := m.Letters()
	switch len(letters) {
	case 0:
		return Decision{Kind: NoLetters}
	case 1:
		// Orientation unknown: look around the single letter.
		return Decision{Kind: Extend, Word: string(letters[0].Symbol), Targets: letters[0].Pos.Neighbors()}
	}

	step := letters[1].Pos.Sub(letters[0].Pos)
	leading := letters[0].Pos.Sub(step)
	trailing := letters[len(letters)-1].Pos.Add(step)

	buf := make([]byte, len(letters))
	for i, l := range letters {
		buf[i] = l.Symbol
	}
	d := Decision{Word: string(buf), Step: step}
	for _, end := range []geom.Vec{leading, trailing} {
		if !m.Known(end) {
			d.Targets = append(d.Targets, end)
		}
	}
	if len(d.Targets) == 0 {
		d.Kind = Complete
	} else {
		d.Kind = Extend
	}
	return d
}
