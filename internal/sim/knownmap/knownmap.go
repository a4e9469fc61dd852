package knownmap

import (
	"slices"

	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/view"
)

// Open is the traversable symbol. Uppercase symbols (players, transient
// objects) are folded to it before they are recorded.
const Open = '.'

// Map is the agent's memory of the absolute world. A Map value is never
// mutated after it has been returned from Merge; each turn produces a new one.
type Map struct {
	cells map[geom.Vec]byte
}

// Letter is a lowercase letter tile and its absolute position.
type Letter struct {
	Pos    geom.Vec
	Symbol byte
}

func New() Map { return Map{cells: map[geom.Vec]byte{}} }

// FromCells builds a map from raw cells (snapshots, fixtures). Symbols are
// folded the same way Merge folds them.
func FromCells(cells map[geom.Vec]byte) Map {
	m := make(map[geom.Vec]byte, len(cells))
	for p, c := range cells {
		m[p] = Fold(c)
	}
	return Map{cells: m}
}

// Fold normalizes a symbol read from a view.
func Fold(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return Open
	}
	return c
}

func IsLetter(c byte) bool { return c >= 'a' && c <= 'z' }

// IsObstacle reports whether c blocks movement. Anything but open ground and
// letter tiles is a permanent obstacle.
func IsObstacle(c byte) bool { return c != Open && !IsLetter(c) }

// Merge returns a copy of m enriched with every cell of v, rotated into
// absolute coordinates around pose. It is the only way cells enter a map.
func (m Map) Merge(v view.View, pose geom.Pose) Map {
	out := make(map[geom.Vec]byte, len(m.cells)+v.Side()*v.Side())
	for p, c := range m.cells {
		out[p] = c
	}
	for _, cell := range v.Cells() {
		abs := geom.AlignToNorth(cell.Offset, pose.Heading).Add(pose.Pos)
		sym := Fold(cell.Symbol)
		if prev, ok := out[abs]; ok && prev != Open {
			// terrain is static; the first non-open symbol sticks
			continue
		}
		out[abs] = sym
	}
	return Map{cells: out}
}

func (m Map) Len() int { return len(m.cells) }

func (m Map) Get(p geom.Vec) (byte, bool) {
	c, ok := m.cells[p]
	return c, ok
}

func (m Map) Known(p geom.Vec) bool {
	_, ok := m.cells[p]
	return ok
}

// Blocked reports whether p is a known obstacle. Unknown cells are not blocked.
func (m Map) Blocked(p geom.Vec) bool {
	c, ok := m.cells[p]
	return ok && IsObstacle(c)
}

// Obstacles returns the set of known obstacle positions.
func (m Map) Obstacles() map[geom.Vec]struct{} {
	out := make(map[geom.Vec]struct{})
	for p, c := range m.cells {
		if IsObstacle(c) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Letters returns every known letter tile sorted by position (x, then y).
func (m Map) Letters() []Letter {
	var out []Letter
	for p, c := range m.cells {
		if IsLetter(c) {
			out = append(out, Letter{Pos: p, Symbol: c})
		}
	}
	slices.SortFunc(out, func(a, b Letter) int { return geom.CompareVec(a.Pos, b.Pos) })
	return out
}

// Frontier returns the unknown 4-neighbors of known cells, sorted.
func (m Map) Frontier() []geom.Vec {
	seen := make(map[geom.Vec]struct{})
	var out []geom.Vec
	for p := range m.cells {
		for _, n := range p.Neighbors() {
			if m.Known(n) {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	slices.SortFunc(out, geom.CompareVec)
	return out
}

// Unknown filters ps down to the positions not yet in the map.
func (m Map) Unknown(ps []geom.Vec) []geom.Vec {
	var out []geom.Vec
	for _, p := range ps {
		if !m.Known(p) {
			out = append(out, p)
		}
	}
	return out
}

// Bounds returns the inclusive bounding box of the known cells.
func (m Map) Bounds() (lo, hi geom.Vec, ok bool) {
	for p := range m.cells {
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return lo, hi, ok
}

// Each calls fn for every known cell in unspecified order.
func (m Map) Each(fn func(p geom.Vec, c byte)) {
	for p, c := range m.cells {
		fn(p, c)
	}
}
