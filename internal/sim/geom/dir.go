package geom

import "fmt"

// Dir is one of the four headings. The numeric value is the number of
// clockwise quarter turns from north.
type Dir uint8

const (
	North Dir = iota
	East
	South
	West
)

var dirNames = [...]string{"NORTH", "EAST", "SOUTH", "WEST"}

func (d Dir) String() string {
	if int(d) < len(dirNames) {
		return dirNames[d]
	}
	return fmt.Sprintf("Dir(%d)", uint8(d))
}

// ParseDir is the inverse of Dir.String.
func ParseDir(s string) (Dir, error) {
	for i, n := range dirNames {
		if n == s {
			return Dir(i), nil
		}
	}
	return North, fmt.Errorf("unknown heading %q", s)
}

// Left rotates counter-clockwise: NORTH→WEST→SOUTH→EAST→NORTH.
func (d Dir) Left() Dir { return (d + 3) % 4 }

// Right rotates clockwise and is the inverse of Left.
func (d Dir) Right() Dir { return (d + 1) % 4 }

// Vec is the unit vector of the heading.
func (d Dir) Vec() Vec {
	switch d % 4 {
	case North:
		return Vec{X: 0, Y: -1}
	case East:
		return Vec{X: 1, Y: 0}
	case South:
		return Vec{X: 0, Y: 1}
	default:
		return Vec{X: -1, Y: 0}
	}
}

// Horizontal reports whether the heading lies on the x axis.
func (d Dir) Horizontal() bool { return d == East || d == West }

// AlignToNorth rotates a heading-relative vector (forward = (0,-1)) into
// absolute, north-relative coordinates.
func AlignToNorth(v Vec, heading Dir) Vec {
	for i := Dir(0); i < heading%4; i++ {
		v = Vec{X: -v.Y, Y: v.X}
	}
	return v
}

// AlignFromNorth is the inverse of AlignToNorth.
func AlignFromNorth(v Vec, heading Dir) Vec {
	for i := Dir(0); i < heading%4; i++ {
		v = Vec{X: v.Y, Y: -v.X}
	}
	return v
}
