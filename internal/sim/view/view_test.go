package view

import (
	"errors"
	"testing"

	"gridscout.ai/internal/sim/geom"
)

func TestNew_RejectsBadWindows(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		want error
	}{
		{"empty", nil, ErrEmpty},
		{"even", []string{"..", ".."}, ErrEvenSide},
		{"ragged", []string{"...", "..", "..."}, ErrNotSquare},
		{"wide", []string{"....."}, ErrNotSquare},
	}
	for _, tc := range cases {
		if _, err := New(tc.rows); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err=%v want %v", tc.name, err, tc.want)
		}
	}
}

func TestCells_OffsetsFromCenter(t *testing.T) {
	v := MustNew(
		"a..",
		".B.",
		"..#",
	)
	if v.Radius() != 1 {
		t.Fatalf("radius=%d want 1", v.Radius())
	}
	if v.Center() != 'B' {
		t.Fatalf("center=%q want 'B'", v.Center())
	}
	cells := v.Cells()
	if len(cells) != 9 {
		t.Fatalf("cells=%d want 9", len(cells))
	}
	if cells[0].Offset != (geom.Vec{X: -1, Y: -1}) || cells[0].Symbol != 'a' {
		t.Fatalf("first cell=%+v", cells[0])
	}
	if c, ok := v.At(geom.Vec{X: 1, Y: 1}); !ok || c != '#' {
		t.Fatalf("At(1,1)=%q ok=%v", c, ok)
	}
	if _, ok := v.At(geom.Vec{X: 2, Y: 0}); ok {
		t.Fatalf("At outside window must fail")
	}
}
