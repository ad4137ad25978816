package tiles

import (
	"errors"
	"math"
	"testing"
)

func TestPosition_Degree1(t *testing.T) {
	want := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for i, w := range want {
		x, y := Position(1, i)
		if x != w[0] || y != w[1] {
			t.Errorf("Position(1, %d) = (%d, %d), want (%d, %d)", i, x, y, w[0], w[1])
		}
	}
}

func TestPosition_CoarseToFine(t *testing.T) {
	// The first four tiles of a 8x8 grid land in the four quadrants.
	want := [][2]int{{0, 0}, {0, 4}, {4, 0}, {4, 4}}
	for i, w := range want {
		x, y := Position(3, i)
		if x != w[0] || y != w[1] {
			t.Errorf("Position(3, %d) = (%d, %d), want (%d, %d)", i, x, y, w[0], w[1])
		}
	}
}

func TestTileRect_CoversUnitSquare(t *testing.T) {
	for degree := 0; degree <= 4; degree++ {
		n := 1 << degree
		seen := make(map[[2]int]int)
		area := 0.0

		for i := 0; i < NumParts(degree); i++ {
			r := TileRect(degree, i)
			if r.Left < 0 || r.Bottom < 0 || r.Right > 1 || r.Top > 1 {
				t.Fatalf("degree %d tile %d out of frame: %+v", degree, i, r)
			}
			cell := [2]int{int(math.Round(r.Left * float64(n))), int(math.Round(r.Bottom * float64(n)))}
			if prev, ok := seen[cell]; ok {
				t.Fatalf("degree %d: tiles %d and %d share cell %v", degree, prev, i, cell)
			}
			seen[cell] = i
			area += r.area()
		}

		if len(seen) != NumParts(degree) {
			t.Errorf("degree %d: %d distinct cells, want %d", degree, len(seen), NumParts(degree))
		}
		if math.Abs(area-1) > 1e-12 {
			t.Errorf("degree %d: total area %v, want 1", degree, area)
		}
	}
}

func TestTileRect_FirstTile(t *testing.T) {
	r := TileRect(3, 0)
	want := Rect{Left: 0, Right: 0.125, Bottom: 0, Top: 0.125}
	if r != want {
		t.Errorf("TileRect(3, 0) = %+v, want %+v", r, want)
	}
	if NumParts(3) != 64 {
		t.Errorf("NumParts(3) = %d, want 64", NumParts(3))
	}
}

func TestRect_GL(t *testing.T) {
	if got := Full.GL(); got != (Rect{-1, 1, -1, 1}) {
		t.Errorf("Full.GL() = %+v", got)
	}
	got := Rect{Left: 0.25, Right: 0.5, Bottom: 0.75, Top: 1}.GL()
	want := Rect{Left: -0.5, Right: 0, Bottom: 0.5, Top: 1}
	if got != want {
		t.Errorf("GL() = %+v, want %+v", got, want)
	}
}

func TestNewScheduler_InvalidDegree(t *testing.T) {
	draw := func(int, Rect) {}
	for _, d := range []int{-1, MaxDegree + 1} {
		if _, err := NewScheduler(d, &Queue{}, draw); !errors.Is(err, ErrInvalidDegree) {
			t.Errorf("degree %d: err = %v, want ErrInvalidDegree", d, err)
		}
	}
	if _, err := NewScheduler(3, nil, draw); err == nil {
		t.Error("nil poster accepted")
	}
	if _, err := NewScheduler(3, &Queue{}, nil); err == nil {
		t.Error("nil draw accepted")
	}
}
