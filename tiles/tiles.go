// Package tiles splits a frame into a 2^d × 2^d grid and draws it one tile at
// a time on a cooperative loop, so input handling never waits for a full frame.
package tiles

import "fmt"

// MaxDegree caps the grid at 256×256 tiles.
const MaxDegree = 8

var ErrInvalidDegree = fmt.Errorf("subdivision degree must be between 0 and %d", MaxDegree)

// Rect is an axis-aligned rectangle in normalized [0, 1] frame coordinates,
// with Bottom < Top.
type Rect struct {
	Left, Right float64
	Bottom, Top float64
}

// GL maps r into [-1, 1] clip coordinates.
func (r Rect) GL() Rect {
	return Rect{
		Left:   r.Left*2 - 1,
		Right:  r.Right*2 - 1,
		Bottom: r.Bottom*2 - 1,
		Top:    r.Top*2 - 1,
	}
}

func (r Rect) area() float64 {
	return (r.Right - r.Left) * (r.Top - r.Bottom)
}

// Full is the whole frame.
var Full = Rect{Left: 0, Right: 1, Bottom: 0, Top: 1}

// NumParts is the number of tiles for degree, 4^degree.
func NumParts(degree int) int {
	return 1 << (2 * degree)
}

// Position returns the grid cell of tile i.
//
// i is read as 2·degree bits, most significant first. Bits at even positions
// form x and bits at odd positions form y, each reassembled in reverse so the
// most significant bit of i becomes the least significant bit of the cell
// coordinate. Consecutive indices therefore jump across the whole frame
// first and fill in the gaps later.
func Position(degree, i int) (x, y int) {
	bits := 2 * degree
	for k := 0; k < bits; k++ {
		bit := (i >> (bits - 1 - k)) & 1
		if k%2 == 0 {
			x |= bit << (k / 2)
		} else {
			y |= bit << (k / 2)
		}
	}
	return x, y
}

// TileRect returns the normalized rectangle covered by tile i.
func TileRect(degree, i int) Rect {
	n := float64(int(1) << degree)
	x, y := Position(degree, i)
	return Rect{
		Left:   float64(x) / n,
		Right:  float64(x+1) / n,
		Bottom: float64(y) / n,
		Top:    float64(y+1) / n,
	}
}

func checkDegree(degree int) error {
	if degree < 0 || degree > MaxDegree {
		return fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
	}
	return nil
}
