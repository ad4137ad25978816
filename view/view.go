// Package view models the affine frame that maps the rendered rectangle into
// the 4D plane+parameter space of the Mandelbrot/Julia family.
package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidZoom        = errors.New("zoom factor must be finite and positive")
	ErrOutOfRange         = errors.New("view position out of range")
)

// Axis names one of the four basis vectors of a View.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisW
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	case AxisW:
		return "w"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// View is a position and orientation in the 4D space plus a zoom.
// X and Y span the screen, Z and W span the hidden pair of directions that
// rotations bring into view. The visible rectangle is Center ± Scale·X ± Scale·Y.
type View struct {
	Center Vec
	X      Vec
	Y      Vec
	Z      Vec
	W      Vec
	Scale  float64
}

// Default shows the Mandelbrot set: the screen spans the parameter plane and
// the plane coordinate starts at zero.
func Default() View {
	return View{
		Center: V(0, 0, 0, 0),
		X:      V(0, 0, 1, 0),
		Y:      V(0, 0, 0, 1),
		Z:      V(1, 0, 0, 0),
		W:      V(0, 1, 0, 0),
		Scale:  2,
	}
}

// Plane is the flat 2D frame with the screen spanning the plane coordinate.
func Plane() View {
	return View{
		X:     V(1, 0, 0, 0),
		Y:     V(0, 1, 0, 0),
		Z:     V(0, 0, 1, 0),
		W:     V(0, 0, 0, 1),
		Scale: 2,
	}
}

func (v *View) basis(a Axis) *Vec {
	switch a {
	case AxisX:
		return &v.X
	case AxisY:
		return &v.Y
	case AxisZ:
		return &v.Z
	case AxisW:
		return &v.W
	}
	panic(fmt.Sprintf("view: invalid axis %d", int(a)))
}

// Move shifts the center by distance along a. A move that would leave the
// center non-finite is refused and the view is unchanged.
func (v *View) Move(a Axis, distance float64) error {
	center := v.Center.Add(v.basis(a).Mul(distance))
	if !center.finite() {
		return fmt.Errorf("%w: moving %v by %v", ErrOutOfRange, a, distance)
	}
	v.Center = center
	return nil
}

// Zoom multiplies the scale by factor. Values above 1 zoom out.
func (v *View) Zoom(factor float64) error {
	scale := v.Scale * factor
	if !(factor > 0) || math.IsInf(factor, 0) || !(scale > 0) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, factor)
	}
	v.Scale = scale
	return nil
}

// Rotate turns the basis pair (a1, a2) by angle radians.
func (v *View) Rotate(a1, a2 Axis, angle float64) {
	if a1 == a2 {
		return
	}
	b1, b2 := v.basis(a1), v.basis(a2)
	*b1, *b2 = Rotate(*b1, *b2, angle)
}

// At maps normalized screen coordinates in [-1, 1] to a point in the space.
func (v View) At(u, w float64) Vec {
	return v.Center.Add(v.X.Mul(u * v.Scale)).Add(v.Y.Mul(w * v.Scale))
}

// Validate reports whether v can be rendered and serialized: every component
// finite and the scale positive.
func (v View) Validate() error {
	for _, b := range []Vec{v.Center, v.X, v.Y, v.Z, v.W} {
		if !b.finite() {
			return fmt.Errorf("%w: non-finite component in %v", ErrInvalidCoordinates, b)
		}
	}
	if !(v.Scale > 0) || math.IsInf(v.Scale, 0) {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidCoordinates, v.Scale)
	}
	return nil
}

type viewJSON struct {
	Center *Vec     `json:"center"`
	X      *Vec     `json:"x"`
	Y      *Vec     `json:"y"`
	Z      *Vec     `json:"z"`
	W      *Vec     `json:"w"`
	Scale  *float64 `json:"scale"`
}

func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewJSON{
		Center: &v.Center,
		X:      &v.X,
		Y:      &v.Y,
		Z:      &v.Z,
		W:      &v.W,
		Scale:  &v.Scale,
	})
}

// UnmarshalJSON accepts only a complete view. On error v is unchanged.
func (v *View) UnmarshalJSON(data []byte) error {
	var raw viewJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}

	for _, f := range []struct {
		name    string
		present bool
	}{
		{"center", raw.Center != nil},
		{"x", raw.X != nil},
		{"y", raw.Y != nil},
		{"z", raw.Z != nil},
		{"w", raw.W != nil},
		{"scale", raw.Scale != nil},
	} {
		if !f.present {
			return fmt.Errorf("%w: missing %q", ErrInvalidCoordinates, f.name)
		}
	}

	parsed := View{
		Center: *raw.Center,
		X:      *raw.X,
		Y:      *raw.Y,
		Z:      *raw.Z,
		W:      *raw.W,
		Scale:  *raw.Scale,
	}
	if err := parsed.Validate(); err != nil {
		return err
	}

	*v = parsed
	return nil
}

// Serialize returns the JSON text shown in the coordinates field.
func (v View) Serialize() string {
	b, err := json.Marshal(v)
	if err != nil {
		// only reachable with non-finite components, which Zoom, Move and Parse reject
		return ""
	}
	return string(b)
}

func (v View) String() string {
	return v.Serialize()
}

// Parse reads a view from its JSON text. Every failure wraps ErrInvalidCoordinates.
func Parse(text string) (View, error) {
	var v View
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		if !errors.Is(err, ErrInvalidCoordinates) {
			err = fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
		}
		return View{}, err
	}
	return v, nil
}
