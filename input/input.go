// Package input normalizes pointer, wheel and text-field input before it is
// applied to a view.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidIterations      = errors.New("iteration count must be a positive integer")
	ErrInvalidColorStretching = errors.New("color stretching must be a number")
)

// wheelDeltaScale brings wheelDelta-style magnitudes (120 per notch) into the
// range of detail-style ticks (3 per notch), with the opposite sign.
const wheelDeltaScale = -0.025

// WheelEvent carries a scroll in one of two reporting conventions. Detail
// counts ticks, positive when scrolling down. WheelDelta is a signed
// magnitude, positive when scrolling up. Detail wins when both are set.
type WheelEvent struct {
	Detail     float64
	WheelDelta float64
	Shift      bool
}

// Ticks returns the scroll amount in detail-style ticks.
func (e WheelEvent) Ticks() float64 {
	if e.Detail != 0 {
		return e.Detail
	}
	return wheelDeltaScale * e.WheelDelta
}

// ZoomFactor is the multiplicative scale change for the event; scrolling
// down zooms out.
func (e WheelEvent) ZoomFactor() float64 {
	return math.Exp(0.1 * e.Ticks())
}

// RotationAngle is the screen-plane rotation for the event, a full turn per
// 120 ticks.
func (e WheelEvent) RotationAngle() float64 {
	return 2 * math.Pi / 120 * e.Ticks()
}

// Point is a pointer position in normalized surface coordinates: x grows to
// the right and y grows upwards, both spanning [-1, 1] across the surface.
type Point struct {
	X, Y float64
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Normalize converts a pixel position, origin at the top-left, into a Point.
func Normalize(px, py, width, height float64) Point {
	if width <= 0 || height <= 0 {
		return Point{}
	}
	return Point{
		X: px/width*2 - 1,
		Y: 1 - py/height*2,
	}
}

// Buttons is the set of pressed pointer buttons.
type Buttons uint8

const (
	ButtonPrimary Buttons = 1 << iota
	ButtonSecondary
	ButtonMiddle
)

func (b Buttons) String() string {
	if b == 0 {
		return "none"
	}
	var names []string
	for _, n := range []struct {
		b    Buttons
		name string
	}{
		{ButtonPrimary, "primary"},
		{ButtonSecondary, "secondary"},
		{ButtonMiddle, "middle"},
	} {
		if b&n.b != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseIterations accepts a positive integer, surrounding space allowed.
func ParseIterations(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIterations, text)
	}
	return n, nil
}

// ParseColorStretching reads the color stretching field, given in percent.
func ParseColorStretching(text string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColorStretching, text)
	}
	return float32(v * 0.01), nil
}
