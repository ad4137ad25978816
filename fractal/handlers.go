package fractal

import (
	"fmt"
	"math"

	"github.com/stewi1014/fractal4d/input"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/programs"
	"github.com/stewi1014/fractal4d/view"
)

// Wheel zooms, or with Shift held rotates the screen plane.
func (p *Panel) Wheel(e input.WheelEvent) {
	if e.Ticks() == 0 {
		return
	}

	err := p.apply(func(v *view.View) error {
		if e.Shift {
			v.Rotate(view.AxisX, view.AxisY, e.RotationAngle())
			return nil
		}
		return v.Zoom(e.ZoomFactor())
	})
	if err != nil {
		logger.Logger().Debug("wheel ignored", "err", err)
	}
}

// PointerDown records a press at pos. buttons is the set held after the press.
func (p *Panel) PointerDown(pos input.Point, buttons input.Buttons, shift bool) {
	p.last = pos
	p.click.Press(buttons, shift)
}

// PointerMove applies a drag. buttons is the set currently held.
//
// Primary drags pan the screen plane, or with Shift rotate the screen plane
// into the hidden plane. Secondary and middle drags pan along the hidden
// plane, moving the Julia parameter directly in the default orientation.
func (p *Panel) PointerMove(pos input.Point, buttons input.Buttons, shift bool) {
	d := pos.Sub(p.last)
	p.last = pos
	p.click.Move()

	if d == (input.Point{}) {
		return
	}

	var change func(v *view.View) error
	switch {
	case buttons == input.ButtonPrimary && shift:
		change = func(v *view.View) error {
			v.Rotate(view.AxisX, view.AxisZ, d.X*math.Pi/2)
			v.Rotate(view.AxisY, view.AxisW, d.Y*math.Pi/2)
			return nil
		}
	case buttons == input.ButtonPrimary:
		change = func(v *view.View) error {
			return move(v, view.AxisX, view.AxisY, -d.X*v.Scale, -d.Y*v.Scale)
		}
	case buttons == input.ButtonMiddle, buttons == input.ButtonSecondary:
		change = func(v *view.View) error {
			return move(v, view.AxisZ, view.AxisW, -d.X*v.Scale, -d.Y*v.Scale)
		}
	default:
		return
	}

	if err := p.apply(change); err != nil {
		logger.Logger().Debug("drag ignored", "err", err)
	}
}

func move(v *view.View, a1, a2 view.Axis, d1, d2 float64) error {
	if err := v.Move(a1, d1); err != nil {
		return err
	}
	return v.Move(a2, d2)
}

// PointerUp finishes a press. A release that completes a click recentres the
// view on pos.
func (p *Panel) PointerUp(pos input.Point, shift bool) {
	if !p.click.Release(shift) {
		return
	}
	err := p.apply(func(v *view.View) error {
		return move(v, view.AxisX, view.AxisY, pos.X*v.Scale, pos.Y*v.Scale)
	})
	if err != nil {
		logger.Logger().Debug("click ignored", "err", err)
	}
}

// PointerLeave is called when the pointer leaves the surface.
func (p *Panel) PointerLeave() {
	p.click.Leave()
}

// SetIterations recompiles the program for the iteration limit in text.
// Invalid text or a failed compile leave the panel as it was.
func (p *Panel) SetIterations(text string) error {
	n, err := input.ParseIterations(text)
	if err != nil {
		logger.Logger().Debug("iterations ignored", "err", err)
		return err
	}
	if err := p.loadProgram(p.program, n); err != nil {
		return err
	}
	p.maxIterations = n
	p.update()
	return nil
}

// SetProgram switches to the registered program with index i.
func (p *Panel) SetProgram(i int) error {
	if err := p.loadProgram(i, p.maxIterations); err != nil {
		return err
	}
	p.program = i
	p.update()
	return nil
}

func (p *Panel) loadProgram(index, maxIterations int) error {
	program, err := programs.GetProgram(index)
	if err != nil {
		return err
	}
	if err := p.backend.LoadProgram(program, maxIterations); err != nil {
		logger.Logger().Warn("keeping previous program", "program", program.Name, "iterations", maxIterations, "err", err)
		return fmt.Errorf("loading program %q: %w", program.Name, err)
	}
	logger.Logger().Info("program loaded", "program", program.Name, "iterations", maxIterations)
	return nil
}

// SetCoordinates replaces the view with the one serialized in text. Invalid
// text leaves the view untouched.
func (p *Panel) SetCoordinates(text string) error {
	v, err := view.Parse(text)
	if err != nil {
		logger.Logger().Debug("coordinates ignored", "err", err)
		return err
	}
	p.view = v
	p.update()
	return nil
}

// SetColorStretching reads the color stretching field, given in percent.
func (p *Panel) SetColorStretching(text string) error {
	v, err := input.ParseColorStretching(text)
	if err != nil {
		logger.Logger().Debug("color stretching ignored", "err", err)
		return err
	}
	p.colorStretching = v
	p.update()
	return nil
}
