// Package fractal ties a view, a tile scheduler and a drawing backend into a
// single interactive panel.
package fractal

import (
	"errors"
	"fmt"
	"math"

	"github.com/stewi1014/fractal4d/input"
	"github.com/stewi1014/fractal4d/programs"
	"github.com/stewi1014/fractal4d/tiles"
	"github.com/stewi1014/fractal4d/view"
)

const (
	DefaultDegree        = 3
	DefaultMaxIterations = 100
)

// Tile is everything a backend needs to draw one tile.
type Tile struct {
	Index int
	// Rect is the tile in normalized [0, 1] frame coordinates.
	Rect tiles.Rect
	// Corners holds the view location at the tile corners in triangle strip
	// order: left-bottom, right-bottom, left-top, right-top.
	Corners         [4]view.Vec
	ColorStretching float32
}

// Backend draws tiles. All calls happen on the panel's thread.
type Backend interface {
	// LoadProgram compiles program with the iteration limit baked in. On
	// failure the previously loaded program must stay in use.
	LoadProgram(program programs.Program, maxIterations int) error
	DrawTile(t Tile)
}

type Options struct {
	Degree          int
	MaxIterations   int
	Program         int
	ColorStretching float32
	View            view.View
	// OnCoordinates receives the serialized view after every change.
	OnCoordinates func(text string)
}

// DefaultOptions starts on the Mandelbrot set with an 8x8 tile grid.
func DefaultOptions() Options {
	return Options{
		Degree:        DefaultDegree,
		MaxIterations: DefaultMaxIterations,
		View:          view.Default(),
	}
}

// Panel is one interactive fractal view. It is not safe for concurrent use;
// every method must be called from the thread the Poster runs functions on.
type Panel struct {
	backend   Backend
	scheduler *tiles.Scheduler

	view            view.View
	program         int
	maxIterations   int
	colorStretching float32
	onCoordinates   func(string)

	last  input.Point
	click input.Click
}

// NewPanel loads the initial program and queues the first full render.
// Failing to load the program is fatal for the panel.
func NewPanel(backend Backend, poster tiles.Poster, opts Options) (*Panel, error) {
	if backend == nil {
		return nil, errors.New("fractal: nil backend")
	}
	if opts.MaxIterations < 1 {
		return nil, fmt.Errorf("%w: %d", input.ErrInvalidIterations, opts.MaxIterations)
	}
	if err := opts.View.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(float64(opts.ColorStretching)) || math.IsInf(float64(opts.ColorStretching), 0) {
		return nil, input.ErrInvalidColorStretching
	}

	p := &Panel{
		backend:         backend,
		view:            opts.View,
		program:         opts.Program,
		maxIterations:   opts.MaxIterations,
		colorStretching: opts.ColorStretching,
		onCoordinates:   opts.OnCoordinates,
	}

	var err error
	p.scheduler, err = tiles.NewScheduler(opts.Degree, poster, p.drawTile)
	if err != nil {
		return nil, err
	}

	program, err := programs.GetProgram(p.program)
	if err != nil {
		return nil, err
	}
	if err := backend.LoadProgram(program, p.maxIterations); err != nil {
		return nil, fmt.Errorf("loading program %q: %w", program.Name, err)
	}

	p.update()
	return p, nil
}

func (p *Panel) View() view.View { return p.view }

func (p *Panel) Scheduler() *tiles.Scheduler { return p.scheduler }

func (p *Panel) MaxIterations() int { return p.maxIterations }

func (p *Panel) ColorStretching() float32 { return p.colorStretching }

func (p *Panel) Program() int { return p.program }

// Coordinates is the serialized view.
func (p *Panel) Coordinates() string { return p.view.Serialize() }

// Redraw re-renders every tile without changing anything, for example after
// the surface was resized.
func (p *Panel) Redraw() {
	p.scheduler.RequestFullRender()
}

// apply runs change on a copy of the view and keeps the result only if it is
// still a valid view.
func (p *Panel) apply(change func(v *view.View) error) error {
	next := p.view
	if err := change(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	p.view = next
	p.update()
	return nil
}

func (p *Panel) update() {
	if p.onCoordinates != nil {
		p.onCoordinates(p.view.Serialize())
	}
	p.scheduler.RequestFullRender()
}

// drawTile derives the tile geometry from the view as it is now, so changes
// made during a sweep show up in the tiles not yet drawn.
func (p *Panel) drawTile(index int, r tiles.Rect) {
	gl := r.GL()
	p.backend.DrawTile(Tile{
		Index: index,
		Rect:  r,
		Corners: [4]view.Vec{
			p.view.At(gl.Left, gl.Bottom),
			p.view.At(gl.Right, gl.Bottom),
			p.view.At(gl.Left, gl.Top),
			p.view.At(gl.Right, gl.Top),
		},
		ColorStretching: p.colorStretching,
	})
}
