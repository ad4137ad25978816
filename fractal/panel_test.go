package fractal

import (
	"errors"
	"math"
	"testing"

	"github.com/stewi1014/fractal4d/input"
	"github.com/stewi1014/fractal4d/programs"
	"github.com/stewi1014/fractal4d/tiles"
	"github.com/stewi1014/fractal4d/view"
)

var errCompile = errors.New("compile failed")

type fakeBackend struct {
	loads   []int
	failing bool
	tiles   []Tile
}

func (b *fakeBackend) LoadProgram(p programs.Program, maxIterations int) error {
	if _, _, err := p.Source(maxIterations); err != nil {
		return err
	}
	if b.failing {
		return errCompile
	}
	b.loads = append(b.loads, maxIterations)
	return nil
}

func (b *fakeBackend) DrawTile(t Tile) {
	b.tiles = append(b.tiles, t)
}

type harness struct {
	panel   *Panel
	backend *fakeBackend
	queue   *tiles.Queue
	coords  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{backend: &fakeBackend{}, queue: &tiles.Queue{}}
	opts := DefaultOptions()
	opts.OnCoordinates = func(text string) { h.coords = append(h.coords, text) }

	var err error
	h.panel, err = NewPanel(h.backend, h.queue, opts)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *harness) settle() {
	h.queue.Drain(-1)
	h.backend.tiles = nil
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNewPanel_InitialRender(t *testing.T) {
	h := newHarness(t)

	if len(h.backend.loads) != 1 || h.backend.loads[0] != DefaultMaxIterations {
		t.Errorf("loads = %v, want one load with %d iterations", h.backend.loads, DefaultMaxIterations)
	}
	if len(h.coords) != 1 || h.coords[0] != view.Default().Serialize() {
		t.Errorf("coordinates published = %q", h.coords)
	}
	if !h.panel.Scheduler().Running() {
		t.Fatal("no sweep queued")
	}

	h.queue.Drain(-1)
	if len(h.backend.tiles) != 64 {
		t.Errorf("drew %d tiles, want 64", len(h.backend.tiles))
	}
}

func TestNewPanel_Errors(t *testing.T) {
	q := &tiles.Queue{}

	if _, err := NewPanel(&fakeBackend{failing: true}, q, DefaultOptions()); !errors.Is(err, errCompile) {
		t.Errorf("failing compile err = %v", err)
	}

	opts := DefaultOptions()
	opts.MaxIterations = 0
	if _, err := NewPanel(&fakeBackend{}, q, opts); !errors.Is(err, input.ErrInvalidIterations) {
		t.Errorf("zero iterations err = %v", err)
	}

	opts = DefaultOptions()
	opts.Degree = -1
	if _, err := NewPanel(&fakeBackend{}, q, opts); !errors.Is(err, tiles.ErrInvalidDegree) {
		t.Errorf("bad degree err = %v", err)
	}

	opts = DefaultOptions()
	opts.View.Scale = 0
	if _, err := NewPanel(&fakeBackend{}, q, opts); !errors.Is(err, view.ErrInvalidCoordinates) {
		t.Errorf("bad view err = %v", err)
	}

	opts = DefaultOptions()
	opts.Program = 99
	if _, err := NewPanel(&fakeBackend{}, q, opts); !errors.Is(err, programs.ErrUnknownProgram) {
		t.Errorf("bad program err = %v", err)
	}

	if _, err := NewPanel(nil, q, DefaultOptions()); err == nil {
		t.Error("nil backend accepted")
	}
}

func TestPanel_TileCorners(t *testing.T) {
	h := newHarness(t)
	h.queue.Drain(-1)

	v := view.Default()
	for _, tile := range h.backend.tiles {
		gl := tile.Rect.GL()
		want := [4]view.Vec{
			v.At(gl.Left, gl.Bottom),
			v.At(gl.Right, gl.Bottom),
			v.At(gl.Left, gl.Top),
			v.At(gl.Right, gl.Top),
		}
		if tile.Corners != want {
			t.Fatalf("tile %d corners = %v, want %v", tile.Index, tile.Corners, want)
		}
	}

	// The tile in the top right corner of the 8x8 grid reaches the corner of
	// the view rectangle.
	for _, tile := range h.backend.tiles {
		if tile.Rect.Right == 1 && tile.Rect.Top == 1 {
			if got, want := tile.Corners[3], view.V(0, 0, 2, 2); !got.ApproxEqual(want, 1e-12) {
				t.Errorf("top right corner = %v, want %v", got, want)
			}
		}
	}
}

func TestPanel_ViewChangeMidSweep(t *testing.T) {
	h := newHarness(t)
	h.queue.Drain(10)

	h.panel.Wheel(input.WheelEvent{Detail: 3})
	scale := h.panel.View().Scale
	h.queue.Drain(-1)

	if len(h.backend.tiles) != 74 {
		t.Fatalf("drew %d tiles, want 10 + 64", len(h.backend.tiles))
	}
	for _, tile := range h.backend.tiles[10:] {
		gl := tile.Rect.GL()
		want := h.panel.View().At(gl.Left, gl.Bottom)
		if tile.Corners[0] != want {
			t.Fatalf("tile %d drawn with a stale view (scale %v)", tile.Index, scale)
		}
	}
}

func TestPanel_WheelZoom(t *testing.T) {
	h := newHarness(t)
	h.settle()

	h.panel.Wheel(input.WheelEvent{Detail: 3})
	h.panel.Wheel(input.WheelEvent{WheelDelta: 120})
	if got := h.panel.View().Scale; !approx(got, 2) {
		t.Errorf("scale after opposite notches = %v, want 2", got)
	}

	h.panel.Wheel(input.WheelEvent{Detail: -3})
	if got, want := h.panel.View().Scale, 2*math.Exp(-0.3); !approx(got, want) {
		t.Errorf("scale = %v, want %v", got, want)
	}
	if len(h.coords) != 4 {
		t.Errorf("published %d coordinates, want 4", len(h.coords))
	}
}

func TestPanel_WheelRotate(t *testing.T) {
	h := newHarness(t)

	h.panel.Wheel(input.WheelEvent{Detail: 30, Shift: true})
	v := h.panel.View()
	if v.Scale != 2 {
		t.Errorf("shift wheel zoomed: scale %v", v.Scale)
	}
	// a quarter turn maps x onto -y
	if !v.X.ApproxEqual(view.V(0, 0, 0, -1), 1e-12) {
		t.Errorf("x = %v after quarter turn", v.X)
	}
}

func TestPanel_Pan(t *testing.T) {
	h := newHarness(t)

	h.panel.PointerDown(input.Point{X: 0, Y: 0}, input.ButtonPrimary, false)
	h.panel.PointerMove(input.Point{X: 0.5, Y: -0.25}, input.ButtonPrimary, false)
	h.panel.PointerUp(input.Point{X: 0.5, Y: -0.25}, false)

	// dragging right by a quarter of the surface moves the center left by
	// half the scale
	want := view.V(0, 0, -1, 0.5)
	if got := h.panel.View().Center; !got.ApproxEqual(want, 1e-12) {
		t.Errorf("center = %v, want %v", got, want)
	}
}

func TestPanel_ParameterPan(t *testing.T) {
	for _, b := range []input.Buttons{input.ButtonMiddle, input.ButtonSecondary} {
		t.Run(b.String(), func(t *testing.T) {
			h := newHarness(t)
			h.panel.PointerDown(input.Point{}, b, false)
			h.panel.PointerMove(input.Point{X: 0.5, Y: 0.5}, b, false)

			want := view.V(-1, -1, 0, 0)
			if got := h.panel.View().Center; !got.ApproxEqual(want, 1e-12) {
				t.Errorf("center = %v, want %v", got, want)
			}
		})
	}
}

func TestPanel_ShiftDragRotatesIntoParameterPlane(t *testing.T) {
	h := newHarness(t)

	h.panel.PointerDown(input.Point{}, input.ButtonPrimary, true)
	h.panel.PointerMove(input.Point{X: 1, Y: 1}, input.ButtonPrimary, true)

	v := h.panel.View()
	if !v.X.ApproxEqual(view.V(-1, 0, 0, 0), 1e-12) || !v.Y.ApproxEqual(view.V(0, -1, 0, 0), 1e-12) {
		t.Errorf("x = %v, y = %v; want the screen to span the plane coordinate", v.X, v.Y)
	}
	if v.Center != view.Default().Center {
		t.Errorf("rotation moved the center to %v", v.Center)
	}
}

func TestPanel_ClickRecenters(t *testing.T) {
	h := newHarness(t)

	h.panel.PointerDown(input.Point{X: 0.5, Y: 0.5}, input.ButtonPrimary, false)
	h.panel.PointerUp(input.Point{X: 0.5, Y: 0.5}, false)

	want := view.V(0, 0, 1, 1)
	if got := h.panel.View().Center; !got.ApproxEqual(want, 1e-12) {
		t.Errorf("center = %v, want %v", got, want)
	}
}

func TestPanel_DragReleaseIsNotClick(t *testing.T) {
	h := newHarness(t)

	h.panel.PointerDown(input.Point{}, input.ButtonPrimary, false)
	h.panel.PointerMove(input.Point{X: 0.1}, input.ButtonPrimary, false)
	center := h.panel.View().Center
	h.panel.PointerUp(input.Point{X: 0.1}, false)

	if h.panel.View().Center != center {
		t.Error("release after drag recentred the view")
	}
}

func TestPanel_LeaveCancelsClick(t *testing.T) {
	h := newHarness(t)

	h.panel.PointerDown(input.Point{X: 0.5}, input.ButtonPrimary, false)
	h.panel.PointerLeave()
	h.panel.PointerUp(input.Point{X: 0.5}, false)

	if h.panel.View() != view.Default() {
		t.Error("release after leaving the surface changed the view")
	}
}

func TestPanel_MoveWithoutButtons(t *testing.T) {
	h := newHarness(t)
	h.settle()

	h.panel.PointerMove(input.Point{X: 0.3, Y: 0.3}, 0, false)
	if h.panel.View() != view.Default() || h.queue.Len() != 0 {
		t.Error("hover changed the view or queued a render")
	}
}

func TestPanel_SetIterations(t *testing.T) {
	h := newHarness(t)
	h.settle()

	if err := h.panel.SetIterations("250"); err != nil {
		t.Fatal(err)
	}
	if h.panel.MaxIterations() != 250 || h.backend.loads[len(h.backend.loads)-1] != 250 {
		t.Errorf("iterations = %d, loads = %v", h.panel.MaxIterations(), h.backend.loads)
	}
	if !h.panel.Scheduler().Running() {
		t.Error("no re-render after recompile")
	}

	loads := len(h.backend.loads)
	for _, text := range []string{"0", "-3", "abc", ""} {
		if err := h.panel.SetIterations(text); !errors.Is(err, input.ErrInvalidIterations) {
			t.Errorf("SetIterations(%q) err = %v", text, err)
		}
	}
	if len(h.backend.loads) != loads || h.panel.MaxIterations() != 250 {
		t.Error("invalid iterations reached the backend")
	}
}

func TestPanel_SetIterationsCompileFailureKeepsProgram(t *testing.T) {
	h := newHarness(t)
	h.settle()
	h.backend.failing = true

	if err := h.panel.SetIterations("500"); !errors.Is(err, errCompile) {
		t.Errorf("err = %v, want compile error", err)
	}
	if h.panel.MaxIterations() != DefaultMaxIterations {
		t.Errorf("iterations = %d after failed compile", h.panel.MaxIterations())
	}
	if h.panel.Scheduler().Running() {
		t.Error("failed compile queued a render")
	}
}

func TestPanel_SetCoordinates(t *testing.T) {
	h := newHarness(t)

	v := view.Plane()
	v.Move(view.AxisX, 0.25)
	if err := h.panel.SetCoordinates(v.Serialize()); err != nil {
		t.Fatal(err)
	}
	if h.panel.View() != v {
		t.Errorf("view = %+v, want %+v", h.panel.View(), v)
	}
	if h.coords[len(h.coords)-1] != v.Serialize() {
		t.Error("new coordinates not published")
	}

	published := len(h.coords)
	if err := h.panel.SetCoordinates(`{"scale":2}`); !errors.Is(err, view.ErrInvalidCoordinates) {
		t.Errorf("err = %v, want ErrInvalidCoordinates", err)
	}
	if h.panel.View() != v || len(h.coords) != published {
		t.Error("invalid coordinates changed the view")
	}
}

func TestPanel_SetColorStretching(t *testing.T) {
	h := newHarness(t)

	if err := h.panel.SetColorStretching("40"); err != nil {
		t.Fatal(err)
	}
	h.backend.tiles = nil
	h.queue.Drain(-1)
	for _, tile := range h.backend.tiles {
		if !approx(float64(tile.ColorStretching), 0.4) {
			t.Fatalf("tile %d color stretching = %v, want 0.4", tile.Index, tile.ColorStretching)
		}
	}

	if err := h.panel.SetColorStretching("lots"); !errors.Is(err, input.ErrInvalidColorStretching) {
		t.Errorf("err = %v", err)
	}
	if !approx(float64(h.panel.ColorStretching()), 0.4) {
		t.Error("invalid color stretching applied")
	}
}

func TestPanel_SetProgram(t *testing.T) {
	h := newHarness(t)

	if err := h.panel.SetProgram(1); err != nil {
		t.Fatal(err)
	}
	if h.panel.Program() != 1 {
		t.Errorf("program = %d, want 1", h.panel.Program())
	}
	if err := h.panel.SetProgram(-1); !errors.Is(err, programs.ErrUnknownProgram) {
		t.Errorf("err = %v, want ErrUnknownProgram", err)
	}
	if h.panel.Program() != 1 {
		t.Error("unknown program changed the selection")
	}
}

func TestPanel_DragOverflowKeepsView(t *testing.T) {
	h := newHarness(t)

	huge := view.Default()
	huge.Scale = 1e308
	huge.Center = view.V(0, 0, 1e308, 0)
	if err := h.panel.SetCoordinates(huge.Serialize()); err != nil {
		t.Fatal(err)
	}
	h.settle()
	published := len(h.coords)

	tests := []struct {
		name    string
		buttons input.Buttons
	}{
		{"pan", input.ButtonPrimary},
		{"parameter pan", input.ButtonMiddle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.panel.PointerDown(input.Point{X: 0.9}, tt.buttons, false)
			h.panel.PointerMove(input.Point{X: -0.9}, tt.buttons, false)
			h.panel.PointerUp(input.Point{X: -0.9}, false)

			if h.panel.View() != huge {
				t.Errorf("view = %+v, want it unchanged", h.panel.View())
			}
			if len(h.coords) != published || h.queue.Len() != 0 {
				t.Errorf("rejected drag published %d coordinates and queued %d steps", len(h.coords)-published, h.queue.Len())
			}
		})
	}

	h.panel.PointerDown(input.Point{X: 0.9}, input.ButtonPrimary, false)
	h.panel.PointerUp(input.Point{X: 0.9}, false)
	if h.panel.View() != huge {
		t.Errorf("click at the edge moved the view to %+v", h.panel.View())
	}
	if h.panel.Coordinates() == "" {
		t.Error("coordinates are empty")
	}
}
