package main

import (
	"context"
	"fmt"
	"net"
	"reflect"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fractal4d/fractal"
	"github.com/stewi1014/fractal4d/input"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/renderer"
	"github.com/stewi1014/fractal4d/tiles"
)

// scrollTicks is how many detail ticks one discrete scroll step counts as.
const scrollTicks = 3

func NewRenderWindow(
	app *gtk.Application,
	conn net.Conn,
	ctx context.Context,
	quit context.CancelCauseFunc,
	o options,
	panelOpts fractal.Options,
) *RenderWindow {
	var err error
	w := &RenderWindow{
		ctx:       ctx,
		quit:      quit,
		debug:     o.Debug,
		panelOpts: panelOpts,
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}
	AttachErrorDialog(w.ApplicationWindow, ctx)

	w.messages = newMessenger(ctx, quit, conn, idle, w.handleMessage)
	w.panelOpts.OnCoordinates = func(text string) {
		w.messages.Send(CoordinatesMessage{Text: text})
	}

	w.SetDefaultSize(getWindowSize())

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		quit(fmt.Errorf("gtk.GLAreaNew: %w", err))
		return nil
	}

	w.gla.SetRequiredVersion(4, 6)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("unrealize", w.glaUnrealize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.POINTER_MOTION_MASK) |
			int(gdk.LEAVE_NOTIFY_MASK) |
			int(gdk.SCROLL_MASK) |
			int(gdk.SMOOTH_SCROLL_MASK),
	)
	w.gla.Connect("resize", w.resize)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.buttonPress)
	w.gla.Connect("button-release-event", w.buttonRelease)
	w.gla.Connect("motion-notify-event", w.motion)
	w.gla.Connect("leave-notify-event", w.leave)
	w.Connect("key-press-event", func(win *gtk.ApplicationWindow, event *gdk.Event) bool {
		return w.key(event, true)
	})
	w.Connect("key-release-event", func(win *gtk.ApplicationWindow, event *gdk.Event) bool {
		return w.key(event, false)
	})

	w.Add(w.gla)
	w.ShowAll()

	return w
}

func getWindowSize() (width, height int) {
	width = 1200
	height = 800

	display, err := gdk.DisplayGetDefault()
	if err != nil {
		return
	}

	monitor, err := display.GetPrimaryMonitor()
	if err != nil {
		return
	}

	width = int(float32(monitor.GetGeometry().GetWidth()) * .6)
	height = int(float32(monitor.GetGeometry().GetHeight()) * .6)
	return
}

type RenderWindow struct {
	*gtk.ApplicationWindow
	gla *gtk.GLArea

	ctx  context.Context
	quit context.CancelCauseFunc

	debug     bool
	panelOpts fractal.Options
	renderer  *renderer.Renderer
	panel     *fractal.Panel
	messages  *messenger

	// shift follows the Shift keys, refreshed by every pointer event.
	shift bool
}

// post runs a tile step from the GTK idle loop with the GL context current,
// then asks for the result to be shown.
func (w *RenderWindow) post(f func()) {
	glib.IdleAdd(func() {
		if w.renderer == nil {
			return
		}
		w.gla.MakeCurrent()
		f()
		w.gla.QueueRender()
		if w.panel != nil {
			w.SetTitle(progressTitle(w.panel.Scheduler()))
		}
	})
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()

	var err error
	w.renderer, err = renderer.New(w.debug)
	if err != nil {
		w.quit(err)
		return
	}

	// Tiles need a target before the first sweep starts.
	scale := gla.GetScaleFactor()
	if err := w.renderer.Resize(gla.GetAllocatedWidth()*scale, gla.GetAllocatedHeight()*scale); err != nil {
		logger.Logger().Debug("no initial render target", "error", err)
	}

	w.panel, err = fractal.NewPanel(w.renderer, tiles.PostFunc(w.post), w.panelOpts)
	if err != nil {
		w.quit(err)
		return
	}
}

func (w *RenderWindow) glaRender(gla *gtk.GLArea) bool {
	if w.renderer == nil {
		return false
	}
	gla.AttachBuffers()
	w.renderer.Present()
	return true
}

func (w *RenderWindow) glaUnrealize(gla *gtk.GLArea) {
	if w.renderer == nil {
		return
	}
	gla.MakeCurrent()
	w.renderer.Delete()
	w.renderer = nil
	w.panel = nil
}

func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	if w.renderer == nil {
		return
	}
	gla.MakeCurrent()
	if err := w.renderer.Resize(width, height); err != nil {
		logger.Logger().Warn("resize failed", "error", err)
		return
	}
	if w.panel != nil {
		w.panel.Redraw()
	}
}

// pointer converts a widget position into normalized surface coordinates.
func (w *RenderWindow) pointer(x, y float64) input.Point {
	return input.Normalize(x, y, float64(w.gla.GetAllocatedWidth()), float64(w.gla.GetAllocatedHeight()))
}

func buttonsFromState(state gdk.ModifierType) input.Buttons {
	var b input.Buttons
	if state&gdk.BUTTON1_MASK != 0 {
		b |= input.ButtonPrimary
	}
	if state&gdk.BUTTON2_MASK != 0 {
		b |= input.ButtonMiddle
	}
	if state&gdk.BUTTON3_MASK != 0 {
		b |= input.ButtonSecondary
	}
	return b
}

func buttonFromEvent(button gdk.Button) input.Buttons {
	switch button {
	case gdk.BUTTON_PRIMARY:
		return input.ButtonPrimary
	case gdk.BUTTON_MIDDLE:
		return input.ButtonMiddle
	case gdk.BUTTON_SECONDARY:
		return input.ButtonSecondary
	}
	return 0
}

func (w *RenderWindow) buttonPress(gla *gtk.GLArea, event *gdk.Event) bool {
	if w.panel == nil {
		return false
	}
	button := gdk.EventButtonNewFromEvent(event)
	if button.Type() != gdk.EVENT_BUTTON_PRESS {
		// Double and triple click events follow the presses they are made of.
		return true
	}

	state := gdk.ModifierType(button.State())
	w.shift = state&gdk.SHIFT_MASK != 0
	// The event state holds the buttons down before this press.
	buttons := buttonsFromState(state) | buttonFromEvent(button.Button())
	w.panel.PointerDown(w.pointer(button.MotionVal()), buttons, w.shift)
	return true
}

func (w *RenderWindow) buttonRelease(gla *gtk.GLArea, event *gdk.Event) bool {
	if w.panel == nil {
		return false
	}
	button := gdk.EventButtonNewFromEvent(event)
	state := gdk.ModifierType(button.State())
	w.shift = state&gdk.SHIFT_MASK != 0
	w.panel.PointerUp(w.pointer(button.MotionVal()), w.shift)
	return true
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) bool {
	if w.panel == nil {
		return false
	}
	motion := gdk.EventMotionNewFromEvent(event)
	state := gdk.ModifierType(motion.State())
	w.shift = state&gdk.SHIFT_MASK != 0
	w.panel.PointerMove(w.pointer(motion.MotionVal()), buttonsFromState(state), w.shift)
	return true
}

func (w *RenderWindow) leave(gla *gtk.GLArea, event *gdk.Event) bool {
	if w.panel != nil {
		w.panel.PointerLeave()
	}
	return false
}

func (w *RenderWindow) key(event *gdk.Event, pressed bool) bool {
	switch gdk.EventKeyNewFromEvent(event).KeyVal() {
	case gdk.KEY_Shift_L, gdk.KEY_Shift_R:
		w.shift = pressed
	}
	return false
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) bool {
	if w.panel == nil {
		return false
	}
	scroll := gdk.EventScrollNewFromEvent(event)
	e := input.WheelEvent{Shift: w.shift}

	switch scroll.Direction() {
	case gdk.SCROLL_UP:
		e.Detail = -scrollTicks
	case gdk.SCROLL_DOWN:
		e.Detail = scrollTicks
	case gdk.SCROLL_SMOOTH:
		e.Detail = scroll.DeltaY() * scrollTicks
	default:
		return false
	}

	if e.Detail != 0 {
		w.panel.Wheel(e)
	}
	return true
}

func (w *RenderWindow) status(err error, format string, args ...interface{}) {
	if err != nil {
		w.messages.Send(StatusMessage{Text: err.Error(), Error: true})
		return
	}
	w.messages.Send(StatusMessage{Text: fmt.Sprintf(format, args...)})
}

func (w *RenderWindow) handleMessage(v interface{}) {
	if w.panel == nil {
		logger.Logger().Warn("message before the panel is ready", "type", reflect.TypeOf(v))
		return
	}

	switch msg := v.(type) {
	case CoordinatesMessage:
		err := w.panel.SetCoordinates(msg.Text)
		w.status(err, "coordinates applied")

	case IterationsMessage:
		err := w.panel.SetIterations(msg.Text)
		w.status(err, "iterations set to %d", w.panel.MaxIterations())

	case ColorStretchingMessage:
		err := w.panel.SetColorStretching(msg.Text)
		w.status(err, "color stretching applied")

	case ProgramMessage:
		err := w.panel.SetProgram(msg.Index)
		w.status(err, "program loaded")

	case SaveMessage:
		w.gla.MakeCurrent()
		err := save(w.renderer, msg.Path)
		w.status(err, "saved %v", msg.Path)

	default:
		logger.Logger().Warn("unknown message received", "type", reflect.TypeOf(v))
	}
}
