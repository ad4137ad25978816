package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stewi1014/fractal4d/fractal"
	"github.com/stewi1014/fractal4d/input"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/programs"
	"github.com/stewi1014/fractal4d/renderer"
	"github.com/stewi1014/fractal4d/tiles"
)

// frameBudget is how long tile steps may run before the frame is shown.
const frameBudget = 12 * time.Millisecond

// glfwMain must be called on the main goroutine.
func glfwMain(ctx context.Context, o options, panelOpts fractal.Options) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	w, err := NewGLFWWindow(o, panelOpts)
	if err != nil {
		return err
	}
	defer w.Destroy()

	return w.Run(ctx)
}

func NewGLFWWindow(o options, panelOpts fractal.Options) (*GLFWWindow, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if o.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}
	window, err := glfw.CreateWindow(
		o.Width,
		o.Height,
		windowTitle,
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &GLFWWindow{
		Window: window,
	}

	w.MakeContextCurrent()
	glfw.SwapInterval(1)

	w.renderer, err = renderer.New(o.Debug)
	if err != nil {
		window.Destroy()
		return nil, err
	}

	width, height := w.GetFramebufferSize()
	if err := w.renderer.Resize(width, height); err != nil {
		window.Destroy()
		return nil, err
	}

	panelOpts.OnCoordinates = func(text string) {
		logger.Logger().Debug("view changed", "coordinates", text)
	}
	w.panel, err = fractal.NewPanel(w.renderer, &w.queue, panelOpts)
	if err != nil {
		window.Destroy()
		return nil, err
	}

	w.SetFramebufferSizeCallback(w.framebufferSize)
	w.SetScrollCallback(w.scroll)
	w.SetMouseButtonCallback(w.mouseButton)
	w.SetCursorPosCallback(w.cursorPos)
	w.SetCursorEnterCallback(w.cursorEnter)
	w.SetKeyCallback(w.key)

	return w, nil
}

// GLFWWindow runs a panel in a plain GLFW window. Tile steps are queued and
// run between event polls.
type GLFWWindow struct {
	*glfw.Window

	renderer *renderer.Renderer
	panel    *fractal.Panel
	queue    tiles.Queue
	buttons  input.Buttons
	title    string
}

// Run processes events and tile steps until the window is closed or ctx ends.
func (w *GLFWWindow) Run(ctx context.Context) error {
	for !w.ShouldClose() {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		if w.queue.Len() > 0 {
			glfw.PollEvents()
			w.queue.RunFor(frameBudget)
		} else {
			glfw.WaitEventsTimeout(0.25)
		}

		w.renderer.Present()
		w.SwapBuffers()

		if title := progressTitle(w.panel.Scheduler()); title != w.title {
			w.SetTitle(title)
			w.title = title
		}
	}
	return nil
}

func (w *GLFWWindow) Destroy() {
	w.renderer.Delete()
	w.Window.Destroy()
}

func (w *GLFWWindow) shift() bool {
	return w.GetKey(glfw.KeyLeftShift) == glfw.Press || w.GetKey(glfw.KeyRightShift) == glfw.Press
}

func (w *GLFWWindow) pointer(x, y float64) input.Point {
	width, height := w.GetSize()
	return input.Normalize(x, y, float64(width), float64(height))
}

func (w *GLFWWindow) framebufferSize(_ *glfw.Window, width, height int) {
	if width == 0 || height == 0 {
		// minimized
		return
	}
	if err := w.renderer.Resize(width, height); err != nil {
		logger.Logger().Warn("resize failed", "error", err)
		return
	}
	w.panel.Redraw()
}

func (w *GLFWWindow) scroll(_ *glfw.Window, xoff, yoff float64) {
	if yoff == 0 {
		return
	}
	w.panel.Wheel(input.WheelEvent{
		Detail: -yoff * scrollTicks,
		Shift:  w.shift(),
	})
}

func buttonFromGLFW(button glfw.MouseButton) input.Buttons {
	switch button {
	case glfw.MouseButtonLeft:
		return input.ButtonPrimary
	case glfw.MouseButtonMiddle:
		return input.ButtonMiddle
	case glfw.MouseButtonRight:
		return input.ButtonSecondary
	}
	return 0
}

func (w *GLFWWindow) mouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	pos := w.pointer(w.GetCursorPos())
	shift := mods&glfw.ModShift != 0

	switch action {
	case glfw.Press:
		w.buttons |= buttonFromGLFW(button)
		w.panel.PointerDown(pos, w.buttons, shift)
	case glfw.Release:
		w.buttons &^= buttonFromGLFW(button)
		w.panel.PointerUp(pos, shift)
	}
}

func (w *GLFWWindow) cursorPos(_ *glfw.Window, x, y float64) {
	w.panel.PointerMove(w.pointer(x, y), w.buttons, w.shift())
}

func (w *GLFWWindow) cursorEnter(_ *glfw.Window, entered bool) {
	if !entered {
		w.panel.PointerLeave()
	}
}

// key handles the keyboard shortcuts that stand in for the settings window.
func (w *GLFWWindow) key(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)

	case glfw.KeyEqual, glfw.KeyKPAdd:
		w.setIterations(w.panel.MaxIterations() * 2)
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		w.setIterations(w.panel.MaxIterations() / 2)

	case glfw.KeyP:
		next := (w.panel.Program() + 1) % programs.NumPrograms()
		if err := w.panel.SetProgram(next); err != nil {
			logger.Logger().Warn("switching program", "error", err)
		}

	case glfw.KeyC:
		fmt.Println(w.panel.Coordinates())

	case glfw.KeyS:
		if err := save(w.renderer, screenshotName(time.Now())); err != nil {
			logger.Logger().Warn("saving image", "error", err)
		}
	}
}

func (w *GLFWWindow) setIterations(n int) {
	if n < 1 {
		n = 1
	}
	if err := w.panel.SetIterations(strconv.Itoa(n)); err != nil {
		logger.Logger().Warn("setting iterations", "error", err)
	}
}
