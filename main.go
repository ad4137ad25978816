package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/spf13/cobra"
	"github.com/stewi1014/fractal4d/fractal"
	"github.com/stewi1014/fractal4d/input"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/programs"
	"github.com/stewi1014/fractal4d/tiles"
	"github.com/stewi1014/fractal4d/view"
)

const (
	applicationID = "com.github.stewi1014.fractal4d"
	windowTitle   = "fractal4d"
)

func init() {
	// GLFW calls must come from the main thread.
	runtime.LockOSThread()
}

// frontend starts one window system. mainThread front-ends run directly on
// the main goroutine, the others run on their own goroutine like the GTK
// application always has.
type frontend struct {
	run        func(ctx context.Context, o options, panelOpts fractal.Options) error
	mainThread bool
}

var frontends = map[string]frontend{
	"gtk":  {run: gtkMain},
	"glfw": {run: glfwMain, mainThread: true},
}

func startFrontend(ctx context.Context, o options, panelOpts fractal.Options) error {
	f, ok := frontends[o.Frontend]
	if !ok {
		return fmt.Errorf("unknown frontend %q, want gtk or glfw", o.Frontend)
	}

	if f.mainThread {
		return ignoreCanceled(f.run(ctx, o, panelOpts))
	}
	return run(ctx, func(ctx context.Context) error {
		return f.run(ctx, o, panelOpts)
	})
}

// progressTitle is the window title for a panel, with the progress of a
// running sweep appended.
func progressTitle(s *tiles.Scheduler) string {
	if !s.Running() {
		return windowTitle
	}
	return fmt.Sprintf("%s (%d%%)", windowTitle, int(s.Progress()*100))
}

type options struct {
	Frontend        string
	Degree          int
	Iterations      int
	ColorStretching string
	Coordinates     string
	Program         int
	Width, Height   int
	Debug           bool
}

// panelOptions validates the command line values and converts them for the panel.
func (o options) panelOptions() (fractal.Options, error) {
	opts := fractal.DefaultOptions()

	if o.Degree < 0 || o.Degree > tiles.MaxDegree {
		return opts, fmt.Errorf("--degree: %w", tiles.ErrInvalidDegree)
	}
	opts.Degree = o.Degree

	if o.Iterations < 1 {
		return opts, fmt.Errorf("--iterations: %w", input.ErrInvalidIterations)
	}
	opts.MaxIterations = o.Iterations

	stretching, err := input.ParseColorStretching(o.ColorStretching)
	if err != nil {
		return opts, fmt.Errorf("--color-stretching: %w", err)
	}
	opts.ColorStretching = stretching

	if o.Coordinates != "" {
		opts.View, err = view.Parse(o.Coordinates)
		if err != nil {
			return opts, fmt.Errorf("--coordinates: %w", err)
		}
	}

	if _, err := programs.GetProgram(o.Program); err != nil {
		return opts, fmt.Errorf("--program: %w", err)
	}
	opts.Program = o.Program

	return opts, nil
}

func newRootCommand() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:   "fractal4d",
		Short: "Explore the Mandelbrot and Julia sets as one 4D space",
		Long: `fractal4d renders the Mandelbrot and Julia sets on the GPU.

Scroll to zoom, drag to pan, click to recentre. Hold shift while scrolling to
rotate the picture, or while dragging to rotate from the Mandelbrot set into
the Julia sets. Drag with the middle or right button to move the Julia
parameter.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if o.Debug {
				level = slog.LevelDebug
			}
			logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			panelOpts, err := o.panelOptions()
			if err != nil {
				return err
			}

			return startFrontend(cmd.Context(), o, panelOpts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.Frontend, "frontend", "gtk", "window system to use: gtk or glfw")
	f.IntVar(&o.Degree, "degree", fractal.DefaultDegree, "tile subdivision degree, the frame is drawn in 4^degree tiles")
	f.IntVar(&o.Iterations, "iterations", fractal.DefaultMaxIterations, "maximum iteration count")
	f.StringVar(&o.ColorStretching, "color-stretching", "0", "color stretching in percent")
	f.StringVar(&o.Coordinates, "coordinates", "", "initial view as JSON, as shown in the coordinates field")
	f.IntVar(&o.Program, "program", 0, "index of the fractal program")
	f.IntVar(&o.Width, "width", 1200, "window width (glfw)")
	f.IntVar(&o.Height, "height", 800, "window height (glfw)")
	f.BoolVar(&o.Debug, "debug", false, "log debug output, including GL debug messages")

	cmd.AddCommand(&cobra.Command{
		Use:   "programs",
		Short: "List the fractal programs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for i, name := range programs.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, name)
			}
		},
	})

	return cmd
}

// run starts ui on its own goroutine and waits for it to finish.
func run(parent context.Context, ui func(ctx context.Context) error) error {
	mainContext, mainQuit := context.WithCancelCause(parent)

	go func() {
		mainQuit(ui(mainContext))
	}()

	<-mainContext.Done()
	return ignoreCanceled(context.Cause(mainContext))
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func gtkMain(ctx context.Context, o options, panelOpts fractal.Options) error {
	runtime.LockOSThread()

	gtk.Init(nil)
	app, err := gtk.ApplicationNew(applicationID, glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	appContext, appQuit := context.WithCancelCause(ctx)
	app.Connect("activate", func() {
		client, listener := NewPipeListener()

		renderWindow := NewRenderWindow(app, client, appContext, appQuit, o, panelOpts)
		if renderWindow == nil {
			return
		}
		renderWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		renderWindow.SetTitle(windowTitle)

		configWindow := NewConfigWindow(app, listener, appContext, appQuit, panelOpts)
		if configWindow == nil {
			return
		}
		configWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		configWindow.SetTitle(windowTitle + " settings")
	})

	go func() {
		<-appContext.Done()
		glib.IdleAdd(app.Quit)
	}()
	app.Run(nil)
	return context.Cause(appContext)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
