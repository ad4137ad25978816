package main

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"strconv"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fractal4d/fractal"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/programs"
)

func NewConfigWindow(
	app *gtk.Application,
	listener net.Listener,
	ctx context.Context,
	quit context.CancelCauseFunc,
	panelOpts fractal.Options,
) *ConfigWindow {
	var err error
	w := &ConfigWindow{
		ctx:  ctx,
		quit: quit,
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(420, 320)

	grid, err := gtk.GridNew()
	if err != nil {
		quit(fmt.Errorf("gtk.GridNew: %w", err))
		return nil
	}
	grid.SetRowSpacing(6)
	grid.SetColumnSpacing(12)
	grid.SetBorderWidth(12)

	w.program, _ = gtk.ComboBoxTextNew()
	for _, name := range programs.Names() {
		w.program.AppendText(name)
	}
	w.program.SetActive(panelOpts.Program)
	w.program.Connect("changed", func() {
		w.send(ProgramMessage{Index: w.program.GetActive()})
	})

	w.iterations = w.entry(strconv.Itoa(panelOpts.MaxIterations), func(text string) interface{} {
		return IterationsMessage{Text: text}
	})
	w.colorStretching = w.entry(
		strconv.FormatFloat(float64(panelOpts.ColorStretching)*100, 'g', -1, 32),
		func(text string) interface{} {
			return ColorStretchingMessage{Text: text}
		},
	)
	w.coordinates = w.entry(panelOpts.View.Serialize(), func(text string) interface{} {
		return CoordinatesMessage{Text: text}
	})
	w.coordinates.SetWidthChars(48)

	saveButton, _ := gtk.ButtonNewWithLabel("Save Image")
	saveButton.Connect("clicked", w.save)

	w.status, _ = gtk.LabelNew("")
	w.status.SetLineWrap(true)
	w.status.SetSelectable(true)
	w.status.SetXAlign(0)

	row := 0
	for _, field := range []struct {
		label  string
		widget gtk.IWidget
	}{
		{"Program", w.program},
		{"Iterations", w.iterations},
		{"Color stretching (%)", w.colorStretching},
		{"Coordinates", w.coordinates},
	} {
		l, _ := gtk.LabelNew(field.label)
		l.SetXAlign(0)
		grid.Attach(l, 0, row, 1, 1)
		grid.Attach(field.widget, 1, row, 1, 1)
		row++
	}
	grid.Attach(saveButton, 0, row, 2, 1)
	grid.Attach(w.status, 0, row+1, 2, 1)

	w.Add(grid)
	w.ShowAll()

	go w.accept(listener)

	return w
}

type ConfigWindow struct {
	*gtk.ApplicationWindow

	ctx  context.Context
	quit context.CancelCauseFunc

	program         *gtk.ComboBoxText
	iterations      *gtk.Entry
	colorStretching *gtk.Entry
	coordinates     *gtk.Entry
	status          *gtk.Label

	messages *messenger
}

func (w *ConfigWindow) accept(listener net.Listener) {
	defer CatchPanicToContext(w.quit)
	defer listener.Close()

	conn, err := listener.Accept()
	if err != nil {
		w.quit(fmt.Errorf("accepting render window connection: %w", err))
		return
	}

	messages := newMessenger(w.ctx, w.quit, conn, idle, w.handleMessage)
	glib.IdleAdd(func() {
		w.messages = messages
	})
}

// entry creates a text field that sends its text when Enter is pressed.
// Setting the text programmatically sends nothing.
func (w *ConfigWindow) entry(text string, message func(text string) interface{}) *gtk.Entry {
	e, _ := gtk.EntryNew()
	e.SetText(text)
	e.SetHExpand(true)
	e.Connect("activate", func() {
		text, err := e.GetText()
		if err != nil {
			logger.Logger().Warn("reading entry", "error", err)
			return
		}
		w.send(message(text))
	})
	return e
}

func (w *ConfigWindow) send(msg interface{}) {
	if w.messages == nil {
		logger.Logger().Debug("render window not connected, dropping message", "type", reflect.TypeOf(msg))
		return
	}
	w.messages.Send(msg)
}

func (w *ConfigWindow) save() {
	dialog, err := gtk.FileChooserDialogNewWith2Buttons(
		"Save Image",
		w.ApplicationWindow,
		gtk.FILE_CHOOSER_ACTION_SAVE,
		"Cancel", gtk.RESPONSE_CANCEL,
		"Save", gtk.RESPONSE_ACCEPT,
	)
	if err != nil {
		NewErrorDialog(w.ApplicationWindow, err)
		return
	}
	defer dialog.Destroy()

	dialog.SetDoOverwriteConfirmation(true)
	dialog.SetCurrentName("fractal.png")

	if gtk.ResponseType(dialog.Run()) != gtk.RESPONSE_ACCEPT {
		return
	}
	w.send(SaveMessage{Path: dialog.GetFilename()})
}

func (w *ConfigWindow) handleMessage(v interface{}) {
	switch msg := v.(type) {
	case CoordinatesMessage:
		// Leave the field alone while it is being edited.
		if w.coordinates.HasFocus() {
			return
		}
		w.coordinates.SetText(msg.Text)

	case StatusMessage:
		if msg.Error {
			logger.Logger().Warn("render window rejected input", "error", msg.Text)
		}
		w.status.SetText(msg.Text)

	default:
		logger.Logger().Warn("unknown message received", "type", reflect.TypeOf(v))
	}
}
