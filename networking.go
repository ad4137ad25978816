package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"
	"reflect"
	"sync"

	"github.com/gotk3/gotk3/glib"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/tiles"
)

// Messages exchanged between the render window and the config window.
// The config window sends text exactly as typed, the render window parses it.
type (
	CoordinatesMessage     struct{ Text string }
	IterationsMessage      struct{ Text string }
	ColorStretchingMessage struct{ Text string }
	ProgramMessage         struct{ Index int }
	SaveMessage            struct{ Path string }

	// StatusMessage reports the outcome of a request back to the config window.
	StatusMessage struct {
		Text  string
		Error bool
	}
)

func init() {
	gob.Register(CoordinatesMessage{})
	gob.Register(IterationsMessage{})
	gob.Register(ColorStretchingMessage{})
	gob.Register(ProgramMessage{})
	gob.Register(SaveMessage{})
	gob.Register(StatusMessage{})
}

func NewPipeListener() (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	return clientPipe, &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
}

// pipeListener hands out its pipe once, then blocks until closed.
type pipeListener struct {
	mu       sync.Mutex
	pipe     net.Conn
	accepted bool
	done     chan struct{}
	close    sync.Once
}

func (p *pipeListener) Accept() (net.Conn, error) {
	p.mu.Lock()
	if !p.accepted {
		p.accepted = true
		p.mu.Unlock()
		return p.pipe, nil
	}
	p.mu.Unlock()

	<-p.done
	return nil, net.ErrClosed
}

func (p *pipeListener) Close() error {
	p.close.Do(func() { close(p.done) })
	return nil
}

func (p *pipeListener) Addr() net.Addr {
	return p.pipe.LocalAddr()
}

// sendBuffer holds messages sent before the other window starts reading.
const sendBuffer = 64

// idle runs functions on the GTK main loop.
var idle = tiles.PostFunc(func(f func()) {
	glib.IdleAdd(f)
})

// messenger sends and receives gob encoded messages over a connection.
// Received messages are handed to handle through poster, in order.
type messenger struct {
	ctx    context.Context
	quit   context.CancelCauseFunc
	send   chan interface{}
	poster tiles.Poster
}

func newMessenger(
	ctx context.Context,
	quit context.CancelCauseFunc,
	conn net.Conn,
	poster tiles.Poster,
	handle func(msg interface{}),
) *messenger {
	m := &messenger{
		ctx:    ctx,
		quit:   quit,
		send:   make(chan interface{}, sendBuffer),
		poster: poster,
	}

	go m.handleSend(conn)
	go m.handleReceive(conn, handle)
	return m
}

// Send queues msg for the other window. It gives up once the application is closing.
func (m *messenger) Send(msg interface{}) {
	select {
	case m.send <- msg:
	case <-m.ctx.Done():
	}
}

func (m *messenger) handleSend(conn net.Conn) {
	defer CatchPanicToContext(m.quit)
	defer conn.Close()

	enc := gob.NewEncoder(conn)
	for {
		select {
		case msg := <-m.send:
			if err := enc.Encode(&msg); err != nil {
				m.quit(fmt.Errorf("sending %T: %w", msg, err))
				return
			}
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *messenger) handleReceive(conn net.Conn, handle func(msg interface{})) {
	defer CatchPanicToContext(m.quit)

	dec := gob.NewDecoder(conn)
	for {
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			if m.ctx.Err() == nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				m.quit(fmt.Errorf("receiving message: %w", err))
			}
			conn.Close()
			return
		}

		logger.Logger().Debug("message received", "type", reflect.TypeOf(v))
		m.poster.Post(func() {
			handle(v)
		})
	}
}
