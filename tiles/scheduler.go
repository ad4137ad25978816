package tiles

import (
	"errors"

	"github.com/stewi1014/fractal4d/logger"
)

// Poster defers f to the next opportunity the host event loop gives it.
// Post never runs f synchronously.
type Poster interface {
	Post(f func())
}

// PostFunc adapts a function to Poster.
type PostFunc func(f func())

func (p PostFunc) Post(f func()) { p(f) }

// DrawFunc renders tile index covering r. It is called on the posting
// thread, at the moment the tile is drawn.
type DrawFunc func(index int, r Rect)

// Scheduler runs progressive sweeps over the tiles of a frame.
//
// At most one sweep is in flight. RequestFullRender during a sweep moves the
// stopping point instead of starting another loop, so the sweep runs until it
// has covered a full lap from the latest request.
type Scheduler struct {
	degree   int
	numParts int
	current  int
	final    int
	running  bool

	poster Poster
	draw   DrawFunc
}

func NewScheduler(degree int, poster Poster, draw DrawFunc) (*Scheduler, error) {
	if err := checkDegree(degree); err != nil {
		return nil, err
	}
	if poster == nil {
		return nil, errors.New("tiles: nil poster")
	}
	if draw == nil {
		return nil, errors.New("tiles: nil draw function")
	}

	return &Scheduler{
		degree:   degree,
		numParts: NumParts(degree),
		poster:   poster,
		draw:     draw,
	}, nil
}

// RequestFullRender makes sure every tile is drawn again after this call.
func (s *Scheduler) RequestFullRender() {
	s.final = s.current
	if s.running {
		return
	}

	s.running = true
	logger.Logger().Debug("sweep started", "from", s.current, "tiles", s.numParts)
	s.poster.Post(s.step)
}

func (s *Scheduler) step() {
	s.current++
	if s.current >= s.numParts {
		s.current = 0
	}

	s.draw(s.current, TileRect(s.degree, s.current))

	if s.current == s.final {
		s.running = false
		logger.Logger().Debug("sweep finished", "at", s.current)
		return
	}
	s.poster.Post(s.step)
}

func (s *Scheduler) Running() bool { return s.running }

// Current is the index of the last drawn tile.
func (s *Scheduler) Current() int { return s.current }

func (s *Scheduler) NumParts() int { return s.numParts }

// Progress is the fraction of the current lap already drawn, 1 when idle.
func (s *Scheduler) Progress() float64 {
	if !s.running {
		return 1
	}
	remaining := (s.final - s.current + s.numParts) % s.numParts
	if remaining == 0 {
		remaining = s.numParts
	}
	return 1 - float64(remaining)/float64(s.numParts)
}
