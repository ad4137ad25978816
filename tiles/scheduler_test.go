package tiles

import (
	"testing"
	"time"
)

type recorder struct {
	drawn []int
	rects []Rect
}

func (r *recorder) draw(i int, rect Rect) {
	r.drawn = append(r.drawn, i)
	r.rects = append(r.rects, rect)
}

func newTestScheduler(t *testing.T, degree int) (*Scheduler, *Queue, *recorder) {
	t.Helper()
	q := &Queue{}
	rec := &recorder{}
	s, err := NewScheduler(degree, q, rec.draw)
	if err != nil {
		t.Fatal(err)
	}
	return s, q, rec
}

func TestScheduler_FullSweep(t *testing.T) {
	s, q, rec := newTestScheduler(t, 3)

	s.RequestFullRender()
	if !s.Running() {
		t.Fatal("not running after request")
	}
	if len(rec.drawn) != 0 {
		t.Fatal("request drew synchronously")
	}

	steps := q.Drain(-1)
	if steps != 64 {
		t.Errorf("sweep took %d steps, want 64", steps)
	}
	if s.Running() {
		t.Error("still running after sweep")
	}

	seen := make(map[int]bool)
	for _, i := range rec.drawn {
		if seen[i] {
			t.Errorf("tile %d drawn twice", i)
		}
		seen[i] = true
	}
	if len(seen) != 64 {
		t.Errorf("%d distinct tiles drawn, want 64", len(seen))
	}
	if rec.drawn[0] != 1 || rec.drawn[63] != 0 {
		t.Errorf("sweep ran %d..%d, want 1..0", rec.drawn[0], rec.drawn[63])
	}
}

func TestScheduler_RequestDuringSweepExtends(t *testing.T) {
	s, q, rec := newTestScheduler(t, 3)

	s.RequestFullRender()
	if n := q.Drain(10); n != 10 {
		t.Fatalf("ran %d steps, want 10", n)
	}
	if s.Current() != 10 {
		t.Fatalf("current = %d, want 10", s.Current())
	}

	s.RequestFullRender()
	if q.Len() != 1 {
		t.Fatalf("%d pending steps after second request, want 1", q.Len())
	}

	steps := q.Drain(-1)
	if steps != 64 {
		t.Errorf("extended sweep took %d more steps, want 64", steps)
	}
	if s.Running() || s.Current() != 10 {
		t.Errorf("running = %v, current = %d; want stopped at 10", s.Running(), s.Current())
	}

	tail := rec.drawn[10:]
	for k, i := range tail {
		if want := (11 + k) % 64; i != want {
			t.Fatalf("step %d drew tile %d, want %d", k, i, want)
		}
	}
}

func TestScheduler_RepeatedRequestsSinglePending(t *testing.T) {
	s, q, _ := newTestScheduler(t, 2)

	for i := 0; i < 5; i++ {
		s.RequestFullRender()
	}
	if q.Len() != 1 {
		t.Errorf("%d pending steps, want 1", q.Len())
	}
	if steps := q.Drain(-1); steps != 16 {
		t.Errorf("sweep took %d steps, want 16", steps)
	}
}

func TestScheduler_RestartAfterIdle(t *testing.T) {
	s, q, rec := newTestScheduler(t, 1)

	s.RequestFullRender()
	q.Drain(-1)
	s.RequestFullRender()
	q.Drain(-1)

	want := []int{1, 2, 3, 0, 1, 2, 3, 0}
	if len(rec.drawn) != len(want) {
		t.Fatalf("drew %v, want %v", rec.drawn, want)
	}
	for i := range want {
		if rec.drawn[i] != want[i] {
			t.Fatalf("drew %v, want %v", rec.drawn, want)
		}
	}
}

func TestScheduler_DegreeZero(t *testing.T) {
	s, q, rec := newTestScheduler(t, 0)

	s.RequestFullRender()
	if steps := q.Drain(-1); steps != 1 {
		t.Errorf("sweep took %d steps, want 1", steps)
	}
	if rec.rects[0] != Full {
		t.Errorf("single tile = %+v, want full frame", rec.rects[0])
	}
}

func TestScheduler_Progress(t *testing.T) {
	s, q, _ := newTestScheduler(t, 1)

	if p := s.Progress(); p != 1 {
		t.Errorf("idle progress = %v, want 1", p)
	}
	s.RequestFullRender()
	if p := s.Progress(); p != 0 {
		t.Errorf("progress before first tile = %v, want 0", p)
	}
	q.Drain(2)
	if p := s.Progress(); p != 0.5 {
		t.Errorf("progress after two of four tiles = %v, want 0.5", p)
	}
}

func TestQueue_RunFor(t *testing.T) {
	s, q, rec := newTestScheduler(t, 3)

	s.RequestFullRender()
	if n := q.RunFor(time.Hour); n != 64 {
		t.Errorf("RunFor ran %d functions, want 64", n)
	}
	if len(rec.drawn) != 64 || q.Len() != 0 {
		t.Errorf("drawn %d tiles, %d pending", len(rec.drawn), q.Len())
	}

	s.RequestFullRender()
	if n := q.RunFor(0); n != 1 {
		t.Errorf("RunFor(0) ran %d functions, want 1", n)
	}
}

func TestPostFunc(t *testing.T) {
	var posted []func()
	p := PostFunc(func(f func()) { posted = append(posted, f) })

	ran := false
	p.Post(func() { ran = true })
	if ran || len(posted) != 1 {
		t.Fatal("PostFunc ran synchronously or did not forward")
	}
	posted[0]()
	if !ran {
		t.Error("posted function did not run")
	}
}
