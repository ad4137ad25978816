package tiles

import "time"

// Queue is a FIFO Poster for hosts without an idle callback mechanism.
// The owner drains it from its event loop. Not safe for concurrent use.
type Queue struct {
	funcs []func()
}

func (q *Queue) Post(f func()) {
	q.funcs = append(q.funcs, f)
}

func (q *Queue) Len() int {
	return len(q.funcs)
}

// RunOne runs the oldest posted function. It reports false if the queue was empty.
func (q *Queue) RunOne() bool {
	if len(q.funcs) == 0 {
		return false
	}
	f := q.funcs[0]
	q.funcs[0] = nil
	q.funcs = q.funcs[1:]
	f()
	return true
}

// RunFor runs posted functions, including ones they post, until the queue is
// empty or budget has elapsed. At least one function runs if any is queued.
func (q *Queue) RunFor(budget time.Duration) int {
	deadline := time.Now().Add(budget)
	n := 0
	for q.RunOne() {
		n++
		if !time.Now().Before(deadline) {
			break
		}
	}
	return n
}

// Drain runs posted functions until the queue is empty or limit functions
// have run. A negative limit means no limit.
func (q *Queue) Drain(limit int) int {
	n := 0
	for limit < 0 || n < limit {
		if !q.RunOne() {
			break
		}
		n++
	}
	return n
}
