// Package uiloop queues work from background goroutines for the window's
// event loop, so that map and controller state is only touched there.
package uiloop

import "sync"

type Queue struct {
	mu      sync.Mutex
	pending []func()
	wake    func()
}

// New returns a queue that calls wake after each Post, typically
// app.Window.Invalidate.
func New(wake func()) *Queue {
	return &Queue{wake: wake}
}

// Post queues f. It is safe to call from any goroutine.
func (q *Queue) Post(f func()) {
	q.mu.Lock()
	q.pending = append(q.pending, f)
	q.mu.Unlock()
	if q.wake != nil {
		q.wake()
	}
}

// Drain runs the queued functions in order and returns how many ran.
// Functions posted while draining run on the next Drain.
func (q *Queue) Drain() int {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, f := range pending {
		f()
	}
	return len(pending)
}

// Len returns the number of queued functions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
