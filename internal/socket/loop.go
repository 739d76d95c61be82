// internal/socket/loop.go
package socket

import (
	"context"
)

// Loop serializes all game-state mutation onto a single goroutine. Every
// inbound frame and every disconnect cleanup is posted as a task; tasks run
// to completion before the next one starts, so handlers never interleave and
// room/player state needs no locking.
type Loop struct {
	tasks chan func()
}

// NewLoop creates a loop with a buffered task queue.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 256),
	}
}

// Run executes posted tasks until ctx is cancelled. It is meant to be called
// exactly once, from its own goroutine, at startup.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-l.tasks:
			task()
		}
	}
}

// Post enqueues a task for serial execution. Tasks posted from a single
// goroutine run in post order.
func (l *Loop) Post(task func()) {
	l.tasks <- task
}
