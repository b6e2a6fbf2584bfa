// Package dispatch runs posted tasks one at a time in FIFO order.
//
// A [Loop] is the headless stand-in for a UI thread's idle queue: redraw and
// export requests are posted as named tasks and executed sequentially by
// whichever goroutine calls [Loop.Run]. There is no preemption and a running
// task is never cancelled; Run returns between tasks when its context ends.
package dispatch

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrClosed is returned by Post after Close.
var ErrClosed = errors.New("dispatch: loop closed")

// Task is a unit of work.
type Task func(ctx context.Context) error

// Done receives a task's result.
type Done func(err error)

type item struct {
	name   string
	task   Task
	done   Done
	posted time.Time
}

// Loop is a single-consumer FIFO task queue. Post is safe for concurrent
// use.
type Loop struct {
	mu     sync.Mutex
	queue  []item
	wake   chan struct{}
	closed bool
	logger *log.Logger
}

// New returns an empty loop. A nil logger discards output.
func New(logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loop{wake: make(chan struct{}, 1), logger: logger}
}

// Post appends a task. done, if non-nil, is called with the task's result on
// the goroutine running the loop.
func (l *Loop) Post(name string, task Task, done Done) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.queue = append(l.queue, item{name: name, task: task, done: done, posted: time.Now()})
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops accepting tasks. Tasks already queued still run; Run returns
// once the queue is drained.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.wake)
}

// Run executes tasks until the loop is closed and drained, or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		it, ok, closed := l.next()
		if ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			l.exec(ctx, it)
			continue
		}
		if closed {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Drain executes the tasks queued right now and returns.
func (l *Loop) Drain(ctx context.Context) {
	for {
		it, ok, _ := l.next()
		if !ok || ctx.Err() != nil {
			return
		}
		l.exec(ctx, it)
	}
}

func (l *Loop) next() (item, bool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return item{}, false, l.closed
	}
	it := l.queue[0]
	l.queue[0] = item{}
	l.queue = l.queue[1:]
	return it, true, l.closed
}

func (l *Loop) exec(ctx context.Context, it item) {
	start := time.Now()
	err := it.task(ctx)
	if err != nil {
		l.logger.Error("task failed", "task", it.name, "err", err)
	} else {
		l.logger.Debug("task done", "task", it.name,
			"waited", start.Sub(it.posted).Round(time.Microsecond),
			"took", time.Since(start).Round(time.Microsecond))
	}
	if it.done != nil {
		it.done(err)
	}
}
