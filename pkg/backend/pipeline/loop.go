// ABOUTME: Per-session loop goroutine serializing bus messages and posted tasks
// ABOUTME: Bus messages are drained before tasks so callbacks keep emission order
package pipeline

import (
	"context"
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/media"
)

// loop runs handlers for one session on a single goroutine
type loop struct {
	bus     *media.Bus
	handle  func(m *media.Message)
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
	tasks   []func()
	pending chan struct{}
}

func newLoop(bus *media.Bus, handle func(m *media.Message)) *loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &loop{
		bus:     bus,
		handle:  handle,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		pending: make(chan struct{}, 1),
	}
}

// start launches the loop goroutine
func (l *loop) start() {
	go l.run()
}

// post queues fn to run on the loop goroutine. It never blocks.
func (l *loop) post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.pending <- struct{}{}:
	default:
	}
}

func (l *loop) run() {
	defer close(l.done)

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.bus.Notify():
		case <-l.pending:
		}
		l.dispatch()
	}
}

// dispatch alternates between draining the bus and running one task. A task
// only runs once every message posted before it has been handled.
func (l *loop) dispatch() {
	for {
		for m := l.bus.Pop(); m != nil; m = l.bus.Pop() {
			l.handle(m)
		}

		fn, more := l.nextTask()
		if more {
			continue
		}
		if fn == nil {
			return
		}
		fn()
	}
}

// nextTask pops the oldest task. more reports that bus messages arrived
// first and must be drained before any task.
func (l *loop) nextTask() (fn func(), more bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tasks) == 0 {
		return nil, false
	}
	if l.bus.Len() > 0 {
		return nil, true
	}
	fn = l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, false
}

// stop ends the loop and waits for it to exit; queued work is dropped
func (l *loop) stop() {
	l.cancel()
	<-l.done
}
