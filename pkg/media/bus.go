// ABOUTME: Ordered message bus between pipeline goroutines and the owner's loop
// ABOUTME: Unbounded FIFO with a coalescing wake-up channel
package media

import "sync"

// Bus delivers pipeline messages in posting order. Post never blocks.
type Bus struct {
	mu       sync.Mutex
	queue    []*Message
	notify   chan struct{}
	flushing bool
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{notify: make(chan struct{}, 1)}
}

// Post appends a message and wakes the reader
func (b *Bus) Post(m *Message) {
	b.mu.Lock()
	if b.flushing {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, m)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Pop removes the oldest message, or returns nil when the queue is empty
func (b *Bus) Pop() *Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return nil
	}
	m := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return m
}

// Notify returns a channel that receives after one or more Posts
func (b *Bus) Notify() <-chan struct{} {
	return b.notify
}

// Len returns the number of queued messages
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// SetFlushing drops queued messages and, while enabled, every new one
func (b *Bus) SetFlushing(flushing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flushing = flushing
	if flushing {
		b.queue = nil
	}
}
