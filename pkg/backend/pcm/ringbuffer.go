// ABOUTME: Bounded circular byte buffer between Write callers and the worker
// ABOUTME: Writes are all-or-nothing; reads take whatever is queued
package pcm

// RingBuffer is a fixed-capacity FIFO of bytes. It is not safe for
// concurrent use; callers hold their own lock.
type RingBuffer struct {
	buffer   []byte
	readPos  int
	writePos int
	count    int
}

// NewRingBuffer creates a ring buffer holding capacity bytes
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{buffer: make([]byte, capacity)}
}

// Write appends all of data, or nothing when it does not fit
func (rb *RingBuffer) Write(data []byte) bool {
	if len(data) > rb.Free() {
		return false
	}

	n := copy(rb.buffer[rb.writePos:], data)
	if n < len(data) {
		copy(rb.buffer, data[n:])
	}
	rb.writePos = (rb.writePos + len(data)) % len(rb.buffer)
	rb.count += len(data)
	return true
}

// Read moves up to len(p) bytes into p and returns how many
func (rb *RingBuffer) Read(p []byte) int {
	want := len(p)
	if want > rb.count {
		want = rb.count
	}
	if want == 0 {
		return 0
	}

	n := copy(p[:want], rb.buffer[rb.readPos:])
	if n < want {
		copy(p[n:want], rb.buffer)
	}
	rb.readPos = (rb.readPos + want) % len(rb.buffer)
	rb.count -= want
	return want
}

// Len returns the number of queued bytes
func (rb *RingBuffer) Len() int { return rb.count }

// Free returns the space left
func (rb *RingBuffer) Free() int { return len(rb.buffer) - rb.count }

// Cap returns the capacity
func (rb *RingBuffer) Cap() int { return len(rb.buffer) }

// IsEmpty reports whether nothing is queued
func (rb *RingBuffer) IsEmpty() bool { return rb.count == 0 }

// Reset drops all queued bytes
func (rb *RingBuffer) Reset() {
	rb.readPos, rb.writePos, rb.count = 0, 0, 0
}
