// ABOUTME: Null audio output that discards samples
// ABOUTME: Optionally paces writes in real time; used headless and in tests
package output

import (
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// Null discards audio. With pacing enabled each Write takes as long as the
// audio it carries would take to play.
type Null struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pace    bool
	format  audio.Format
	open    bool
	paused  bool
	gen     uint64
	written int64
	flushes int
}

// NewNull creates a null output
func NewNull(pace bool) Output {
	n := &Null{pace: pace}
	n.cond = sync.NewCond(&n.mu)
	return n
}

// Open accepts any format
func (n *Null) Open(sampleRate, channels int) (audio.Format, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.format = audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16}
	n.open = true
	return n.format, nil
}

// Write discards samples, blocking while paused
func (n *Null) Write(samples []int32) error {
	n.mu.Lock()
	if !n.open {
		n.mu.Unlock()
		return ErrNotOpen
	}
	gen := n.gen
	for n.paused && n.open && gen == n.gen {
		n.cond.Wait()
	}
	if !n.open || gen != n.gen {
		n.mu.Unlock()
		return nil
	}
	n.written += int64(len(samples))
	format := n.format
	n.mu.Unlock()

	if n.pace && format.SampleRate > 0 && format.Channels > 0 {
		frames := len(samples) / format.Channels
		time.Sleep(time.Duration(frames) * time.Second / time.Duration(format.SampleRate))
	}
	return nil
}

func (n *Null) Pause() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paused = true
	return nil
}

func (n *Null) Resume() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paused = false
	n.cond.Broadcast()
	return nil
}

// Flush releases writers blocked by Pause
func (n *Null) Flush() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	n.flushes++
	n.cond.Broadcast()
	return nil
}

func (n *Null) Buffered() int { return 0 }

func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.open = false
	n.cond.Broadcast()
	return nil
}

// Written returns the number of samples accepted so far
func (n *Null) Written() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.written
}

// Flushes returns how many times Flush was called
func (n *Null) Flushes() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.flushes
}
