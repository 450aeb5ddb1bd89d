// ABOUTME: PCM channel contract with readiness multiplexing and device events
// ABOUTME: deviceBuffer implements the shared half between worker and device clock
package pcm

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrClosed is returned by channel operations after Close
	ErrClosed = errors.New("pcm channel closed")

	// ErrNoEvent is returned by ReadEvent when no event is pending
	ErrNoEvent = errors.New("no pcm event pending")

	// ErrUnknownDevice is returned for unrecognized device names
	ErrUnknownDevice = errors.New("unknown pcm device")
)

// Direction selects playback or capture
type Direction int

const (
	Playback Direction = iota
	Capture
)

func (d Direction) String() string {
	if d == Capture {
		return "capture"
	}
	return "playback"
}

// Readiness is the set of conditions Wait reports
type Readiness uint8

const (
	Readable Readiness = 1 << iota
	Writable
	Eventful
)

// EventType classifies device events
type EventType int

const (
	EventUnderrun EventType = iota
	EventOverrun
	EventMute
	EventUnmute
)

func (t EventType) String() string {
	switch t {
	case EventUnderrun:
		return "underrun"
	case EventOverrun:
		return "overrun"
	case EventMute:
		return "mute"
	case EventUnmute:
		return "unmute"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Event is a notification raised by the device
type Event struct {
	Type EventType
	Time time.Time
}

// Channel is one direction of a PCM device
type Channel interface {
	// Prepare readies the channel for a new session
	Prepare() error

	// Wait blocks until the channel is ready or timeout elapses. A timeout
	// returns zero readiness and no error.
	Wait(timeout time.Duration) (Readiness, error)

	// Read fills p with captured bytes and may return short
	Read(p []byte) (int, error)

	// Write queues p for playback and may return short
	Write(p []byte) (int, error)

	// ReadEvent pops the oldest pending event
	ReadEvent() (Event, error)

	// Flush plays out pending playback data, drops pending capture data
	// and halts the device until the next Prepare
	Flush() error

	Close() error
}

// ChannelConfig describes the channel a session opens
type ChannelConfig struct {
	Device       string
	Direction    Direction
	SampleRate   int
	Channels     int
	FragmentSize int
}

// FragmentPeriod returns the playing time of one fragment
func (c ChannelConfig) FragmentPeriod() time.Duration {
	bytesPerSecond := c.SampleRate * c.Channels * 2
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(c.FragmentSize) * time.Second / time.Duration(bytesPerSecond)
}

// ChannelFactory opens a channel
type ChannelFactory func(cfg ChannelConfig) (Channel, error)

// OpenChannel opens the channel named by cfg.Device
func OpenChannel(cfg ChannelConfig) (Channel, error) {
	switch cfg.Device {
	case "", "default", "malgo", "miniaudio":
		return OpenMalgo(cfg)
	case "null":
		return NewNullChannel(cfg), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, cfg.Device)
}

// deviceFragments is the device-side queue depth in fragments
const deviceFragments = 4

// deviceBuffer is the queue between a channel's caller and its device
// clock. The device side calls consume or produce; the caller side uses the
// Channel methods.
type deviceBuffer struct {
	mu       sync.Mutex
	ring     *RingBuffer
	dir      Direction
	fragment int
	events   []Event
	changed  chan struct{}
	closed   bool
	xrun     bool
}

func newDeviceBuffer(cfg ChannelConfig) *deviceBuffer {
	return &deviceBuffer{
		ring:     NewRingBuffer(cfg.FragmentSize * deviceFragments),
		dir:      cfg.Direction,
		fragment: cfg.FragmentSize,
		changed:  make(chan struct{}),
	}
}

// signal wakes Wait callers (must hold d.mu)
func (d *deviceBuffer) signal() {
	close(d.changed)
	d.changed = make(chan struct{})
}

// readiness must hold d.mu
func (d *deviceBuffer) readiness() Readiness {
	var r Readiness
	if d.dir == Capture && d.ring.Len() >= d.fragment {
		r |= Readable
	}
	if d.dir == Playback && d.ring.Free() >= d.fragment {
		r |= Writable
	}
	if len(d.events) > 0 {
		r |= Eventful
	}
	return r
}

func (d *deviceBuffer) Wait(timeout time.Duration) (Readiness, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return 0, ErrClosed
		}
		r, changed := d.readiness(), d.changed
		d.mu.Unlock()

		if r != 0 {
			return r, nil
		}
		select {
		case <-changed:
		case <-timer.C:
			return 0, nil
		}
	}
}

func (d *deviceBuffer) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	n := d.ring.Read(p)
	d.signal()
	return n, nil
}

func (d *deviceBuffer) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	n := len(p)
	if free := d.ring.Free(); n > free {
		n = free
	}
	d.ring.Write(p[:n])
	d.signal()
	return n, nil
}

func (d *deviceBuffer) ReadEvent() (Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.events) == 0 {
		return Event{}, ErrNoEvent
	}
	ev := d.events[0]
	d.events = d.events[1:]
	d.signal()
	return ev, nil
}

// raise queues a device event (must hold d.mu)
func (d *deviceBuffer) raise(t EventType) {
	d.events = append(d.events, Event{Type: t, Time: time.Now()})
}

// consume fills out for the device, zero-filling on underrun. It returns
// the number of queued bytes used.
func (d *deviceBuffer) consume(out []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.ring.Read(out)
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	switch {
	case n < len(out) && !d.xrun:
		d.xrun = true
		d.raise(EventUnderrun)
	case n == len(out):
		d.xrun = false
	}
	d.signal()
	return n
}

// produce queues captured bytes, dropping them on overrun
func (d *deviceBuffer) produce(in []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ring.Write(in) {
		if !d.xrun {
			d.xrun = true
			d.raise(EventOverrun)
		}
	} else {
		d.xrun = false
	}
	d.signal()
}

// drain waits until queued playback is consumed or timeout elapses
func (d *deviceBuffer) drain(timeout time.Duration) {
	if d.dir != Playback {
		return
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		d.mu.Lock()
		empty, closed, changed := d.ring.IsEmpty(), d.closed, d.changed
		d.mu.Unlock()

		if empty || closed {
			return
		}
		select {
		case <-changed:
		case <-timer.C:
			return
		}
	}
}

// reset drops queued bytes and events
func (d *deviceBuffer) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ring.Reset()
	d.events = nil
	d.xrun = false
	d.signal()
}

func (d *deviceBuffer) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// close fails later calls and wakes waiters
func (d *deviceBuffer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.signal()
}

// drainTimeout bounds Flush for a full device queue
func drainTimeout(cfg ChannelConfig) time.Duration {
	return cfg.FragmentPeriod()*deviceFragments + 100*time.Millisecond
}
