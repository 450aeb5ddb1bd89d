// ABOUTME: Capture pipeline: input device source feeding an app sink callback
// ABOUTME: Delivers interleaved S16 frames while PLAYING
package media

import (
	"fmt"
	"log"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/input"
)

// CaptureConfig configures a CapturePipeline
type CaptureConfig struct {
	Name       string
	SampleRate int
	Channels   int

	// PeriodSize is the number of frames per OnData callback
	PeriodSize int

	Input input.Input
}

// CapturePipeline records from an input and hands each period to the app sink
type CapturePipeline struct {
	*core

	cfg    CaptureConfig
	onData func(samples []int16)

	// guarded by core.mu
	session *captureSession
}

type captureSession struct {
	stopping bool
	done     chan struct{}
}

// NewCapturePipeline creates a capture pipeline in the NULL state.
// onData runs on the capture goroutine.
func NewCapturePipeline(cfg CaptureConfig, onData func(samples []int16)) *CapturePipeline {
	if cfg.PeriodSize <= 0 {
		cfg.PeriodSize = int(int64(cfg.SampleRate) * int64(chunkDuration) / int64(time.Second))
	}
	c := &CapturePipeline{cfg: cfg, onData: onData}
	c.core = newCore(cfg.Name, c)
	return c
}

func (c *CapturePipeline) setup() error {
	if c.cfg.Input == nil {
		return ErrNoSource
	}
	if c.cfg.SampleRate <= 0 || c.cfg.Channels <= 0 {
		return fmt.Errorf("%s: invalid capture format %dHz %dch", c.name, c.cfg.SampleRate, c.cfg.Channels)
	}
	return nil
}

func (c *CapturePipeline) activate() error {
	format, err := c.cfg.Input.Open(c.cfg.SampleRate, c.cfg.Channels)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	log.Printf("%s: capturing %s", c.name, format)

	s := &captureSession{done: make(chan struct{})}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	go c.captureLoop(s)

	c.bus.Post(&Message{Type: MessageStreamStart, Source: c.name})
	return nil
}

func (c *CapturePipeline) play() error  { return nil }
func (c *CapturePipeline) pause() error { return nil }

func (c *CapturePipeline) deactivate() {
	c.mu.Lock()
	s := c.session
	c.session = nil
	if s != nil {
		s.stopping = true
		c.wake()
	}
	c.mu.Unlock()

	if s == nil {
		return
	}
	if err := c.cfg.Input.Close(); err != nil {
		log.Printf("%s: input close failed: %v", c.name, err)
	}
	<-s.done
}

func (c *CapturePipeline) teardown() {}

// captureLoop reads one period at a time; periods read while PAUSED are dropped
func (c *CapturePipeline) captureLoop(s *captureSession) {
	defer close(s.done)

	buf := make([]int16, c.cfg.PeriodSize*c.cfg.Channels)
	for {
		n, err := c.cfg.Input.Read(buf)

		c.mu.Lock()
		stopping, playing := s.stopping, c.state == Playing
		c.mu.Unlock()

		if stopping {
			return
		}
		if err != nil {
			c.bus.Post(&Message{Type: MessageError, Source: c.name, Err: fmt.Errorf("capture failed: %w", err)})
			c.waitUntil(func() bool { return s.stopping })
			return
		}
		if playing && n > 0 && c.onData != nil {
			out := make([]int16, n)
			copy(out, buf[:n])
			c.onData(out)
		}
	}
}
