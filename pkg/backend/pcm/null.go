// ABOUTME: Software clock channel for tests and hosts without audio hardware
// ABOUTME: Consumes or produces one fragment of silence per fragment period
package pcm

import (
	"sync"
	"sync/atomic"
	"time"
)

// NullChannel discards playback and captures silence in real time
type NullChannel struct {
	*deviceBuffer
	cfg ChannelConfig

	clockMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}

	played atomic.Int64
}

// NewNullChannel creates a stopped null channel
func NewNullChannel(cfg ChannelConfig) *NullChannel {
	return &NullChannel{deviceBuffer: newDeviceBuffer(cfg), cfg: cfg}
}

// Prepare starts the clock
func (c *NullChannel) Prepare() error {
	c.clockMu.Lock()
	defer c.clockMu.Unlock()

	if c.isClosed() {
		return ErrClosed
	}

	if c.stop != nil {
		return nil
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.clock(c.stop, c.done)
	return nil
}

func (c *NullChannel) clock(stop, done chan struct{}) {
	defer close(done)

	period := c.cfg.FragmentPeriod()
	if period <= 0 {
		period = 20 * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	scratch := make([]byte, c.cfg.FragmentSize)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if c.dir == Playback {
			c.played.Add(int64(c.consume(scratch)))
		} else {
			for i := range scratch {
				scratch[i] = 0
			}
			c.produce(scratch)
		}
	}
}

// halt stops the clock and waits for it
func (c *NullChannel) halt() {
	c.clockMu.Lock()
	defer c.clockMu.Unlock()

	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil
}

// Flush plays out queued data, then stops the clock
func (c *NullChannel) Flush() error {
	c.drain(drainTimeout(c.cfg))
	c.halt()
	c.reset()
	return nil
}

// Close stops the clock and fails later calls
func (c *NullChannel) Close() error {
	c.halt()
	c.close()
	return nil
}

// Played returns the number of queued bytes the clock has consumed
func (c *NullChannel) Played() int64 {
	return c.played.Load()
}
