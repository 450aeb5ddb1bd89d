// ABOUTME: PCM session context and its duplex worker goroutine
// ABOUTME: Moves one fragment per pass between the ring buffer and the channel
package pcm

import (
	"errors"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// pollTimeout bounds each wait so stop requests are noticed
const pollTimeout = 100 * time.Millisecond

// ringFragments is the ring buffer size in fragments
const ringFragments = 10

// session is the context behind a PCM player or recorder handle
type session struct {
	base    aal.Base
	name    string
	cfg     ChannelConfig
	channel Channel

	// ring is nil for capture
	ring *RingBuffer

	// mu guards ring, the request flags and the worker bookkeeping
	mu            sync.Mutex
	stopRequested bool
	eosRequested  bool
	running       bool
	done          chan struct{}

	// wake interrupts the wait for data after a Write or stop request
	wake chan struct{}
}

func (s *session) Base() *aal.Base { return &s.base }

func newSession(name string, cfg ChannelConfig, ch Channel) *session {
	s := &session{
		name:    name,
		cfg:     cfg,
		channel: ch,
		wake:    make(chan struct{}, 1),
	}
	if cfg.Direction == Playback {
		s.ring = NewRingBuffer(cfg.FragmentSize * ringFragments)
	}
	return s
}

func (s *session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// play prepares the channel and starts the worker
func (s *session) play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		aal.Logf(aal.LogWarn, "%s: already playing", s.name)
		return
	}
	if err := s.channel.Prepare(); err != nil {
		aal.Logf(aal.LogError, "%s: failed to prepare channel: %v", s.name, err)
		return
	}

	s.stopRequested = false
	s.running = true
	s.done = make(chan struct{})
	go s.run(s.done)
}

// stop asks the worker to finish; it does not wait
func (s *session) stop() {
	s.mu.Lock()
	s.stopRequested = true
	s.mu.Unlock()

	aal.Logf(aal.LogVerbose, "%s: stop requested", s.name)
	s.notify()
}

// destroy stops and joins the worker, then closes the channel
func (s *session) destroy() {
	s.stop()

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}

	if err := s.channel.Close(); err != nil {
		aal.Logf(aal.LogError, "%s: close failed: %v", s.name, err)
	}
}

// write queues data only if all of it fits
func (s *session) write(data []byte) int64 {
	s.mu.Lock()
	ok := s.ring.Write(data)
	s.mu.Unlock()

	if !ok {
		return 0
	}
	s.notify()
	return int64(len(data))
}

func (s *session) notifyEndOfStream() {
	s.mu.Lock()
	s.eosRequested = true
	s.mu.Unlock()
	s.notify()
}

func (s *session) buffered() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.ring.Len())
}

// readFromWriteBuffer takes up to one fragment and reports whether the ring
// is empty afterwards
func (s *session) readFromWriteBuffer(buf []byte) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ring.Read(buf)
	return n, s.ring.IsEmpty()
}

func (s *session) flags() (stop, eos bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopRequested, s.eosRequested
}

// waitForData blocks up to one fragment period for a Write or a stop
func (s *session) waitForData() {
	period := s.cfg.FragmentPeriod()
	if period <= 0 {
		return
	}
	timer := time.NewTimer(period)
	defer timer.Stop()

	select {
	case <-s.wake:
	case <-timer.C:
	}
}

// run is the worker loop. It reports exactly one OnStop.
func (s *session) run(done chan struct{}) {
	defer close(done)

	status := s.loop()

	if err := s.channel.Flush(); err != nil {
		aal.Logf(aal.LogError, "%s: flush failed: %v", s.name, err)
	}

	s.mu.Lock()
	s.running = false
	if status == aal.StatusSuccess {
		s.eosRequested = false
	}
	s.mu.Unlock()

	aal.Logf(aal.LogInfo, "%s: worker finished (%s)", s.name, status)
	s.base.EmitStop(status)
}

func (s *session) loop() aal.Status {
	buf := make([]byte, s.cfg.FragmentSize)

	// drop wake-ups left from before this session
	select {
	case <-s.wake:
	default:
	}

	s.base.EmitStart()

	for {
		ready, err := s.channel.Wait(pollTimeout)
		if err != nil {
			aal.Logf(aal.LogError, "%s: wait failed: %v", s.name, err)
			return aal.StatusError
		}

		if ready&Readable != 0 {
			n, err := s.channel.Read(buf)
			if err != nil {
				aal.Logf(aal.LogError, "%s: read failed: %v", s.name, err)
				return aal.StatusError
			}
			if n < len(buf) {
				aal.Logf(aal.LogError, "%s: short read %d of %d", s.name, n, len(buf))
				return aal.StatusError
			}
			s.base.EmitData(audio.BytesToInt16(buf[:n]))
		}

		if ready&Writable != 0 && s.ring != nil {
			n, needData := s.readFromWriteBuffer(buf)
			if n > 0 {
				written, err := s.channel.Write(buf[:n])
				if err != nil || written < n {
					aal.Logf(aal.LogError, "%s: short write %d of %d: %v", s.name, written, n, err)
					return aal.StatusError
				}
			}
			if needData {
				if _, eos := s.flags(); eos {
					return aal.StatusSuccess
				}
				s.base.EmitDataRequested()
				s.waitForData()
			}
		}

		if ready&Eventful != 0 {
			ev, err := s.channel.ReadEvent()
			switch {
			case err == nil:
				aal.Logf(aal.LogWarn, "%s: device event %s", s.name, ev.Type)
			case !errors.Is(err, ErrNoEvent):
				aal.Logf(aal.LogError, "%s: read event failed: %v", s.name, err)
			}
		}

		if stop, _ := s.flags(); stop {
			return aal.StatusUnknown
		}
	}
}
