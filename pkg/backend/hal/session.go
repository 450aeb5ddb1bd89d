// ABOUTME: hal player session: play state, seek and volume over a device track
// ABOUTME: A monitor goroutine reports the head reaching the end of the image
package hal

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
)

// monitorInterval is how often the monitor checks the play head
const monitorInterval = 20 * time.Millisecond

type playState int

const (
	stateStopped playState = iota
	statePaused
	statePlaying
)

func (p playState) String() string {
	switch p {
	case stateStopped:
		return "stopped"
	case statePaused:
		return "paused"
	case statePlaying:
		return "playing"
	}
	return "invalid"
}

// session is the context behind a hal player handle
type session struct {
	base  aal.Base
	name  string
	image *image
	track Track

	mu          sync.Mutex
	state       playState
	atEnd       bool
	muted       bool
	savedVolume float64

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *session) Base() *aal.Base { return &s.base }

func newSession(name string, im *image, track Track) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		name:        name,
		image:       im,
		track:       track,
		savedVolume: 1,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go s.monitor(ctx)
	return s
}

// setState applies a play state and reports whether it changed (must hold s.mu)
func (s *session) setState(state playState) bool {
	if s.state == state {
		return false
	}
	switch state {
	case statePlaying:
		if s.atEnd {
			s.rewind()
		}
		s.track.Play()
	case statePaused:
		s.track.Pause()
	case stateStopped:
		s.track.Pause()
		s.rewind()
	}
	aal.Logf(aal.LogVerbose, "%s: %s -> %s", s.name, s.state, state)
	s.state = state
	return true
}

// rewind moves the head to the start (must hold s.mu)
func (s *session) rewind() {
	if _, err := s.track.Seek(0, io.SeekStart); err != nil {
		aal.Logf(aal.LogError, "%s: rewind failed: %v", s.name, err)
	}
	s.atEnd = false
}

func (s *session) play() {
	s.mu.Lock()
	changed := s.setState(statePlaying)
	s.mu.Unlock()

	if changed {
		s.base.EmitStart()
	}
}

func (s *session) pause() {
	s.mu.Lock()
	changed := s.setState(statePaused)
	s.mu.Unlock()

	if changed {
		s.base.EmitStop(aal.StatusPaused)
	}
}

func (s *session) stop() {
	s.mu.Lock()
	changed := s.setState(stateStopped)
	if !changed {
		s.rewind()
	}
	s.mu.Unlock()

	if changed {
		s.base.EmitStop(aal.StatusUnknown)
	}
}

// position is the played time: read offset less what the device still holds
func (s *session) position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	played := s.image.Offset() - int64(s.track.BufferedSize())
	if played < 0 {
		played = 0
	}
	return s.image.offsetToMs(played)
}

func (s *session) duration() int64 {
	return s.image.offsetToMs(s.image.Size())
}

func (s *session) buffered() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.track.BufferedSize())
}

func (s *session) seek(ms int64) {
	if ms < 0 {
		aal.Logf(aal.LogError, "%s: invalid seek position %d", s.name, ms)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	offset := s.image.msToOffset(ms)
	if offset > s.image.Size() {
		offset = s.image.Size()
	}
	if _, err := s.track.Seek(offset, io.SeekStart); err != nil {
		aal.Logf(aal.LogError, "%s: seek to %d ms failed: %v", s.name, ms, err)
		return
	}
	s.atEnd = false
}

func (s *session) setVolume(volume float64) {
	if math.IsNaN(volume) {
		aal.Logf(aal.LogError, "%s: volume is not a number", s.name)
		return
	}
	volume = math.Max(0, math.Min(1, volume))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.savedVolume = volume
	if !s.muted {
		s.track.SetVolume(volume)
	}
}

func (s *session) setMute(mute bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mute == s.muted {
		return
	}
	s.muted = mute
	if mute {
		s.savedVolume = s.track.Volume()
		s.track.SetVolume(0)
	} else {
		s.track.SetVolume(s.savedVolume)
	}
}

// monitor reports the head reaching the end once per pass
func (s *session) monitor(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.checkEnd() {
				aal.Logf(aal.LogInfo, "%s: end of stream", s.name)
				s.base.EmitStop(aal.StatusSuccess)
			}
		}
	}
}

// checkEnd stops the session when everything has been played
func (s *session) checkEnd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != statePlaying || s.atEnd {
		return false
	}
	if s.image.Offset() < s.image.Size() || s.track.BufferedSize() > 0 {
		return false
	}
	s.track.Pause()
	s.state = stateStopped
	s.atEnd = true
	return true
}

func (s *session) destroy() {
	s.cancel()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.track.Close(); err != nil {
		aal.Logf(aal.LogWarn, "%s: track close error: %v", s.name, err)
	}
}
