// ABOUTME: Session state machine reducing pipeline messages to listener callbacks
// ABOUTME: Handles deferred seeks, transitional states and stop versus end-of-stream
package pipeline

import (
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/media"
)

// logicalState is what the session believes about its stream
type logicalState int

const (
	stateNull logicalState = iota
	stateStreamStarted
	stateEndOfStream
	stateError
)

func (s logicalState) String() string {
	switch s {
	case stateNull:
		return "null"
	case stateStreamStarted:
		return "stream-started"
	case stateEndOfStream:
		return "end-of-stream"
	case stateError:
		return "error"
	default:
		return "?"
	}
}

// session is the context behind a player or recorder handle
type session struct {
	base     aal.Base
	name     string
	pipeline Pipeline

	// playback is nil for recorders
	playback Playback

	loop *loop

	// state is owned by the loop goroutine
	state logicalState

	mu          sync.Mutex
	pendingSeek *int64
}

func (s *session) Base() *aal.Base { return &s.base }

func newSession(name string, p Pipeline) *session {
	s := &session{name: name, pipeline: p}
	if pb, ok := p.(Playback); ok {
		s.playback = pb
	}
	s.loop = newLoop(p.Bus(), s.handleMessage)
	return s
}

// handleMessage runs on the loop goroutine
func (s *session) handleMessage(m *media.Message) {
	switch m.Type {
	case media.MessageError:
		aal.Logf(aal.LogError, "%s: %v", s.name, m.Err)
		if s.state != stateError {
			s.base.EmitStop(aal.StatusError)
		}
		s.state = stateError
		s.setState(media.Ready)

	case media.MessageEOS:
		aal.Logf(aal.LogVerbose, "%s: end of stream", s.name)
		s.state = stateEndOfStream
		s.setState(media.Ready)

	case media.MessageStreamStart:
		aal.Logf(aal.LogVerbose, "%s: stream started", s.name)
		s.state = stateStreamStarted

	case media.MessageStateChanged:
		if m.Source != s.pipeline.Name() {
			return
		}
		s.stateChanged(m)

	case media.MessageBuffering:
		aal.Logf(aal.LogVerbose, "%s: buffering %d%%", s.name, m.Percent)

	case media.MessageDurationChanged:
		aal.Logf(aal.LogVerbose, "%s: duration changed", s.name)

	case media.MessageStreamStatus:
		aal.Logf(aal.LogVerbose, "%s: stream status %s from %s", s.name, m.Status, m.Owner)
	}
}

// stateChanged applies a top-level pipeline transition
func (s *session) stateChanged(m *media.Message) {
	aal.Logf(aal.LogVerbose, "%s: %s -> %s (pending %s, next %s, %s)",
		s.name, m.Old, m.New, m.Pending, m.Next, s.state)

	switch m.New {
	case media.Ready:
		if m.Old == media.Null {
			s.state = stateNull
			return
		}
		if s.state == stateEndOfStream {
			s.base.EmitStop(aal.StatusSuccess)
		}

	case media.Paused:
		switch {
		case m.Old == media.Ready && m.Pending == media.Playing:
		case m.Old == media.Paused:
		case m.Next == media.Ready:
		case s.state == stateEndOfStream:
		default:
			s.base.EmitStop(aal.StatusPaused)
		}

	case media.Playing:
		if pos, ok := s.takePendingSeek(); ok {
			aal.Logf(aal.LogInfo, "%s: applying deferred seek to %d ms", s.name, pos)
			s.seek(pos)
			return
		}
		if s.state == stateStreamStarted {
			s.base.EmitStart()
		} else {
			aal.Logf(aal.LogWarn, "%s: playing without a started stream (%s)", s.name, s.state)
		}
	}
}

// seek moves the playback position, or keeps it for the next PLAYING
// transition when the pipeline cannot seek yet
func (s *session) seek(positionMs int64) {
	err := s.playback.Seek(positionMs)
	if err == nil {
		return
	}
	aal.Logf(aal.LogInfo, "%s: seek to %d ms deferred: %v", s.name, positionMs, err)

	s.mu.Lock()
	s.pendingSeek = &positionMs
	s.mu.Unlock()
}

func (s *session) takePendingSeek() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingSeek == nil || s.playback == nil {
		return 0, false
	}
	pos := *s.pendingSeek
	s.pendingSeek = nil
	return pos, true
}

func (s *session) setState(state media.State) media.StateChangeReturn {
	ret := s.pipeline.SetState(state)
	if ret == media.StateChangeFailure {
		aal.Logf(aal.LogError, "%s: failed to set state %s", s.name, state)
	}
	return ret
}

func (s *session) play() {
	s.setState(media.Playing)
}

func (s *session) pause() {
	s.setState(media.Paused)
}

// stop returns a running pipeline to READY. A stop that completes at once is
// reported as OnStop(Unknown) from the loop goroutine.
func (s *session) stop() {
	_, cur, _ := s.pipeline.GetState(media.ClockTimeNone)
	if cur != media.Paused && cur != media.Playing {
		aal.Logf(aal.LogVerbose, "%s: stop ignored in %s", s.name, cur)
		return
	}

	if s.setState(media.Ready) != media.StateChangeSuccess {
		return
	}
	if _, cur, _ = s.pipeline.GetState(0); cur == media.Ready {
		s.loop.post(func() { s.base.EmitStop(aal.StatusUnknown) })
	}
}

// destroy tears the pipeline down and joins the loop
func (s *session) destroy() {
	s.setState(media.Null)
	s.loop.stop()
	if err := s.pipeline.Close(); err != nil {
		aal.Logf(aal.LogError, "%s: close failed: %v", s.name, err)
	}
}
