// ABOUTME: Application source feeding raw S16LE PCM into a pipeline
// ABOUTME: Queues pushed bytes, signals need-data and ends the stream on request
package media

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/decode"
)

var (
	// ErrFlushing is returned while the owning pipeline is shutting down
	ErrFlushing = errors.New("app source is flushing")

	// ErrEndOfStream is returned when pushing after EndOfStream
	ErrEndOfStream = errors.New("app source reached end of stream")
)

// AppSource is a pipeline source fed by the application. It implements
// decode.Source over the queued bytes.
type AppSource struct {
	name    string
	format  audio.Format
	decoder *decode.PCMDecoder

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []byte
	eos      bool
	flushing bool
	starving bool

	needData func(length int)
}

// NewAppSource creates a source with raw S16LE caps
func NewAppSource(name string, sampleRate, channels int) (*AppSource, error) {
	format := audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16}
	decoder, err := decode.NewPCM(format)
	if err != nil {
		return nil, fmt.Errorf("app source %s: %w", name, err)
	}

	s := &AppSource{name: name, format: format, decoder: decoder}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

// Name returns the element name
func (s *AppSource) Name() string { return s.name }

// SetNeedDataFunc installs the need-data callback. It runs on the streaming
// goroutine each time the queue runs dry.
func (s *AppSource) SetNeedDataFunc(fn func(length int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needData = fn
}

// Push queues a copy of data
func (s *AppSource) Push(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flushing {
		return ErrFlushing
	}
	if s.eos {
		return ErrEndOfStream
	}
	s.queue = append(s.queue, data...)
	s.starving = false
	s.cond.Broadcast()
	return nil
}

// EndOfStream marks the end of pushed data; Read returns io.EOF once drained
func (s *AppSource) EndOfStream() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flushing {
		return ErrFlushing
	}
	s.eos = true
	s.cond.Broadcast()
	return nil
}

// CurrentLevelBytes returns the number of queued bytes
func (s *AppSource) CurrentLevelBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Read blocks until whole frames are queued, the stream ends, or the source flushes
func (s *AppSource) Read(samples []int32) (int, error) {
	frameBytes := s.format.FrameSize()

	s.mu.Lock()
	for len(s.queue) < frameBytes && !s.eos && !s.flushing {
		if !s.starving && s.needData != nil {
			s.starving = true
			fn := s.needData
			s.mu.Unlock()
			fn(len(samples) * 2)
			s.mu.Lock()
			continue
		}
		s.cond.Wait()
	}
	defer s.mu.Unlock()

	if s.flushing {
		return 0, ErrFlushing
	}

	n := s.decoder.DecodeInto(samples, s.queue)
	if n == 0 {
		// Only a partial frame remains after end of stream
		s.queue = nil
		return 0, io.EOF
	}
	s.queue = s.queue[n*2:]
	return n, nil
}

func (s *AppSource) Format() audio.Format { return s.format }

func (s *AppSource) Frames() int64 { return -1 }

// Close flushes the source and wakes a blocked Read
func (s *AppSource) Close() error {
	s.setFlushing(true)
	return nil
}

func (s *AppSource) setFlushing(flushing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushing = flushing
	if flushing {
		s.queue = nil
	}
	s.cond.Broadcast()
}

// reset re-arms a source flushed by a previous deactivation. Data and
// end-of-stream pushed before the first activation are kept.
func (s *AppSource) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.flushing {
		return
	}
	s.queue = nil
	s.eos = false
	s.flushing = false
	s.starving = false
}
