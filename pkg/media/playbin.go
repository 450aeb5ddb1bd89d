// ABOUTME: Playbin pipeline: source, decoder, converter, volume and sink
// ABOUTME: Plays a URI or an application source and reports progress on its bus
package media

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/resample"
)

var (
	// ErrNotPrerolled is returned by Seek before the pipeline reaches PAUSED
	ErrNotPrerolled = errors.New("pipeline not prerolled")

	// ErrNotSeekable is returned by Seek when the source cannot reposition
	ErrNotSeekable = errors.New("source is not seekable")
)

const (
	// chunkDuration is the amount of audio moved per streaming iteration
	chunkDuration = 20 * time.Millisecond

	// drainTimeout bounds how long EOS waits for the sink to play out
	drainTimeout = 5 * time.Second
)

// Playbin plays a URI, or an application source when the URI is AppSrcURI
type Playbin struct {
	*core

	uri       string
	appsrc    *AppSource
	appsrcErr error
	volume    *Volume
	sink      output.Output

	aboutToFinish atomic.Value // func()

	// stream is the active streaming session, guarded by core.mu
	stream *stream
}

// stream is one READY -> PAUSED -> READY activation
type stream struct {
	raw        io.Closer
	src        decode.Source
	srcFormat  audio.Format
	sinkFormat audio.Format
	resampler  *resample.Resampler
	network    bool

	// mu serializes decoder access between the streaming goroutine and Seek
	mu         sync.Mutex
	framesRead atomic.Int64

	// guarded by core.mu
	stopping bool
	parked   bool
	seekGen  int

	done chan struct{}
}

// PlaybinConfig configures a Playbin
type PlaybinConfig struct {
	Name string
	URI  string

	// SampleRate and Channels set the caps of the app source
	SampleRate int
	Channels   int

	Sink output.Output
}

// NewPlaybin creates a playbin in the NULL state
func NewPlaybin(cfg PlaybinConfig) *Playbin {
	p := &Playbin{
		uri:    cfg.URI,
		volume: NewVolume(),
		sink:   cfg.Sink,
	}
	if cfg.URI == AppSrcURI {
		p.appsrc, p.appsrcErr = NewAppSource(cfg.Name+"-appsrc", cfg.SampleRate, cfg.Channels)
	}
	p.core = newCore(cfg.Name, p)
	return p
}

// AppSource returns the application source, or nil for URI playback
func (p *Playbin) AppSource() *AppSource { return p.appsrc }

// VolumeElement returns the volume element between converter and sink
func (p *Playbin) VolumeElement() *Volume { return p.volume }

// SetAboutToFinishFunc installs a callback run on the streaming goroutine
// once the source has been read to its end
func (p *Playbin) SetAboutToFinishFunc(fn func()) {
	p.aboutToFinish.Store(fn)
}

func (p *Playbin) setup() error {
	if p.sink == nil {
		return fmt.Errorf("%s: no sink", p.name)
	}
	if p.appsrcErr != nil {
		return p.appsrcErr
	}
	if p.appsrc == nil && p.uri == "" {
		return ErrNoSource
	}
	return nil
}

// activate opens the source, decoder and sink and starts streaming paused
func (p *Playbin) activate() error {
	s := &stream{done: make(chan struct{})}

	if p.appsrc != nil {
		p.appsrc.reset()
		s.src = p.appsrc
	} else {
		r, network, err := openURI(p.uri)
		if err != nil {
			return err
		}
		src, err := decode.Open(r)
		if err != nil {
			r.Close()
			return fmt.Errorf("failed to decode %s: %w", p.uri, err)
		}
		s.raw = r
		s.src = src
		s.network = network
	}
	s.srcFormat = s.src.Format()

	sinkFormat, err := p.sink.Open(s.srcFormat.SampleRate, s.srcFormat.Channels)
	if err != nil {
		s.closeSource(p.appsrc != nil)
		return fmt.Errorf("failed to open sink: %w", err)
	}
	s.sinkFormat = sinkFormat
	if s.srcFormat.SampleRate != sinkFormat.SampleRate {
		s.resampler = resample.New(s.srcFormat.SampleRate, sinkFormat.SampleRate, s.srcFormat.Channels)
	}
	if err := p.sink.Pause(); err != nil {
		log.Printf("%s: sink pause failed: %v", p.name, err)
	}

	log.Printf("%s: prerolled %s -> %s", p.name, s.srcFormat, sinkFormat)

	p.mu.Lock()
	p.stream = s
	p.mu.Unlock()

	go p.streamLoop(s)

	p.bus.Post(&Message{Type: MessageStreamStart, Source: p.name})
	if s.network {
		p.bus.Post(&Message{Type: MessageBuffering, Source: p.name, Percent: 100})
	}
	if s.src.Frames() >= 0 {
		p.bus.Post(&Message{Type: MessageDurationChanged, Source: p.name})
	}
	return nil
}

func (p *Playbin) play() error {
	return p.sink.Resume()
}

func (p *Playbin) pause() error {
	return p.sink.Pause()
}

// deactivate stops the streaming goroutine and releases the source
func (p *Playbin) deactivate() {
	p.mu.Lock()
	s := p.stream
	p.stream = nil
	if s != nil {
		s.stopping = true
		p.wake()
	}
	p.mu.Unlock()

	if s == nil {
		return
	}

	// Unblock whatever the streaming goroutine is waiting on
	if p.appsrc != nil {
		p.appsrc.setFlushing(true)
	}
	if s.raw != nil {
		s.raw.Close()
	}
	if err := p.sink.Flush(); err != nil {
		log.Printf("%s: sink flush failed: %v", p.name, err)
	}

	<-s.done
	s.closeSource(p.appsrc != nil)
}

func (p *Playbin) teardown() {
	if err := p.sink.Close(); err != nil {
		log.Printf("%s: sink close failed: %v", p.name, err)
	}
}

func (s *stream) closeSource(app bool) {
	if app {
		return
	}
	s.src.Close()
	if s.raw != nil {
		s.raw.Close()
	}
}

// streamLoop moves audio from the source to the sink while PLAYING
func (p *Playbin) streamLoop(s *stream) {
	defer close(s.done)

	p.bus.Post(&Message{Type: MessageStreamStatus, Source: p.name, Status: StreamStatusEnter, Owner: p.name + "-src"})
	defer p.bus.Post(&Message{Type: MessageStreamStatus, Source: p.name, Status: StreamStatusLeave, Owner: p.name + "-src"})

	chunkFrames := int(int64(s.srcFormat.SampleRate) * int64(chunkDuration) / int64(time.Second))
	if chunkFrames < 64 {
		chunkFrames = 64
	}
	buf := make([]int32, chunkFrames*s.srcFormat.Channels)
	stopping := func() bool { return s.stopping }

	for p.waitPlaying(stopping) {
		s.mu.Lock()
		n, err := s.src.Read(buf)
		var out []int32
		if n > 0 {
			s.framesRead.Add(int64(n / s.srcFormat.Channels))
			out = s.convert(buf[:n])
		}
		s.mu.Unlock()

		if len(out) > 0 {
			p.volume.Process(out)
			if werr := p.sink.Write(out); werr != nil && !p.isStopping(s) {
				p.fail(s, fmt.Errorf("sink write failed: %w", werr))
				continue
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			p.endOfStream(s)
		case p.isStopping(s):
			return
		default:
			p.fail(s, fmt.Errorf("decode failed: %w", err))
		}
	}
}

// convert resamples and remixes source samples to the sink format
func (s *stream) convert(in []int32) []int32 {
	samples := in
	if s.resampler != nil {
		out := make([]int32, s.resampler.OutputSamplesNeeded(len(in))+s.srcFormat.Channels)
		samples = out[:s.resampler.Resample(in, out)]
	}
	return resample.Remix(samples, s.srcFormat.Channels, s.sinkFormat.Channels)
}

func (p *Playbin) isStopping(s *stream) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return s.stopping
}

// endOfStream fires about-to-finish, waits for the sink to play out, posts
// EOS and parks until a seek or deactivation
func (p *Playbin) endOfStream(s *stream) {
	if fn, ok := p.aboutToFinish.Load().(func()); ok && fn != nil {
		fn()
	}

	deadline := time.Now().Add(drainTimeout)
	for p.sink.Buffered() > 0 && time.Now().Before(deadline) && !p.isStopping(s) {
		time.Sleep(10 * time.Millisecond)
	}

	p.park(s, &Message{Type: MessageEOS, Source: p.name})
}

// fail posts an error and parks until a seek or deactivation
func (p *Playbin) fail(s *stream, err error) {
	p.park(s, &Message{Type: MessageError, Source: p.name, Err: err})
}

func (p *Playbin) park(s *stream, msg *Message) {
	p.mu.Lock()
	if s.stopping {
		p.mu.Unlock()
		return
	}
	gen := s.seekGen
	s.parked = true
	p.mu.Unlock()

	p.bus.Post(msg)

	p.waitUntil(func() bool { return s.stopping || s.seekGen != gen })

	p.mu.Lock()
	s.parked = false
	p.mu.Unlock()
}

// Seek performs a flushing seek to ms. It fails before preroll and on
// sources that cannot reposition.
func (p *Playbin) Seek(ms int64) error {
	p.mu.Lock()
	s := p.stream
	state := p.state
	p.mu.Unlock()

	if s == nil || state < Paused {
		return ErrNotPrerolled
	}
	seeker, ok := s.src.(decode.Seeker)
	if !ok {
		return ErrNotSeekable
	}

	frame := ms * int64(s.srcFormat.SampleRate) / 1000
	if total := s.src.Frames(); total >= 0 && frame > total {
		frame = total
	}
	if frame < 0 {
		frame = 0
	}

	s.mu.Lock()
	if err := p.sink.Flush(); err != nil {
		log.Printf("%s: sink flush failed: %v", p.name, err)
	}
	err := seeker.SeekFrame(frame)
	if err == nil {
		s.framesRead.Store(frame)
		if s.resampler != nil {
			s.resampler.Reset()
		}
	}
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, decode.ErrNotSeekable) {
			return ErrNotSeekable
		}
		return fmt.Errorf("seek to %dms failed: %w", ms, err)
	}

	p.mu.Lock()
	s.seekGen++
	p.wake()
	paused := p.state == Paused
	p.mu.Unlock()

	if paused {
		p.bus.Post(newStateChanged(p.name, Paused, Paused, VoidPending, VoidPending))
	}
	return nil
}

// Position returns the playback position in ms
func (p *Playbin) Position() (int64, bool) {
	p.mu.Lock()
	s := p.stream
	p.mu.Unlock()

	if s == nil || s.srcFormat.SampleRate <= 0 {
		return 0, false
	}

	pos := s.framesRead.Load() * 1000 / int64(s.srcFormat.SampleRate)
	if bpms := s.sinkFormat.BytesPerMillisecond(); bpms > 0 {
		pos -= int64(float64(p.sink.Buffered()) / bpms)
	}
	if pos < 0 {
		pos = 0
	}
	return pos, true
}

// Duration returns the stream length in ms
func (p *Playbin) Duration() (int64, bool) {
	p.mu.Lock()
	s := p.stream
	p.mu.Unlock()

	if s == nil || s.srcFormat.SampleRate <= 0 {
		return 0, false
	}
	frames := s.src.Frames()
	if frames < 0 {
		return 0, false
	}
	return frames * 1000 / int64(s.srcFormat.SampleRate), true
}
