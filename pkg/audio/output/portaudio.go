//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using a blocking PortAudio stream
package output

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// framesPerBuffer is the blocking write granularity
const framesPerBuffer = 1024

// PortAudio output implementation
type PortAudio struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	buffer   []int16
	format   audio.Format
	paused   bool
	resume   *sync.Cond
	pending  int
	flushGen uint64
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	p := &PortAudio{}
	p.resume = sync.NewCond(&p.mu)
	return p
}

// Open initializes PortAudio and starts a blocking output stream
func (p *PortAudio) Open(sampleRate, channels int) (audio.Format, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return p.format, nil
	}

	if err := portaudio.Initialize(); err != nil {
		return audio.Format{}, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.buffer = make([]int16, framesPerBuffer*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), framesPerBuffer, p.buffer)
	if err != nil {
		portaudio.Terminate()
		return audio.Format{}, fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return audio.Format{}, fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	p.format = audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16}
	return p.format, nil
}

// Write outputs audio samples one buffer at a time, padding the tail with silence
func (p *PortAudio) Write(samples []int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotOpen
	}

	gen := p.flushGen
	p.pending += len(samples) * 2
	defer func() { p.pending = 0 }()

	for len(samples) > 0 {
		for p.paused && p.stream != nil && gen == p.flushGen {
			p.resume.Wait()
		}
		if p.stream == nil || gen != p.flushGen {
			return nil
		}

		n := copy32to16(p.buffer, samples)
		for i := n; i < len(p.buffer); i++ {
			p.buffer[i] = 0
		}
		samples = samples[n:]
		p.pending -= n * 2

		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("stream write failed: %w", err)
		}
	}
	return nil
}

func copy32to16(dst []int16, src []int32) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] = audio.SampleToInt16(src[i])
	}
	return n
}

// Pause makes Write wait before the next buffer
func (p *PortAudio) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

// Resume releases a paused Write
func (p *PortAudio) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.resume.Broadcast()
	return nil
}

// Flush abandons a paused Write
func (p *PortAudio) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushGen++
	p.resume.Broadcast()
	return nil
}

// Buffered returns bytes accepted by the current Write but not yet handed to the stream
func (p *PortAudio) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	stream := p.stream
	p.stream = nil
	p.resume.Broadcast()

	if err := stream.Stop(); err != nil {
		return err
	}
	if err := stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
