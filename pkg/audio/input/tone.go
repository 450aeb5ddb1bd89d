// ABOUTME: Test tone generator for audio input
// ABOUTME: Generates a sine wave paced like a real capture device
package input

import (
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// DefaultToneFrequency is A4
const DefaultToneFrequency = 440.0

// Tone generates a sine wave at half scale
type Tone struct {
	sampleIndex uint64
	sampleMu    sync.Mutex
	frequency   float64
	pace        bool

	format audio.Format
	open   bool
	closed bool
	start  time.Time
}

// NewTone creates a new tone generator. With pace set, Read returns no
// faster than the audio it produces would play.
func NewTone(frequency float64, pace bool) *Tone {
	return &Tone{
		frequency: frequency,
		pace:      pace,
	}
}

func (s *Tone) Open(sampleRate, channels int) (audio.Format, error) {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	s.format = audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16}
	s.open = true
	s.closed = false
	s.sampleIndex = 0
	s.start = time.Now()
	return s.format, nil
}

func (s *Tone) Read(samples []int16) (int, error) {
	s.sampleMu.Lock()
	if s.closed {
		s.sampleMu.Unlock()
		return 0, ErrClosed
	}
	if !s.open {
		s.sampleMu.Unlock()
		return 0, ErrNotOpen
	}

	channels := s.format.Channels
	numFrames := len(samples) / channels

	for i := 0; i < numFrames; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.format.SampleRate)
		sample := math.Sin(2 * math.Pi * s.frequency * t)

		// Convert to 16-bit PCM
		pcmValue := int16(sample * 32767.0 * 0.5) // 50% volume

		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = pcmValue
		}
	}

	s.sampleIndex += uint64(numFrames)
	due := s.start.Add(time.Duration(s.sampleIndex) * time.Second / time.Duration(s.format.SampleRate))
	s.sampleMu.Unlock()

	if s.pace {
		if wait := time.Until(due); wait > 0 {
			time.Sleep(wait)
		}
	}
	return numFrames * channels, nil
}

func (s *Tone) Close() error {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()
	s.closed = true
	return nil
}
