// ABOUTME: Ogg Opus streaming source
// ABOUTME: Decodes Ogg Opus audio to int32 samples via libopusfile
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// OpusSource reads from an Ogg Opus stream
type OpusSource struct {
	stream *opus.Stream
	format audio.Format
	pcm16  []int16
}

// NewOpus creates a new Ogg Opus source with the channel count from the OpusHead packet
func NewOpus(r io.Reader, channels int) (Source, error) {
	stream, err := opus.NewStream(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}

	return &OpusSource{
		stream: stream,
		format: audio.Format{
			Codec:      "opus",
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
	}, nil
}

func (s *OpusSource) Read(samples []int32) (int, error) {
	if cap(s.pcm16) < len(samples) {
		s.pcm16 = make([]int16, len(samples))
	}
	pcm16 := s.pcm16[:len(samples)]

	// Read returns samples per channel
	n, err := s.stream.Read(pcm16)
	total := n * s.format.Channels
	for i := 0; i < total; i++ {
		samples[i] = audio.SampleFromInt16(pcm16[i])
	}

	if err != nil && err != io.EOF {
		return total, fmt.Errorf("opus decode failed: %w", err)
	}
	return total, err
}

func (s *OpusSource) Format() audio.Format { return s.format }

func (s *OpusSource) Frames() int64 { return -1 }

func (s *OpusSource) Close() error {
	return s.stream.Close()
}
