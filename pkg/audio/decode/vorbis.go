// ABOUTME: Ogg Vorbis streaming source
// ABOUTME: Decodes Ogg Vorbis float frames to int32 samples using oggvorbis
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// VorbisSource reads from an Ogg Vorbis stream
type VorbisSource struct {
	reader   *oggvorbis.Reader
	format   audio.Format
	seekable bool
	floats   []float32
}

// NewVorbis creates a new Ogg Vorbis source
func NewVorbis(r io.Reader) (Source, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vorbis: %w", err)
	}

	_, seekable := r.(io.Seeker)

	return &VorbisSource{
		reader:   reader,
		seekable: seekable,
		format: audio.Format{
			Codec:      "vorbis",
			SampleRate: reader.SampleRate(),
			Channels:   reader.Channels(),
			BitDepth:   24,
		},
	}, nil
}

func (s *VorbisSource) Read(samples []int32) (int, error) {
	// oggvorbis fills whole frames
	want := len(samples) - len(samples)%s.format.Channels
	if cap(s.floats) < want {
		s.floats = make([]float32, want)
	}
	floats := s.floats[:want]

	n, err := s.reader.Read(floats)
	for i := 0; i < n; i++ {
		samples[i] = floatTo24Bit(floats[i])
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("vorbis decode error: %w", err)
	}
	return n, err
}

func (s *VorbisSource) Format() audio.Format { return s.format }

func (s *VorbisSource) Frames() int64 {
	length := s.reader.Length()
	if length <= 0 {
		return -1
	}
	return length
}

// SeekFrame repositions the reader; only possible on seekable inputs
func (s *VorbisSource) SeekFrame(frame int64) error {
	if !s.seekable {
		return ErrNotSeekable
	}
	if err := s.reader.SetPosition(frame); err != nil {
		return fmt.Errorf("vorbis seek failed: %w", err)
	}
	return nil
}

func (s *VorbisSource) Close() error {
	return nil
}

// floatTo24Bit converts a [-1, 1] float sample with clipping
func floatTo24Bit(f float32) int32 {
	v := int64(float64(f) * float64(audio.Max24Bit))
	if v > audio.Max24Bit {
		v = audio.Max24Bit
	} else if v < audio.Min24Bit {
		v = audio.Min24Bit
	}
	return int32(v)
}
