// ABOUTME: MP3 streaming source
// ABOUTME: Decodes MP3 audio to int32 samples using go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit stereo
const mp3FrameBytes = 4

// MP3Source reads from an MP3 stream
type MP3Source struct {
	decoder  *mp3.Decoder
	format   audio.Format
	seekable bool
	buf      []byte
}

// NewMP3 creates a new MP3 source
func NewMP3(r io.Reader) (Source, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	_, seekable := r.(io.Seeker)

	return &MP3Source{
		decoder:  decoder,
		seekable: seekable,
		format: audio.Format{
			Codec:      "mp3",
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}

func (s *MP3Source) Read(samples []int32) (int, error) {
	numBytes := len(samples) * 2
	if cap(s.buf) < numBytes {
		s.buf = make([]byte, numBytes)
	}
	buf := s.buf[:numBytes]

	n, err := s.decoder.Read(buf)

	// Convert bytes to int16, then scale to 24-bit range
	numSamples := n / 2
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
		samples[i] = audio.SampleFromInt16(sample16)
	}

	if err != nil && err != io.EOF {
		return numSamples, fmt.Errorf("mp3 decode error: %w", err)
	}
	return numSamples, err
}

func (s *MP3Source) Format() audio.Format { return s.format }

func (s *MP3Source) Frames() int64 {
	length := s.decoder.Length()
	if length < 0 {
		return -1
	}
	return length / mp3FrameBytes
}

// SeekFrame repositions the decoder; only possible on seekable inputs
func (s *MP3Source) SeekFrame(frame int64) error {
	if !s.seekable {
		return ErrNotSeekable
	}
	if _, err := s.decoder.Seek(frame*mp3FrameBytes, io.SeekStart); err != nil {
		return fmt.Errorf("mp3 seek failed: %w", err)
	}
	return nil
}

func (s *MP3Source) Close() error {
	return nil
}
