// ABOUTME: WAV streaming source
// ABOUTME: Decodes RIFF/WAVE PCM to int32 samples using go-audio/wav
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for RIFF files that carry no usable PCM data
var ErrInvalidWAV = errors.New("invalid wav file")

// WAVSource reads PCM frames from a WAV file
type WAVSource struct {
	rs     io.ReadSeeker
	dec    *wav.Decoder
	format audio.Format
	frames int64
	intBuf *goaudio.IntBuffer
}

// NewWAV creates a new WAV source.
// go-audio needs an io.ReadSeeker, so plain readers are buffered in memory first.
func NewWAV(r io.Reader) (Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec, err := openWAV(rs)
	if err != nil {
		return nil, err
	}

	s := &WAVSource{
		rs:  rs,
		dec: dec,
		format: audio.Format{
			Codec:      "wav",
			SampleRate: int(dec.SampleRate),
			Channels:   int(dec.NumChans),
			BitDepth:   int(dec.BitDepth),
		},
		frames: -1,
	}

	if d, err := dec.Duration(); err == nil {
		s.frames = int64(math.Round(d.Seconds() * float64(dec.SampleRate)))
	}

	return s, nil
}

func openWAV(rs io.ReadSeeker) (*wav.Decoder, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, dec.BitDepth)
	}
	return dec, nil
}

func (s *WAVSource) Read(samples []int32) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(samples) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(samples)),
			Format:         s.dec.Format(),
			SourceBitDepth: s.format.BitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(samples)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, fmt.Errorf("wav decode error: %w", err)
		}
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		v := int32(s.intBuf.Data[i])
		// 8-bit WAV is unsigned
		if s.format.BitDepth == 8 {
			v -= 128
		}
		samples[i] = audio.ScaleTo24Bit(v, s.format.BitDepth)
	}
	return n, nil
}

func (s *WAVSource) Format() audio.Format { return s.format }

func (s *WAVSource) Frames() int64 { return s.frames }

// SeekFrame reopens the file and skips ahead to frame
func (s *WAVSource) SeekFrame(frame int64) error {
	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("wav seek failed: %w", err)
	}
	dec, err := openWAV(s.rs)
	if err != nil {
		return err
	}
	s.dec = dec
	s.intBuf = nil

	skip := frame * int64(s.format.Channels)
	scratch := make([]int32, 4096*s.format.Channels)
	for skip > 0 {
		chunk := int64(len(scratch))
		if skip < chunk {
			chunk = skip
		}
		n, err := s.Read(scratch[:chunk])
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		skip -= int64(n)
	}
	return nil
}

func (s *WAVSource) Close() error {
	return nil
}
