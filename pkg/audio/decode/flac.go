// ABOUTME: FLAC streaming source
// ABOUTME: Decodes FLAC frames to int32 samples using mewkiz/flac
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACSource reads from a FLAC stream
type FLACSource struct {
	stream   *flac.Stream
	format   audio.Format
	seekable bool

	// decoded samples not yet handed out
	pending []int32
}

// NewFLAC creates a new FLAC source
func NewFLAC(r io.Reader) (Source, error) {
	var (
		stream   *flac.Stream
		err      error
		seekable bool
	)
	if rs, ok := r.(io.ReadSeeker); ok {
		stream, err = flac.NewSeek(rs)
		seekable = true
	} else {
		stream, err = flac.New(r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	return &FLACSource{
		stream:   stream,
		seekable: seekable,
		format: audio.Format{
			Codec:      "flac",
			SampleRate: int(stream.Info.SampleRate),
			Channels:   int(stream.Info.NChannels),
			BitDepth:   int(stream.Info.BitsPerSample),
		},
	}, nil
}

func (s *FLACSource) Read(samples []int32) (int, error) {
	n := 0
	for n < len(samples) {
		if len(s.pending) == 0 {
			if err := s.decodeFrame(); err != nil {
				if n > 0 && err == io.EOF {
					return n, nil
				}
				return n, err
			}
		}
		copied := copy(samples[n:], s.pending)
		s.pending = s.pending[copied:]
		n += copied
	}
	return n, nil
}

// decodeFrame parses the next FLAC frame and interleaves it into pending
func (s *FLACSource) decodeFrame() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("flac decode error: %w", err)
	}

	channels := s.format.Channels
	blockSize := int(frame.BlockSize)
	out := make([]int32, blockSize*channels)
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = audio.ScaleTo24Bit(frame.Subframes[ch].Samples[i], s.format.BitDepth)
		}
	}
	s.pending = out
	return nil
}

func (s *FLACSource) Format() audio.Format { return s.format }

func (s *FLACSource) Frames() int64 {
	if s.stream.Info.NSamples == 0 {
		return -1
	}
	return int64(s.stream.Info.NSamples)
}

// SeekFrame repositions to the frame containing the requested sample
func (s *FLACSource) SeekFrame(frame int64) error {
	if !s.seekable {
		return ErrNotSeekable
	}
	if _, err := s.stream.Seek(uint64(frame)); err != nil {
		return fmt.Errorf("flac seek failed: %w", err)
	}
	s.pending = nil
	return nil
}

func (s *FLACSource) Close() error {
	return s.stream.Close()
}
