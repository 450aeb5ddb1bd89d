// ABOUTME: Raw LPCM decoder for application pushed buffers
// ABOUTME: Converts interleaved S16LE frames to samples in 24-bit range
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// ErrPartialFrame is returned by Decode for buffers that end inside a frame
var ErrPartialFrame = errors.New("buffer ends inside a frame")

var _ Decoder = (*PCMDecoder)(nil)

// PCMDecoder decodes interleaved signed 16-bit little-endian PCM
type PCMDecoder struct {
	format audio.Format
}

// NewPCM creates a decoder for raw 16-bit PCM laid out as format
func NewPCM(format audio.Format) (*PCMDecoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("%w: codec %q is not raw pcm", ErrUnknownFormat, format.Codec)
	}
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("%w: raw pcm must be 16-bit, got %d", ErrUnknownFormat, format.BitDepth)
	}
	if format.Channels < 1 {
		return nil, fmt.Errorf("%w: raw pcm needs at least one channel", ErrUnknownFormat)
	}
	return &PCMDecoder{format: format}, nil
}

// Format returns the raw layout the decoder expects
func (d *PCMDecoder) Format() audio.Format { return d.format }

// Decode converts a buffer of whole frames
func (d *PCMDecoder) Decode(data []byte) ([]int32, error) {
	if len(data)%d.format.FrameSize() != 0 {
		return nil, fmt.Errorf("%w: %d bytes with %d-byte frames", ErrPartialFrame, len(data), d.format.FrameSize())
	}
	samples := make([]int32, len(data)/2)
	d.DecodeInto(samples, data)
	return samples, nil
}

// DecodeInto converts as many whole frames of data as fit in samples and
// returns the number of samples written. Trailing bytes are left alone.
func (d *PCMDecoder) DecodeInto(samples []int32, data []byte) int {
	frames := len(data) / d.format.FrameSize()
	if limit := len(samples) / d.format.Channels; frames > limit {
		frames = limit
	}

	n := frames * d.format.Channels
	for i := 0; i < n; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return n
}

func (d *PCMDecoder) Close() error { return nil }
