// ABOUTME: PCM encoder for device playback
// ABOUTME: Packs samples in 24-bit range into saturated S16LE bytes
package encode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

var _ Encoder = (*PCMEncoder)(nil)

// PCMEncoder packs samples as signed 16-bit little-endian PCM
type PCMEncoder struct {
	format audio.Format
}

// NewPCM creates an encoder for 16-bit device PCM
func NewPCM(format audio.Format) (*PCMEncoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("%w: codec %q", ErrUnsupportedFormat, format.Codec)
	}
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("%w: %d-bit output", ErrUnsupportedFormat, format.BitDepth)
	}
	return &PCMEncoder{format: format}, nil
}

// Encode converts samples to bytes, saturating values outside the 24-bit range
func (e *PCMEncoder) Encode(samples []int32) ([]byte, error) {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := s >> 8
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out, nil
}

func (e *PCMEncoder) Close() error { return nil }
