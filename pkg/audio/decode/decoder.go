// ABOUTME: Decoder and Source interface definitions
// ABOUTME: Frame decoders for raw buffers and streaming sources for containers
package decode

import (
	"errors"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

var (
	// ErrUnknownFormat is returned when no decoder recognizes the stream header
	ErrUnknownFormat = errors.New("unknown audio format")

	// ErrNotSeekable is returned by SeekFrame on sources that cannot reposition
	ErrNotSeekable = errors.New("source is not seekable")
)

// Decoder decodes buffers of raw audio to PCM int32 samples
type Decoder interface {
	// Decode converts encoded audio data to PCM samples
	Decode(data []byte) ([]int32, error)

	// Close releases decoder resources
	Close() error
}

// Source is a streaming decoder producing interleaved samples in 24-bit range
type Source interface {
	// Read fills samples and returns how many were written.
	// io.EOF is returned once the stream is exhausted.
	Read(samples []int32) (int, error)

	// Format describes the decoded output
	Format() audio.Format

	// Frames returns the total length in frames, or -1 when unknown
	Frames() int64

	// Close releases decoder resources
	Close() error
}

// Seeker is implemented by sources that can reposition to an absolute frame
type Seeker interface {
	SeekFrame(frame int64) error
}
