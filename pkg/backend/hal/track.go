// ABOUTME: Device track abstraction over the shared oto context
// ABOUTME: A track plays a seekable reader and exposes volume and buffering
package hal

import (
	"io"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/output"
)

// Track is a device voice playing a reader. *oto.Player implements it.
type Track interface {
	Play()
	Pause()
	IsPlaying() bool
	Seek(offset int64, whence int) (int64, error)
	SetVolume(volume float64)
	Volume() float64
	BufferedSize() int
	Close() error
}

// TrackFactory opens a track reading r
type TrackFactory func(r io.ReadSeeker) (Track, error)

// DeviceFormat is the format tracks on the shared context expect
func DeviceFormat() audio.Format {
	return audio.Format{
		Codec:      "pcm",
		SampleRate: output.SharedSampleRate,
		Channels:   output.SharedChannels,
		BitDepth:   16,
	}
}

// NewOtoTrack creates a player on the shared oto context
func NewOtoTrack(r io.ReadSeeker) (Track, error) {
	ctx, _, err := output.SharedContext()
	if err != nil {
		return nil, err
	}
	return ctx.NewPlayer(r), nil
}
