// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback sinks and device selection by name
package output

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

var (
	// ErrNotOpen is returned when writing to an output that was never opened
	ErrNotOpen = errors.New("output not initialized")

	// ErrUnknownDevice is returned by New for unrecognized device names
	ErrUnknownDevice = errors.New("unknown output device")
)

// Output represents an audio output device
type Output interface {
	// Open initializes the output device. The requested format is a hint;
	// the returned format is what Write expects.
	Open(sampleRate, channels int) (audio.Format, error)

	// Write outputs audio samples (blocks until queued on the device)
	Write(samples []int32) error

	// Pause stops consuming samples; Write blocks while paused
	Pause() error

	// Resume continues after Pause
	Resume() error

	// Flush drops everything queued on the device
	Flush() error

	// Buffered returns the number of bytes queued but not yet played
	Buffered() int

	// Close releases output resources
	Close() error
}

// New selects an output by device name
func New(device string) (Output, error) {
	switch device {
	case "", "default", "oto":
		return NewOto(), nil
	case "malgo", "miniaudio":
		return NewMalgo(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "null":
		return NewNull(true), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, device)
}
