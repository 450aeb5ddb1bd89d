// ABOUTME: Audio input interface definition
// ABOUTME: Common interface for capture sources and device selection by name
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

var (
	// ErrNotOpen is returned when reading from an input that was never opened
	ErrNotOpen = errors.New("input not initialized")

	// ErrClosed is returned by Read after Close
	ErrClosed = errors.New("input closed")

	// ErrUnknownDevice is returned by New for unrecognized device names
	ErrUnknownDevice = errors.New("unknown input device")
)

// Input represents an audio capture device producing 16-bit samples
type Input interface {
	// Open starts capture in the requested format
	Open(sampleRate, channels int) (audio.Format, error)

	// Read blocks until len(samples) interleaved samples are captured
	Read(samples []int16) (int, error)

	// Close stops capture and releases a blocked Read
	Close() error
}

// New selects an input by device name. "tone" and "tone:<hz>" produce a
// paced sine wave instead of touching hardware.
func New(device string) (Input, error) {
	switch {
	case device == "" || device == "default" || device == "malgo" || device == "miniaudio":
		return NewMalgo(), nil
	case device == "tone":
		return NewTone(DefaultToneFrequency, true), nil
	case strings.HasPrefix(device, "tone:"):
		hz, err := strconv.ParseFloat(strings.TrimPrefix(device, "tone:"), 64)
		if err != nil || hz <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, device)
		}
		return NewTone(hz, true), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, device)
}
